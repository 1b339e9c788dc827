// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package model

// StartSessionInput carries the optional referrer handed over on first contact.
type StartSessionInput struct {
	ReferrerID string `json:"referrerId" example:"user-42"`
}

// StartSessionResponse reports whether the referral was attributed to the referrer.
type StartSessionResponse struct {
	ReferralRecorded bool `json:"referralRecorded" example:"true"`
}

// GrantBonusInput sets the manually granted extra slots of a user.
type GrantBonusInput struct {
	BonusSlots *int `json:"bonusSlots" validate:"required,gte=0" example:"5"`
}

// LeaderboardEntry is one row of the referral leaderboard.
type LeaderboardEntry struct {
	UserID    string `json:"userId" example:"user-42"`
	Referrals int    `json:"referrals" example:"7"`
}

// LeaderboardResponse lists the top referrers, descending.
type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}
