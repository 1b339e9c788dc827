// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package referral

// ReferralListMongoDBModel holds the referees recruited by one referrer.
type ReferralListMongoDBModel struct {
	ReferrerID string   `bson:"_id"`
	Referees   []string `bson:"referees"`
}

// ReferrerOfMongoDBModel records the single referrer of a referee.
// The referee id is the document id, which makes the first attribution win
// and every later one a duplicate-key no-op.
type ReferrerOfMongoDBModel struct {
	RefereeID  string `bson:"_id"`
	ReferrerID string `bson:"referrer"`
}

// BonusMongoDBModel stores the manually granted extra slots of a user.
type BonusMongoDBModel struct {
	UserID string `bson:"_id"`
	Slots  int    `bson:"slots"`
}

// ReferrerRank is one leaderboard entry.
type ReferrerRank struct {
	UserID    string `json:"userId" bson:"_id"`
	Referrals int    `json:"referrals" bson:"referrals"`
}
