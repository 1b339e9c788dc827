// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"

	"github.com/LerianStudio/pagehost/pkg/constant"
	"github.com/LerianStudio/pagehost/pkg/model"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

// AttributeReferral records who referred the user, once per lifetime. An
// absent or self referrer is a silent no-op, repeated attribution attempts are
// idempotent, and the referrer notification is best-effort.
func (uc *UseCase) AttributeReferral(ctx context.Context, userID, referrerID string) (bool, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.attribute_referral")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
		attribute.String("app.request.referrer_id", referrerID),
	)

	if referrerID == "" || referrerID == userID {
		return false, nil
	}

	recorded, err := uc.ReferralRepo.Attribute(ctx, userID, referrerID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to attribute referral", err)

		logger.Errorf("Error attributing referral %s->%s: %v", referrerID, userID, err)

		return false, err
	}

	if recorded {
		logger.Infof("Referral attributed: %s referred %s", referrerID, userID)

		uc.publishEvent(ctx, constant.EventReferralAttributed, referrerID, map[string]string{"refereeId": userID})
	}

	return recorded, nil
}

// GrantBonusSlots sets the manually granted extra slots of the user.
func (uc *UseCase) GrantBonusSlots(ctx context.Context, userID string, slots int) error {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.grant_bonus_slots")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
		attribute.Int("app.request.slots", slots),
	)

	if err := uc.ReferralRepo.SetBonusSlots(ctx, userID, slots); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to set bonus slots", err)

		logger.Errorf("Error granting %d bonus slots to user %s: %v", slots, userID, err)

		return err
	}

	logger.Infof("Granted %d bonus slots to user %s", slots, userID)

	return nil
}

// Leaderboard returns the users with the most referrals, descending.
func (uc *UseCase) Leaderboard(ctx context.Context, limit int) (*model.LeaderboardResponse, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.referral_leaderboard")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.Int("app.request.limit", limit),
	)

	ranks, err := uc.ReferralRepo.TopReferrers(ctx, limit)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to aggregate top referrers", err)

		logger.Errorf("Error aggregating top referrers: %v", err)

		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(ranks))

	for _, rank := range ranks {
		entries = append(entries, model.LeaderboardEntry{UserID: rank.UserID, Referrals: rank.Referrals})
	}

	return &model.LeaderboardResponse{Entries: entries}, nil
}
