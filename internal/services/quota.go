// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"

	"github.com/LerianStudio/pagehost/pkg/model"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ceiling recomputes the slot allowance of the user at decision time. It is
// never persisted, so it always reflects the latest referral state.
func (uc *UseCase) ceiling(ctx context.Context, userID string) (int, error) {
	referrals, err := uc.ReferralRepo.ReferralCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	bonus, err := uc.ReferralRepo.BonusSlots(ctx, userID)
	if err != nil {
		return 0, err
	}

	return uc.Limits.BaseSlots + uc.Limits.BonusPerReferral*referrals + bonus, nil
}

// GetCapacity reports the current slot usage of the user.
func (uc *UseCase) GetCapacity(ctx context.Context, userID string) (*model.CapacityResponse, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_capacity")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
	)

	artifacts, _, err := uc.ArtifactRepo.List(ctx, userID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list artifacts", err)

		logger.Errorf("Error listing artifacts for user %s: %v", userID, err)

		return nil, err
	}

	limit, err := uc.ceiling(ctx, userID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to compute slot ceiling", err)

		logger.Errorf("Error computing slot ceiling for user %s: %v", userID, err)

		return nil, err
	}

	return &model.CapacityResponse{Used: len(artifacts), Ceiling: limit}, nil
}

// admit checks that one more artifact would not exceed the user's ceiling.
// Read-then-decide with no reservation: two concurrent uploads can both pass
// and transiently overshoot the ceiling.
func (uc *UseCase) admit(ctx context.Context, userID string) (bool, error) {
	capacity, err := uc.GetCapacity(ctx, userID)
	if err != nil {
		return false, err
	}

	return capacity.Used < capacity.Ceiling, nil
}
