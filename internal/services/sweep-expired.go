// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"time"

	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/artifact"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

// SweepExpired walks every user's artifact sequence and removes what is older
// than the retention window. Artifacts with an unparsable creation timestamp
// are retained. A sequence is rewritten only when something expired; a version
// conflict skips the user until the next pass. Returns the number of
// artifacts removed.
func (uc *UseCase) SweepExpired(ctx context.Context) (int, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.sweep_expired")
	defer span.End()

	retention := time.Duration(uc.Limits.RetentionDays) * 24 * time.Hour
	now := nowFunc().UTC()

	span.SetAttributes(
		attribute.Int("app.request.retention_days", uc.Limits.RetentionDays),
	)

	owners, err := uc.ArtifactRepo.ListOwners(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list artifact owners", err)

		logger.Errorf("Error listing artifact owners: %v", err)

		return 0, err
	}

	removedTotal := 0

	for _, userID := range owners {
		removed, err := uc.sweepUser(ctx, userID, retention, now)
		if err != nil {
			// One broken user never stops the pass.
			logger.Errorf("Sweep failed for user %s: %v", userID, err)

			continue
		}

		removedTotal += removed
	}

	if removedTotal > 0 {
		logger.Infof("Sweep removed %d expired artifacts across %d users", removedTotal, len(owners))
	}

	return removedTotal, nil
}

func (uc *UseCase) sweepUser(ctx context.Context, userID string, retention time.Duration, now time.Time) (int, error) {
	logger := libCommons.NewLoggerFromContext(ctx)

	artifacts, version, err := uc.ArtifactRepo.List(ctx, userID)
	if err != nil {
		return 0, err
	}

	kept := make([]artifact.Artifact, 0, len(artifacts))
	expired := make([]artifact.Artifact, 0)

	for _, a := range artifacts {
		age, ok := a.Age(now)
		if !ok {
			logger.Warnf("Retaining artifact %s of user %s with unparsable timestamp %q", a.Name, userID, a.CreatedAt)

			kept = append(kept, a)

			continue
		}

		if age > retention {
			expired = append(expired, a)

			continue
		}

		kept = append(kept, a)
	}

	if len(expired) == 0 {
		return 0, nil
	}

	if err := uc.ArtifactRepo.Replace(ctx, userID, kept, version); err != nil {
		return 0, err
	}

	for _, a := range expired {
		if err := uc.BlobRepo.Remove(ctx, a.Path); err != nil {
			logger.Warnf("Failed to remove expired blob %s, leaving orphan: %v", a.Path, err)
		}
	}

	logger.Infof("Removed %d expired artifacts for user %s", len(expired), userID)

	return len(expired), nil
}
