// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"errors"

	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/artifact"
	"github.com/LerianStudio/pagehost/pkg"
	"github.com/LerianStudio/pagehost/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

// DeleteArtifact removes the artifact at the given position and schedules
// removal of its backing blob. The sequence rewrite is optimistic: a
// concurrent writer bumps the version and the read-modify-write is retried
// against the fresh sequence, so the bounds check always runs against what is
// actually stored.
func (uc *UseCase) DeleteArtifact(ctx context.Context, userID string, index int) error {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.delete_artifact")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
		attribute.Int("app.request.index", index),
	)

	for attempt := 0; attempt <= constant.AppendMaxRetries; attempt++ {
		artifacts, version, err := uc.ArtifactRepo.List(ctx, userID)
		if err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to list artifacts", err)

			logger.Errorf("Error listing artifacts for user %s: %v", userID, err)

			return err
		}

		if index < 0 || index >= len(artifacts) {
			return pkg.ValidateBusinessError(constant.ErrIndexOutOfRange, "Artifact")
		}

		removed := artifacts[index]
		remaining := make([]artifact.Artifact, 0, len(artifacts)-1)
		remaining = append(remaining, artifacts[:index]...)
		remaining = append(remaining, artifacts[index+1:]...)

		err = uc.ArtifactRepo.Replace(ctx, userID, remaining, version)
		if err != nil {
			if errors.Is(err, artifact.ErrVersionConflict) {
				logger.Infof("Sequence of user %s changed underneath delete, retrying", userID)

				continue
			}

			libOpentelemetry.HandleSpanError(&span, "Failed to rewrite artifact sequence", err)

			logger.Errorf("Error rewriting artifact sequence for user %s: %v", userID, err)

			return err
		}

		// The record is the source of truth; a failed blob removal leaves an
		// orphan to clean up, not an inconsistency.
		if err := uc.BlobRepo.Remove(ctx, removed.Path); err != nil {
			logger.Warnf("Failed to remove blob %s, leaving orphan: %v", removed.Path, err)
		}

		logger.Infof("Artifact %s removed for user %s", removed.Name, userID)

		return nil
	}

	return pkg.ValidateBusinessError(constant.ErrStoreUnavailable, "Artifact")
}
