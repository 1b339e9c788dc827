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

// ListArtifacts returns the user's artifacts in upload order. The positional
// index is the handle the delete operation takes.
func (uc *UseCase) ListArtifacts(ctx context.Context, userID string) (*model.ListArtifactsResponse, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.list_artifacts")
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

	items := make([]model.ArtifactView, 0, len(artifacts))

	for i, a := range artifacts {
		items = append(items, model.ArtifactView{
			Index:     i,
			Name:      a.Name,
			URL:       a.URL,
			Size:      a.Size,
			CreatedAt: a.CreatedAt,
		})
	}

	return &model.ListArtifactsResponse{Items: items, Total: len(items)}, nil
}
