// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"strconv"

	"github.com/LerianStudio/pagehost/internal/services"
	"github.com/LerianStudio/pagehost/pkg"
	"github.com/LerianStudio/pagehost/pkg/constant"
	"github.com/LerianStudio/pagehost/pkg/model"
	"github.com/LerianStudio/pagehost/pkg/net/http"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"github.com/gofiber/fiber/v2"
)

// ArtifactHandler exposes the upload admission pipeline and the artifact
// registry over HTTP.
type ArtifactHandler struct {
	Service *services.UseCase
}

// Upload admits a multipart upload for the user. A single hostable document
// is published right away (201); an archive holding several candidates parks
// the upload behind a disambiguation ticket (202).
func (ah *ArtifactHandler) Upload(c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.upload_artifact")
	defer span.End()

	c.SetUserContext(ctx)

	userID := c.Params("user_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warnf("Upload for user %s is missing the file part: %v", userID, err)

		return http.WithError(c, pkg.ValidateBusinessError(constant.ErrMissingRequiredFields, "Artifact"))
	}

	content, err := http.ReadMultipartFile(fileHeader)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to read multipart file", err)

		logger.Errorf("Error reading uploaded file: %v", err)

		return http.WithError(c, pkg.ValidateBusinessError(constant.ErrBadRequest, "Artifact"))
	}

	outcome, err := ah.Service.UploadArtifact(ctx, userID, fileHeader.Filename, fileHeader.Size, content)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to admit upload", err)

		return http.WithError(c, err)
	}

	if outcome.Ticket != "" {
		return http.Accepted(c, model.PendingUploadResponse{
			Ticket:     outcome.Ticket,
			Candidates: outcome.Candidates,
		})
	}

	return http.Created(c, model.UploadResponse{Artifact: *outcome.Artifact})
}

// Resolve completes a pending multi-candidate upload with the chosen document.
func (ah *ArtifactHandler) Resolve(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()

	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.resolve_pending_upload")
	defer span.End()

	c.SetUserContext(ctx)

	userID := c.Params("user_id")
	ticket := c.Params("ticket")
	payload := p.(*model.ResolveUploadInput)

	view, err := ah.Service.ResolveCandidate(ctx, userID, ticket, payload.Name)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to resolve pending upload", err)

		return http.WithError(c, err)
	}

	return http.Created(c, model.UploadResponse{Artifact: *view})
}

// List returns the user's artifacts in upload order.
func (ah *ArtifactHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()

	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.list_artifacts")
	defer span.End()

	c.SetUserContext(ctx)

	response, err := ah.Service.ListArtifacts(ctx, c.Params("user_id"))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list artifacts", err)

		return http.WithError(c, err)
	}

	return http.OK(c, response)
}

// Delete removes the artifact at the given position.
func (ah *ArtifactHandler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.delete_artifact")
	defer span.End()

	c.SetUserContext(ctx)

	userID := c.Params("user_id")

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		logger.Warnf("Rejecting non-numeric artifact index %q", c.Params("index"))

		return http.WithError(c, pkg.ValidateBusinessError(constant.ErrInvalidPathParameter, "Artifact", "index"))
	}

	if err := ah.Service.DeleteArtifact(ctx, userID, index); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to delete artifact", err)

		return http.WithError(c, err)
	}

	return http.NoContent(c)
}

// Capacity reports the user's slot usage and ceiling.
func (ah *ArtifactHandler) Capacity(c *fiber.Ctx) error {
	ctx := c.UserContext()

	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_capacity")
	defer span.End()

	c.SetUserContext(ctx)

	capacity, err := ah.Service.GetCapacity(ctx, c.Params("user_id"))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to compute capacity", err)

		return http.WithError(c, err)
	}

	return http.OK(c, capacity)
}
