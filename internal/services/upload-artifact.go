// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"fmt"
	"os"

	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/artifact"
	"github.com/LerianStudio/pagehost/pkg"
	"github.com/LerianStudio/pagehost/pkg/constant"
	"github.com/LerianStudio/pagehost/pkg/model"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

// UploadOutcome is the result of an upload: either a published artifact, or a
// disambiguation set the caller has to resolve before publication.
type UploadOutcome struct {
	Artifact   *model.ArtifactView
	Ticket     string
	Candidates []string
}

// UploadArtifact runs the admission pipeline: extract, sanitize, admit, store
// the blob, publish the link and append the record. Validation failures are
// terminal and surfaced verbatim; shortening and event publication are
// best-effort and never fail the upload.
func (uc *UseCase) UploadArtifact(ctx context.Context, userID, declaredName string, declaredSize int64, content []byte) (*UploadOutcome, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.upload_artifact")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
		attribute.String("app.request.declared_name", declaredName),
		attribute.Int64("app.request.declared_size", declaredSize),
	)

	logger.Infof("Admitting upload %s (%d bytes) for user %s", declaredName, declaredSize, userID)

	if len(content) == 0 {
		return nil, pkg.ValidateBusinessError(constant.ErrEmptyFile, "Artifact")
	}

	uploadCap := uc.Limits.MaxFileSize
	if !isHostable(declaredName) {
		uploadCap = uc.Limits.MaxArchiveSize
	}

	if declaredSize > uploadCap || int64(len(content)) > uploadCap {
		if isHostable(declaredName) {
			return nil, pkg.ValidateBusinessError(constant.ErrFileTooLarge, "Artifact")
		}

		return nil, pkg.ValidateBusinessError(constant.ErrArchiveTooLarge, "Artifact")
	}

	extracted, err := uc.extract(ctx, userID, declaredName, content)
	if err != nil {
		return nil, err
	}

	if extracted.Ticket != "" {
		return &UploadOutcome{Ticket: extracted.Ticket, Candidates: extracted.Candidates}, nil
	}

	view, err := uc.finishUpload(ctx, userID, extracted.Document)
	if err != nil {
		return nil, err
	}

	return &UploadOutcome{Artifact: view}, nil
}

// ResolveCandidate completes a pending multi-candidate upload with the chosen
// document. The pipeline re-enters at the validator stage; the scratch area is
// released on every exit path.
func (uc *UseCase) ResolveCandidate(ctx context.Context, userID, ticket, name string) (*model.ArtifactView, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.resolve_candidate")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
		attribute.String("app.request.ticket", ticket),
		attribute.String("app.request.candidate", name),
	)

	entry, ok := uc.Pending.Take(userID, ticket)
	if !ok {
		return nil, pkg.ValidateBusinessError(constant.ErrPendingUploadNotFound, "PendingUpload")
	}

	defer releaseScratch(entry.ScratchDir, logger)

	for _, candidate := range entry.Candidates {
		if candidate.Name != name {
			continue
		}

		data, err := os.ReadFile(candidate.ScratchPath)
		if err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to read extracted document", err)

			logger.Errorf("Error reading extracted candidate %s: %v", name, err)

			return nil, err
		}

		doc := candidateDocument{Name: candidate.Name, Data: data}

		return uc.finishUpload(ctx, userID, &doc)
	}

	return nil, pkg.ValidateBusinessError(constant.ErrCandidateNotFound, "PendingUpload")
}

// finishUpload is the single-document tail of the pipeline: validate, admit,
// store, publish, record.
func (uc *UseCase) finishUpload(ctx context.Context, userID string, doc *candidateDocument) (*model.ArtifactView, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.finish_upload")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.user_id", userID),
		attribute.String("app.request.document_name", doc.Name),
	)

	if int64(len(doc.Data)) > uc.Limits.MaxFileSize {
		return nil, pkg.ValidateBusinessError(constant.ErrFileTooLarge, "Artifact")
	}

	sanitized, err := uc.sanitize(ctx, doc.Data)
	if err != nil {
		return nil, err
	}

	capacity, err := uc.GetCapacity(ctx, userID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to check slot capacity", err)

		return nil, pkg.ValidateBusinessError(constant.ErrStoreUnavailable, "Artifact")
	}

	if capacity.Used >= capacity.Ceiling {
		logger.Infof("Rejecting upload for user %s: %d of %d slots used", userID, capacity.Used, capacity.Ceiling)

		return nil, pkg.ValidateBusinessError(constant.ErrQuotaExceeded, "Artifact")
	}

	createdAt := nowFunc().UTC().Format(artifact.CreatedAtLayout)
	path := fmt.Sprintf("uploads/%s/%s_%s", userID, createdAt, doc.Name)

	if err := uc.BlobRepo.Put(ctx, path, "text/html; charset=utf-8", sanitized); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to store document blob", err)

		logger.Errorf("Error storing blob %s: %v", path, err)

		return nil, pkg.ValidateBusinessError(constant.ErrStoreUnavailable, "Artifact")
	}

	url := uc.publish(ctx, path)

	record := artifact.Artifact{
		Name:      doc.Name,
		Path:      path,
		URL:       url,
		Size:      int64(len(sanitized)),
		CreatedAt: createdAt,
	}

	if err := uc.appendWithRetry(ctx, userID, record); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to append artifact record after all retries", err)

		// The blob is already durable; the sweeper reconciles orphans later.
		logger.Errorf("Record append failed after retries for %s, blob %s left for reconciliation: %v", userID, path, err)

		return nil, pkg.ValidateBusinessError(constant.ErrPartialUpload, "Artifact")
	}

	view := &model.ArtifactView{
		Index:     capacity.Used,
		Name:      record.Name,
		URL:       record.URL,
		Size:      record.Size,
		CreatedAt: record.CreatedAt,
	}

	uc.publishEvent(ctx, constant.EventArtifactCreated, userID, view)

	logger.Infof("Artifact %s published for user %s at %s", record.Name, userID, record.URL)

	return view, nil
}

// publish mints the public URL for the stored blob, passing it through the
// shortener when one is configured. A failed shortening degrades to the long
// URL and never fails the upload.
func (uc *UseCase) publish(ctx context.Context, path string) string {
	logger := libCommons.NewLoggerFromContext(ctx)

	url := uc.BlobRepo.PublicURL(path)

	if uc.Shortener == nil {
		return url
	}

	short, err := uc.Shortener.Shorten(ctx, url)
	if err != nil {
		logger.Warnf("Publishing degraded, keeping long URL for %s: %v", path, err)

		return url
	}

	return short
}

// appendWithRetry retries the record append a bounded number of times. The
// blob may already be durable when this fails, so giving up surfaces a partial
// upload instead of a plain store error.
func (uc *UseCase) appendWithRetry(ctx context.Context, userID string, record artifact.Artifact) error {
	logger := libCommons.NewLoggerFromContext(ctx)

	backoff := constant.AppendInitialBackoff

	var err error

	for attempt := 0; attempt <= constant.AppendMaxRetries; attempt++ {
		err = uc.ArtifactRepo.Append(ctx, userID, record)
		if err == nil {
			return nil
		}

		if attempt == constant.AppendMaxRetries {
			break
		}

		logger.Warnf("Record append failed (attempt %d/%d), retrying in %v: %v", attempt+1, constant.AppendMaxRetries+1, backoff, err)

		sleepFunc(backoff)

		backoff *= 2
	}

	return err
}

// publishEvent sends an outbound event, best-effort.
func (uc *UseCase) publishEvent(ctx context.Context, key, userID string, payload any) {
	if uc.Events == nil {
		return
	}

	logger := libCommons.NewLoggerFromContext(ctx)

	message := model.EventMessage{
		Event:      key,
		UserID:     userID,
		OccurredAt: nowFunc().UTC(),
		Payload:    payload,
	}

	if err := uc.Events.Publish(ctx, key, message); err != nil {
		logger.Warnf("Failed to publish %s event for user %s: %v", key, userID, err)
	}
}
