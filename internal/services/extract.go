// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LerianStudio/pagehost/pkg"
	"github.com/LerianStudio/pagehost/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libLog "github.com/LerianStudio/lib-commons/v3/commons/log"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.opentelemetry.io/otel/attribute"
)

const (
	extensionHTML = ".html"
	extensionHTM  = ".htm"
	extensionZip  = ".zip"
)

// candidateDocument is one hostable document extracted from an upload.
type candidateDocument struct {
	// Name is the display name, taken from the declared name or the in-archive name.
	Name string

	// ScratchPath is where the extracted bytes live until the pipeline reaches
	// a terminal state. Empty for direct uploads, whose bytes never touch disk.
	ScratchPath string

	// Data holds the document bytes for direct uploads; loaded lazily from
	// ScratchPath for archive entries.
	Data []byte
}

// extraction is the outcome of the extractor stage: either exactly one
// document, or a disambiguation set registered under a pending ticket.
type extraction struct {
	Document   *candidateDocument
	Ticket     string
	Candidates []string
}

// pendingUpload is an extracted multi-candidate archive waiting for the user
// to pick one document.
type pendingUpload struct {
	UserID     string
	ScratchDir string
	Candidates []candidateDocument
	TouchedAt  time.Time
}

// PendingUploads tracks extracted archives awaiting disambiguation. Abandoned
// entries hold a scratch directory on disk, so a reaper reclaims anything idle
// past the TTL.
type PendingUploads struct {
	mu      sync.Mutex
	entries map[string]*pendingUpload
	ttl     time.Duration
	logger  libLog.Logger
	done    chan struct{}
}

// NewPendingUploads creates the registry and starts the idle reaper.
func NewPendingUploads(ttl time.Duration, logger libLog.Logger) *PendingUploads {
	p := &PendingUploads{
		entries: make(map[string]*pendingUpload),
		ttl:     ttl,
		logger:  logger,
		done:    make(chan struct{}),
	}

	go p.reap()

	return p
}

// Add registers a pending upload and returns its ticket.
func (p *PendingUploads) Add(userID, scratchDir string, candidates []candidateDocument) string {
	ticket := libCommons.GenerateUUIDv7().String()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries[ticket] = &pendingUpload{
		UserID:     userID,
		ScratchDir: scratchDir,
		Candidates: candidates,
		TouchedAt:  nowFunc(),
	}

	return ticket
}

// Take removes and returns the pending upload for the ticket, scoped to its
// owner. The caller becomes responsible for releasing the scratch directory.
func (p *PendingUploads) Take(userID, ticket string) (*pendingUpload, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[ticket]
	if !ok || entry.UserID != userID {
		return nil, false
	}

	delete(p.entries, ticket)

	return entry, true
}

// Close stops the reaper and releases every scratch directory still held.
func (p *PendingUploads) Close() {
	close(p.done)

	p.mu.Lock()
	defer p.mu.Unlock()

	for ticket, entry := range p.entries {
		releaseScratch(entry.ScratchDir, p.logger)
		delete(p.entries, ticket)
	}
}

func (p *PendingUploads) reap() {
	ticker := time.NewTicker(p.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.reapIdle()
		}
	}
}

func (p *PendingUploads) reapIdle() {
	cutoff := nowFunc().Add(-p.ttl)

	p.mu.Lock()
	defer p.mu.Unlock()

	for ticket, entry := range p.entries {
		if entry.TouchedAt.Before(cutoff) {
			p.logger.Infof("Reclaiming abandoned pending upload %s for user %s", ticket, entry.UserID)

			releaseScratch(entry.ScratchDir, p.logger)
			delete(p.entries, ticket)
		}
	}
}

func releaseScratch(dir string, logger libLog.Logger) {
	if dir == "" {
		return
	}

	if err := os.RemoveAll(dir); err != nil {
		logger.Errorf("Failed to release scratch directory %s: %v", dir, err)
	}
}

func isHostable(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))

	return ext == extensionHTML || ext == extensionHTM
}

// extract turns an uploaded blob into exactly one hostable document or a
// registered disambiguation set. Direct hostable uploads pass through
// untouched; archives are unpacked into a scratch directory under the
// configured entry and cumulative size caps.
func (uc *UseCase) extract(ctx context.Context, userID, declaredName string, content []byte) (*extraction, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	_, span := tracer.Start(ctx, "service.extract_upload")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.user_id", userID),
		attribute.String("app.request.declared_name", declaredName),
	)

	if isHostable(declaredName) {
		return &extraction{Document: &candidateDocument{Name: filepath.Base(declaredName), Data: content}}, nil
	}

	if strings.ToLower(filepath.Ext(declaredName)) != extensionZip {
		return nil, pkg.ValidateBusinessError(constant.ErrUnsupportedFileType, "Artifact")
	}

	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to open uploaded archive", err)

		logger.Warnf("Rejecting malformed archive %s: %v", declaredName, err)

		return nil, pkg.ValidateBusinessError(constant.ErrNoHostableContent, "Artifact")
	}

	if len(reader.File) > uc.Limits.MaxArchiveEntries {
		return nil, pkg.ValidateBusinessError(constant.ErrArchiveTooManyEntries, "Artifact")
	}

	scratchDir, err := os.MkdirTemp("", "pagehost-upload-*")
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to allocate scratch directory", err)

		return nil, err
	}

	candidates, err := uc.unpackHostable(reader, scratchDir)
	if err != nil {
		releaseScratch(scratchDir, logger)

		return nil, err
	}

	switch len(candidates) {
	case 0:
		releaseScratch(scratchDir, logger)

		return nil, pkg.ValidateBusinessError(constant.ErrNoHostableContent, "Artifact")
	case 1:
		data, err := os.ReadFile(candidates[0].ScratchPath)

		releaseScratch(scratchDir, logger)

		if err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to read extracted document", err)

			return nil, err
		}

		return &extraction{Document: &candidateDocument{Name: candidates[0].Name, Data: data}}, nil
	default:
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Name)
		}

		ticket := uc.Pending.Add(userID, scratchDir, candidates)

		logger.Infof("Upload %s holds %d hostable documents, pending disambiguation under ticket %s", declaredName, len(candidates), ticket)

		return &extraction{Ticket: ticket, Candidates: names}, nil
	}
}

// unpackHostable writes the archive's hostable entries into the scratch
// directory, enforcing the cumulative uncompressed size cap while copying.
func (uc *UseCase) unpackHostable(reader *zip.Reader, scratchDir string) ([]candidateDocument, error) {
	var total int64

	candidates := make([]candidateDocument, 0)

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		total += int64(entry.UncompressedSize64)
		if total > uc.Limits.MaxArchiveSize {
			return nil, pkg.ValidateBusinessError(constant.ErrArchiveTooLarge, "Artifact")
		}

		if !isHostable(entry.Name) {
			continue
		}

		// In-archive paths are untrusted; only the base name ever reaches disk.
		name := filepath.Base(entry.Name)
		scratchPath := filepath.Join(scratchDir, libCommons.GenerateUUIDv7().String()+"_"+name)

		if err := extractEntry(entry, scratchPath, uc.Limits.MaxArchiveSize); err != nil {
			return nil, err
		}

		candidates = append(candidates, candidateDocument{Name: name, ScratchPath: scratchPath})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

	return candidates, nil
}

func extractEntry(entry *zip.File, scratchPath string, maxSize int64) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}

	defer func() {
		_ = src.Close()
	}()

	dst, err := os.OpenFile(scratchPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	defer func() {
		_ = dst.Close()
	}()

	// The declared uncompressed size is already checked; the copy is still
	// capped in case the header lies.
	written, err := io.Copy(dst, io.LimitReader(src, maxSize+1))
	if err != nil {
		return err
	}

	if written > maxSize {
		return pkg.ValidateBusinessError(constant.ErrArchiveTooLarge, "Artifact")
	}

	return nil
}
