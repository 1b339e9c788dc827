// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"time"

	"github.com/LerianStudio/pagehost/internal/adapters/minio/blob"
	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/artifact"
	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/referral"
	"github.com/LerianStudio/pagehost/internal/adapters/rabbitmq"
	"github.com/LerianStudio/pagehost/internal/adapters/shortener"
)

// nowFunc is the clock used by admission and expiry decisions.
// Overridable in tests for deterministic behavior.
var nowFunc = time.Now

// sleepFunc is the function used for sleeping between record append retries.
// Overridable in tests for deterministic behavior.
var sleepFunc = time.Sleep

// Limits holds the admission and retention knobs of the registry. Values come
// from bootstrap configuration and stay fixed for the process lifetime.
type Limits struct {
	// MaxFileSize bounds a single uploaded document.
	MaxFileSize int64

	// MaxArchiveSize bounds the cumulative uncompressed size of a ZIP upload.
	MaxArchiveSize int64

	// MaxArchiveEntries bounds the number of entries in a ZIP upload.
	MaxArchiveEntries int

	// BaseSlots is the artifact allowance every user starts with.
	BaseSlots int

	// BonusPerReferral is the allowance increment per successful referral.
	BonusPerReferral int

	// RetentionDays is how long an artifact stays hosted before the sweeper
	// removes it.
	RetentionDays int

	// PendingUploadTTL is how long a multi-candidate upload may stay
	// unresolved before its scratch area is reclaimed.
	PendingUploadTTL time.Duration
}

// UseCase is a struct to implement the services methods
type UseCase struct {
	// ArtifactRepo provides an abstraction on top of the per-user artifact records.
	ArtifactRepo artifact.Repository

	// ReferralRepo provides an abstraction on top of the referral graph and bonus ledger.
	ReferralRepo referral.Repository

	// BlobRepo is a repository interface for storing hosted documents in object storage.
	BlobRepo blob.Repository

	// Shortener turns public blob URLs into short links, best-effort.
	Shortener shortener.Shortener

	// Events publishes registry events to the broker, best-effort.
	Events rabbitmq.EventPublisher

	// Pending tracks extracted multi-candidate uploads awaiting disambiguation.
	Pending *PendingUploads

	// Limits holds the admission and retention configuration.
	Limits Limits
}
