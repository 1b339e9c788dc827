// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

import "time"

const ApplicationName = "pagehost"

// Upload admission defaults. All of them are overridable through environment
// variables in bootstrap.Config.
const (
	// DefaultMaxFileSize is the ceiling for a single uploaded document (5MB).
	DefaultMaxFileSize int64 = 5 * 1024 * 1024

	// DefaultMaxArchiveSize bounds the cumulative uncompressed size of a ZIP
	// upload to contain decompression bombs.
	DefaultMaxArchiveSize int64 = 25 * 1024 * 1024

	// DefaultMaxArchiveEntries bounds the number of entries in a ZIP upload.
	DefaultMaxArchiveEntries = 256

	// DefaultBaseSlots is the artifact allowance every user starts with.
	DefaultBaseSlots = 10

	// DefaultBonusPerReferral is the allowance increment per successful referral.
	DefaultBonusPerReferral = 3

	// DefaultRetentionDays is the artifact retention window used by the sweeper.
	DefaultRetentionDays = 30

	// DefaultPendingUploadTTL is how long a multi-candidate upload may stay
	// unresolved before its scratch area is reclaimed.
	DefaultPendingUploadTTL = 5 * time.Minute
)

// Expiry sweeper scheduling.
const (
	DefaultSweepInitialDelay = 1 * time.Minute
	DefaultSweepInterval     = 24 * time.Hour
)

// Artifact Store append retry configuration. The blob may already be durable
// when the record write fails, so the append is retried a bounded number of
// times before the upload is surfaced as partial.
const (
	AppendMaxRetries     = 3
	AppendInitialBackoff = 200 * time.Millisecond
)

// Event producer retry configuration.
const (
	ProducerMaxRetries            = 3
	ProducerInitialBackoff        = 500 * time.Millisecond
	ProducerMaxBackoff            = 8 * time.Second
	ProducerBackoffFactor float64 = 2.0
)

// Link shortener circuit breaker configuration.
const (
	ShortenerRequestTimeout            = 5 * time.Second
	ShortenerBreakerMaxRequests uint32 = 3
	ShortenerBreakerInterval           = 2 * time.Minute
	ShortenerBreakerTimeout            = 30 * time.Second
	ShortenerBreakerThreshold   uint32 = 5
)

// Database query timeouts.
const (
	QueryTimeoutMedium = 10 * time.Second
	ConnectionTimeout  = 5 * time.Second
)

// Outbound event routing keys.
const (
	EventArtifactCreated    = "artifact.created"
	EventReferralAttributed = "referral.attributed"
)
