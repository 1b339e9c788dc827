// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package artifact

import (
	"time"
)

// CreatedAtLayout is the timestamp format persisted on artifact records.
// It doubles as the path component that keeps storage paths unique and
// chronologically ordered per user.
const CreatedAtLayout = "20060102150405"

// Artifact represents one hosted document owned by a user.
type Artifact struct {
	Name      string `json:"name" bson:"name"`
	Path      string `json:"path" bson:"path"`
	URL       string `json:"url" bson:"url"`
	Size      int64  `json:"size" bson:"size"`
	CreatedAt string `json:"createdAt" bson:"createdAt"`
}

// Age returns how old the artifact is relative to now.
// The second return reports whether the creation timestamp could be parsed;
// callers must treat unparsable timestamps conservatively (never expired).
func (a Artifact) Age(now time.Time) (time.Duration, bool) {
	createdAt, err := time.Parse(CreatedAtLayout, a.CreatedAt)
	if err != nil {
		return 0, false
	}

	return now.Sub(createdAt), true
}

// ArtifactSequenceMongoDBModel is the per-user document holding the ordered
// artifact sequence. Version guards optimistic rewrites of the sequence.
type ArtifactSequenceMongoDBModel struct {
	UserID    string     `bson:"_id"`
	Artifacts []Artifact `bson:"artifacts"`
	Version   int64      `bson:"version"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}
