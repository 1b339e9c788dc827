// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package model

// ArtifactView is the outward representation of one hosted artifact.
type ArtifactView struct {
	Index     int    `json:"index" example:"0"`
	Name      string `json:"name" example:"index.html"`
	URL       string `json:"url" example:"https://tinyurl.com/abc123"`
	Size      int64  `json:"size" example:"2048"`
	CreatedAt string `json:"createdAt" example:"20260101120000"`
}

// ListArtifactsResponse wraps the artifact collection of one user.
type ListArtifactsResponse struct {
	Items []ArtifactView `json:"items"`
	Total int            `json:"total" example:"3"`
}

// UploadResponse is returned when an upload is admitted and published.
type UploadResponse struct {
	Artifact ArtifactView `json:"artifact"`
}

// PendingUploadResponse is returned when an archive holds several hostable
// candidates and the caller has to pick one.
type PendingUploadResponse struct {
	Ticket     string   `json:"ticket" example:"3eafbd18-0d5b-4b45-9d6c-29f1f3d9c7e3"`
	Candidates []string `json:"candidates"`
}

// ResolveUploadInput selects one candidate out of a pending multi-entry upload.
type ResolveUploadInput struct {
	Name string `json:"name" validate:"required" example:"index.html"`
}

// CapacityResponse reports the slot usage of one user.
type CapacityResponse struct {
	Used    int `json:"used" example:"4"`
	Ceiling int `json:"ceiling" example:"13"`
}
