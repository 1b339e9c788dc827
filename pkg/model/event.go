// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package model

import "time"

// EventMessage is the envelope published to the broker when something
// noteworthy happens to a user's registry. Consumers are external and
// best-effort; the registry never waits on them.
type EventMessage struct {
	Event      string    `json:"event" example:"artifact.created"`
	UserID     string    `json:"userId" example:"user-42"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}
