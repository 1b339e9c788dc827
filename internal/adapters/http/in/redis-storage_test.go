// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"testing"
	"time"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorage_ImplementsFiberStorage(t *testing.T) {
	t.Parallel()

	var _ ThrottleStorage = (*RedisStorage)(nil)
}

// Every method must degrade gracefully when the connection is absent, so an
// unavailable Redis lets traffic through instead of blocking all uploads.
func TestRedisStorage_GracefulDegradation_NilConnection(t *testing.T) {
	t.Parallel()

	s := NewRedisStorage(nil, &log.NoneLogger{})

	t.Run("Get returns nil on nil connection", func(t *testing.T) {
		t.Parallel()

		val, err := s.Get("throttle-key")
		assert.Nil(t, val)
		assert.NoError(t, err)
	})

	t.Run("Set returns nil on nil connection", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, s.Set("throttle-key", []byte("1"), time.Minute))
	})

	t.Run("Delete returns nil on nil connection", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, s.Delete("throttle-key"))
	})

	t.Run("Reset is a no-op", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, s.Reset())
	})

	t.Run("Close is a no-op", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, s.Close())
	})
}
