// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"testing"
	"time"

	"github.com/LerianStudio/pagehost/pkg/constant"

	"github.com/stretchr/testify/assert"
)

func TestFullJitterStaysWithinBase(t *testing.T) {
	base := 500 * time.Millisecond

	for i := 0; i < 100; i++ {
		d := FullJitter(base)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, base)
	}
}

func TestFullJitterNonPositiveBase(t *testing.T) {
	assert.Equal(t, time.Duration(0), FullJitter(0))
	assert.Equal(t, time.Duration(0), FullJitter(-time.Second))
}

func TestFullJitterCappedAtMaxBackoff(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := FullJitter(time.Hour)
		assert.LessOrEqual(t, d, constant.ProducerMaxBackoff)
	}
}

func TestNextBackoffDoubles(t *testing.T) {
	assert.Equal(t, time.Second, NextBackoff(500*time.Millisecond))
	assert.Equal(t, 2*time.Second, NextBackoff(time.Second))
}

func TestNextBackoffCapped(t *testing.T) {
	assert.Equal(t, constant.ProducerMaxBackoff, NextBackoff(constant.ProducerMaxBackoff))
	assert.Equal(t, constant.ProducerMaxBackoff, NextBackoff(time.Hour))
}
