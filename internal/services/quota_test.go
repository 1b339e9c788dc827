// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"testing"

	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/artifact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGetCapacityBaseAllowance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)
	mocks.expectCapacity("u1", nil, 0, 0)

	capacity, err := uc.GetCapacity(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 0, capacity.Used)
	assert.Equal(t, 10, capacity.Ceiling)
}

func TestGetCapacityGrowsWithReferrals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)
	mocks.expectCapacity("u1", []artifact.Artifact{{Name: "a.html"}}, 1, 0)

	capacity, err := uc.GetCapacity(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, capacity.Used)
	assert.Equal(t, 13, capacity.Ceiling)
}

func TestGetCapacityIncludesManualBonus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)
	mocks.expectCapacity("u1", nil, 2, 5)

	capacity, err := uc.GetCapacity(context.Background(), "u1")
	require.NoError(t, err)

	// 10 base + 2*3 referral bonus + 5 manual.
	assert.Equal(t, 21, capacity.Ceiling)
}

func TestAdmitAtCeiling(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)

	existing := make([]artifact.Artifact, 10)
	mocks.expectCapacity("u1", existing, 0, 0)

	ok, err := uc.admit(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdmitBelowCeiling(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)
	mocks.expectCapacity("u1", make([]artifact.Artifact, 9), 0, 0)

	ok, err := uc.admit(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}
