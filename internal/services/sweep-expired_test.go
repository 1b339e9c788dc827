// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/artifact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func stampDaysAgo(now time.Time, days int) string {
	return now.AddDate(0, 0, -days).Format(artifact.CreatedAtLayout)
}

func TestSweepExpiredRemovesOldArtifacts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	originalNow := nowFunc
	nowFunc = func() time.Time { return now }

	defer func() { nowFunc = originalNow }()

	uc, mocks := newTestUseCase(t, ctrl)

	old := artifact.Artifact{Name: "old.html", Path: "uploads/u1/old", CreatedAt: stampDaysAgo(now, 31)}
	fresh := artifact.Artifact{Name: "fresh.html", Path: "uploads/u1/fresh", CreatedAt: stampDaysAgo(now, 29)}

	mocks.artifactRepo.EXPECT().ListOwners(gomock.Any()).Return([]string{"u1"}, nil)
	mocks.artifactRepo.EXPECT().List(gomock.Any(), "u1").Return([]artifact.Artifact{old, fresh}, int64(2), nil)
	mocks.artifactRepo.EXPECT().Replace(gomock.Any(), "u1", []artifact.Artifact{fresh}, int64(2)).Return(nil)
	mocks.blobRepo.EXPECT().Remove(gomock.Any(), "uploads/u1/old").Return(nil)

	removed, err := uc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestSweepExpiredRetainsUnparsableTimestamps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	originalNow := nowFunc
	nowFunc = func() time.Time { return now }

	defer func() { nowFunc = originalNow }()

	uc, mocks := newTestUseCase(t, ctrl)

	broken := artifact.Artifact{Name: "broken.html", Path: "uploads/u1/broken", CreatedAt: "not-a-timestamp"}

	mocks.artifactRepo.EXPECT().ListOwners(gomock.Any()).Return([]string{"u1"}, nil)
	mocks.artifactRepo.EXPECT().List(gomock.Any(), "u1").Return([]artifact.Artifact{broken}, int64(1), nil)
	// No Replace expectation: nothing expired, the sequence is not rewritten.

	removed, err := uc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestSweepExpiredSkipsUntouchedUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	originalNow := nowFunc
	nowFunc = func() time.Time { return now }

	defer func() { nowFunc = originalNow }()

	uc, mocks := newTestUseCase(t, ctrl)

	fresh := artifact.Artifact{Name: "fresh.html", CreatedAt: stampDaysAgo(now, 1)}

	mocks.artifactRepo.EXPECT().ListOwners(gomock.Any()).Return([]string{"u1"}, nil)
	mocks.artifactRepo.EXPECT().List(gomock.Any(), "u1").Return([]artifact.Artifact{fresh}, int64(1), nil)

	removed, err := uc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestSweepExpiredBlobFailureDoesNotFailSweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	originalNow := nowFunc
	nowFunc = func() time.Time { return now }

	defer func() { nowFunc = originalNow }()

	uc, mocks := newTestUseCase(t, ctrl)

	old := artifact.Artifact{Name: "old.html", Path: "uploads/u1/old", CreatedAt: stampDaysAgo(now, 45)}

	mocks.artifactRepo.EXPECT().ListOwners(gomock.Any()).Return([]string{"u1"}, nil)
	mocks.artifactRepo.EXPECT().List(gomock.Any(), "u1").Return([]artifact.Artifact{old}, int64(1), nil)
	mocks.artifactRepo.EXPECT().Replace(gomock.Any(), "u1", []artifact.Artifact{}, int64(1)).Return(nil)
	mocks.blobRepo.EXPECT().Remove(gomock.Any(), "uploads/u1/old").Return(errors.New("object store down"))

	removed, err := uc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
