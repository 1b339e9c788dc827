// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"testing"

	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/artifact"
	"github.com/LerianStudio/pagehost/pkg/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDeleteArtifactRemovesByIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)

	stored := []artifact.Artifact{
		{Name: "a.html", Path: "uploads/u1/a"},
		{Name: "b.html", Path: "uploads/u1/b"},
		{Name: "c.html", Path: "uploads/u1/c"},
	}

	mocks.artifactRepo.EXPECT().List(gomock.Any(), "u1").Return(stored, int64(4), nil)
	mocks.artifactRepo.EXPECT().
		Replace(gomock.Any(), "u1", []artifact.Artifact{stored[0], stored[2]}, int64(4)).
		Return(nil)
	mocks.blobRepo.EXPECT().Remove(gomock.Any(), "uploads/u1/b").Return(nil)

	require.NoError(t, uc.DeleteArtifact(context.Background(), "u1", 1))
}

func TestDeleteArtifactIndexOutOfRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)

	stored := []artifact.Artifact{{Name: "a.html"}}

	mocks.artifactRepo.EXPECT().List(gomock.Any(), "u1").Return(stored, int64(1), nil)

	err := uc.DeleteArtifact(context.Background(), "u1", 1)
	assert.Equal(t, constant.ErrIndexOutOfRange.Error(), businessErrorCode(t, err))
}

func TestDeleteArtifactNegativeIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)

	mocks.artifactRepo.EXPECT().List(gomock.Any(), "u1").Return([]artifact.Artifact{{Name: "a.html"}}, int64(1), nil)

	err := uc.DeleteArtifact(context.Background(), "u1", -1)
	assert.Equal(t, constant.ErrIndexOutOfRange.Error(), businessErrorCode(t, err))
}

func TestDeleteArtifactRetriesOnVersionConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)

	first := []artifact.Artifact{
		{Name: "a.html", Path: "uploads/u1/a"},
		{Name: "b.html", Path: "uploads/u1/b"},
	}
	// A concurrent upload landed between the read and the rewrite.
	second := []artifact.Artifact{
		{Name: "a.html", Path: "uploads/u1/a"},
		{Name: "b.html", Path: "uploads/u1/b"},
		{Name: "c.html", Path: "uploads/u1/c"},
	}

	gomock.InOrder(
		mocks.artifactRepo.EXPECT().List(gomock.Any(), "u1").Return(first, int64(2), nil),
		mocks.artifactRepo.EXPECT().
			Replace(gomock.Any(), "u1", []artifact.Artifact{first[1]}, int64(2)).
			Return(artifact.ErrVersionConflict),
		mocks.artifactRepo.EXPECT().List(gomock.Any(), "u1").Return(second, int64(3), nil),
		mocks.artifactRepo.EXPECT().
			Replace(gomock.Any(), "u1", []artifact.Artifact{second[1], second[2]}, int64(3)).
			Return(nil),
	)
	mocks.blobRepo.EXPECT().Remove(gomock.Any(), "uploads/u1/a").Return(nil)

	require.NoError(t, uc.DeleteArtifact(context.Background(), "u1", 0))
}

func TestDeleteArtifactExhaustedRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)

	stored := []artifact.Artifact{{Name: "a.html", Path: "uploads/u1/a"}}

	mocks.artifactRepo.EXPECT().List(gomock.Any(), "u1").
		Return(stored, int64(1), nil).
		Times(constant.AppendMaxRetries + 1)
	mocks.artifactRepo.EXPECT().
		Replace(gomock.Any(), "u1", []artifact.Artifact{}, int64(1)).
		Return(artifact.ErrVersionConflict).
		Times(constant.AppendMaxRetries + 1)

	err := uc.DeleteArtifact(context.Background(), "u1", 0)
	assert.Equal(t, "Store Unavailable", businessErrorCode(t, err))
}
