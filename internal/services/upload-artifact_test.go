// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LerianStudio/pagehost/internal/adapters/minio/blob"
	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/artifact"
	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/referral"
	"github.com/LerianStudio/pagehost/internal/adapters/rabbitmq"
	"github.com/LerianStudio/pagehost/internal/adapters/shortener"
	"github.com/LerianStudio/pagehost/pkg"
	"github.com/LerianStudio/pagehost/pkg/constant"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type useCaseMocks struct {
	artifactRepo *artifact.MockRepository
	referralRepo *referral.MockRepository
	blobRepo     *blob.MockRepository
	shortener    *shortener.MockShortener
	events       *rabbitmq.MockEventPublisher
}

func newTestUseCase(t *testing.T, ctrl *gomock.Controller) (*UseCase, *useCaseMocks) {
	t.Helper()

	mocks := &useCaseMocks{
		artifactRepo: artifact.NewMockRepository(ctrl),
		referralRepo: referral.NewMockRepository(ctrl),
		blobRepo:     blob.NewMockRepository(ctrl),
		shortener:    shortener.NewMockShortener(ctrl),
		events:       rabbitmq.NewMockEventPublisher(ctrl),
	}

	pending := NewPendingUploads(time.Minute, &log.NoneLogger{})
	t.Cleanup(pending.Close)

	uc := &UseCase{
		ArtifactRepo: mocks.artifactRepo,
		ReferralRepo: mocks.referralRepo,
		BlobRepo:     mocks.blobRepo,
		Shortener:    mocks.shortener,
		Events:       mocks.events,
		Pending:      pending,
		Limits: Limits{
			MaxFileSize:       constant.DefaultMaxFileSize,
			MaxArchiveSize:    constant.DefaultMaxArchiveSize,
			MaxArchiveEntries: constant.DefaultMaxArchiveEntries,
			BaseSlots:         constant.DefaultBaseSlots,
			BonusPerReferral:  constant.DefaultBonusPerReferral,
			RetentionDays:     constant.DefaultRetentionDays,
			PendingUploadTTL:  time.Minute,
		},
	}

	return uc, mocks
}

// expectCapacity wires the store reads backing one admission check.
func (m *useCaseMocks) expectCapacity(userID string, existing []artifact.Artifact, referrals, bonus int) {
	m.artifactRepo.EXPECT().List(gomock.Any(), userID).Return(existing, int64(len(existing)), nil)
	m.referralRepo.EXPECT().ReferralCount(gomock.Any(), userID).Return(referrals, nil)
	m.referralRepo.EXPECT().BonusSlots(gomock.Any(), userID).Return(bonus, nil)
}

func makeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	w := zip.NewWriter(&buf)

	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)

		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}

func businessErrorCode(t *testing.T, err error) string {
	t.Helper()

	require.Error(t, err)

	switch e := err.(type) {
	case pkg.ValidationError:
		return e.Code
	case pkg.EntityNotFoundError:
		return e.Code
	case pkg.UnprocessableOperationError:
		return e.Code
	case pkg.ResponseError:
		return e.Title
	default:
		t.Fatalf("unexpected error type %T: %v", err, err)
		return ""
	}
}

func TestUploadArtifactDirectHTML(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)
	content := []byte("<html><body><h1>hello</h1></body></html>")

	mocks.expectCapacity("u1", nil, 0, 0)
	mocks.blobRepo.EXPECT().Put(gomock.Any(), gomock.Any(), "text/html; charset=utf-8", gomock.Any()).Return(nil)
	mocks.blobRepo.EXPECT().PublicURL(gomock.Any()).Return("https://cdn.example.com/pagehost/uploads/u1/x_index.html")
	mocks.shortener.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return("https://tinyurl.com/abc123", nil)
	mocks.artifactRepo.EXPECT().Append(gomock.Any(), "u1", gomock.Any()).Return(nil)
	mocks.events.EXPECT().Publish(gomock.Any(), constant.EventArtifactCreated, gomock.Any()).Return(nil)

	outcome, err := uc.UploadArtifact(context.Background(), "u1", "index.html", int64(len(content)), content)
	require.NoError(t, err)
	require.NotNil(t, outcome.Artifact)

	assert.Empty(t, outcome.Ticket)
	assert.Equal(t, "index.html", outcome.Artifact.Name)
	assert.Equal(t, "https://tinyurl.com/abc123", outcome.Artifact.URL)
	assert.Equal(t, 0, outcome.Artifact.Index)
}

func TestUploadArtifactUnsupportedFileType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)

	_, err := uc.UploadArtifact(context.Background(), "u1", "notes.txt", 4, []byte("text"))
	assert.Equal(t, constant.ErrUnsupportedFileType.Error(), businessErrorCode(t, err))
}

func TestUploadArtifactEmptyFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)

	_, err := uc.UploadArtifact(context.Background(), "u1", "index.html", 0, nil)
	assert.Equal(t, constant.ErrEmptyFile.Error(), businessErrorCode(t, err))
}

func TestUploadArtifactFileTooLargeNoSideEffects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)

	// No blob or record expectations: an oversize upload must produce neither.
	_, err := uc.UploadArtifact(context.Background(), "u1", "big.html", constant.DefaultMaxFileSize+1, []byte("<html></html>"))
	assert.Equal(t, constant.ErrFileTooLarge.Error(), businessErrorCode(t, err))
}

func TestUploadArtifactQuotaExceeded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)

	existing := make([]artifact.Artifact, constant.DefaultBaseSlots)
	mocks.expectCapacity("u1", existing, 0, 0)

	_, err := uc.UploadArtifact(context.Background(), "u1", "index.html", 12, []byte("<html></html>"))
	assert.Equal(t, constant.ErrQuotaExceeded.Error(), businessErrorCode(t, err))
}

func TestUploadArtifactShortenerFailureKeepsLongURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)
	longURL := "https://cdn.example.com/pagehost/uploads/u1/x_index.html"

	mocks.expectCapacity("u1", nil, 0, 0)
	mocks.blobRepo.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mocks.blobRepo.EXPECT().PublicURL(gomock.Any()).Return(longURL)
	mocks.shortener.EXPECT().Shorten(gomock.Any(), longURL).Return("", errors.New("shortener down"))
	mocks.artifactRepo.EXPECT().Append(gomock.Any(), "u1", gomock.Any()).Return(nil)
	mocks.events.EXPECT().Publish(gomock.Any(), constant.EventArtifactCreated, gomock.Any()).Return(nil)

	outcome, err := uc.UploadArtifact(context.Background(), "u1", "index.html", 12, []byte("<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, longURL, outcome.Artifact.URL)
}

func TestUploadArtifactAppendFailureSurfacesPartialUpload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	originalSleep := sleepFunc
	sleepFunc = func(time.Duration) {}

	defer func() { sleepFunc = originalSleep }()

	uc, mocks := newTestUseCase(t, ctrl)

	mocks.expectCapacity("u1", nil, 0, 0)
	mocks.blobRepo.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mocks.blobRepo.EXPECT().PublicURL(gomock.Any()).Return("https://cdn.example.com/pagehost/uploads/u1/x_index.html")
	mocks.shortener.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return("", errors.New("down"))
	mocks.artifactRepo.EXPECT().Append(gomock.Any(), "u1", gomock.Any()).
		Return(errors.New("mongo unavailable")).
		Times(constant.AppendMaxRetries + 1)

	_, err := uc.UploadArtifact(context.Background(), "u1", "index.html", 12, []byte("<html></html>"))
	assert.Equal(t, "Partial Upload", businessErrorCode(t, err))
}

func TestUploadArtifactZipSingleCandidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)
	archive := makeZip(t, map[string]string{
		"site/index.html": "<html><body>zip page</body></html>",
		"site/style.css":  "body { color: red }",
	})

	mocks.expectCapacity("u1", nil, 0, 0)
	mocks.blobRepo.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mocks.blobRepo.EXPECT().PublicURL(gomock.Any()).Return("https://cdn.example.com/pagehost/uploads/u1/x_index.html")
	mocks.shortener.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return("https://tinyurl.com/zip1", nil)
	mocks.artifactRepo.EXPECT().Append(gomock.Any(), "u1", gomock.Any()).Return(nil)
	mocks.events.EXPECT().Publish(gomock.Any(), constant.EventArtifactCreated, gomock.Any()).Return(nil)

	outcome, err := uc.UploadArtifact(context.Background(), "u1", "site.zip", int64(len(archive)), archive)
	require.NoError(t, err)
	require.NotNil(t, outcome.Artifact)
	assert.Equal(t, "index.html", outcome.Artifact.Name)
}

func TestUploadArtifactZipNoHostableContent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)
	archive := makeZip(t, map[string]string{"style.css": "body { color: red }"})

	_, err := uc.UploadArtifact(context.Background(), "u1", "assets.zip", int64(len(archive)), archive)
	assert.Equal(t, constant.ErrNoHostableContent.Error(), businessErrorCode(t, err))
}

func TestUploadArtifactZipDisambiguation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, mocks := newTestUseCase(t, ctrl)
	archive := makeZip(t, map[string]string{
		"a.html": "<html>a</html>",
		"b.html": "<html>b</html>",
	})

	outcome, err := uc.UploadArtifact(context.Background(), "u1", "pages.zip", int64(len(archive)), archive)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.Ticket)

	assert.Nil(t, outcome.Artifact)
	assert.Equal(t, []string{"a.html", "b.html"}, outcome.Candidates)

	// Resolving the chosen candidate re-enters the pipeline.
	mocks.expectCapacity("u1", nil, 0, 0)
	mocks.blobRepo.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mocks.blobRepo.EXPECT().PublicURL(gomock.Any()).Return("https://cdn.example.com/pagehost/uploads/u1/x_b.html")
	mocks.shortener.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return("https://tinyurl.com/b", nil)
	mocks.artifactRepo.EXPECT().Append(gomock.Any(), "u1", gomock.Any()).Return(nil)
	mocks.events.EXPECT().Publish(gomock.Any(), constant.EventArtifactCreated, gomock.Any()).Return(nil)

	view, err := uc.ResolveCandidate(context.Background(), "u1", outcome.Ticket, "b.html")
	require.NoError(t, err)
	assert.Equal(t, "b.html", view.Name)

	// The ticket is consumed on resolution.
	_, err = uc.ResolveCandidate(context.Background(), "u1", outcome.Ticket, "a.html")
	assert.Equal(t, constant.ErrPendingUploadNotFound.Error(), businessErrorCode(t, err))
}

func TestResolveCandidateUnknownTicket(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)

	_, err := uc.ResolveCandidate(context.Background(), "u1", "no-such-ticket", "a.html")
	assert.Equal(t, constant.ErrPendingUploadNotFound.Error(), businessErrorCode(t, err))
}

func TestResolveCandidateUnknownName(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)
	archive := makeZip(t, map[string]string{
		"a.html": "<html>a</html>",
		"b.html": "<html>b</html>",
	})

	outcome, err := uc.UploadArtifact(context.Background(), "u1", "pages.zip", int64(len(archive)), archive)
	require.NoError(t, err)

	_, err = uc.ResolveCandidate(context.Background(), "u1", outcome.Ticket, "c.html")
	assert.Equal(t, constant.ErrCandidateNotFound.Error(), businessErrorCode(t, err))
}
