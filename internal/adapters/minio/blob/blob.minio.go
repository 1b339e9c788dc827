// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package blob

import (
	"bytes"
	"context"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Repository provides an interface for MinIO storage operations on hosted documents.
//
//go:generate mockgen --destination=blob.minio.mock.go --package=blob . Repository
type Repository interface {
	Put(ctx context.Context, objectName string, contentType string, data []byte) error
	Remove(ctx context.Context, objectName string) error
	PublicURL(objectName string) string
}

// MinioRepository provides access to a MinIO bucket for hosted document blobs.
type MinioRepository struct {
	minioClient   *minio.Client
	BucketName    string
	publicBaseURL string
}

// NewMinioRepository creates a new instance of MinioRepository with the given client,
// bucket name and the externally reachable base URL used to build public links.
func NewMinioRepository(minioClient *minio.Client, bucketName, publicBaseURL string) *MinioRepository {
	return &MinioRepository{
		minioClient:   minioClient,
		BucketName:    bucketName,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (repo *MinioRepository) EnsureBucket(ctx context.Context) error {
	exists, err := repo.minioClient.BucketExists(ctx, repo.BucketName)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return repo.minioClient.MakeBucket(ctx, repo.BucketName, minio.MakeBucketOptions{})
}

// Put uploads data to the MinIO bucket with the given object name and content type.
func (repo *MinioRepository) Put(ctx context.Context, objectName string, contentType string, data []byte) error {
	fileReader := bytes.NewReader(data)
	fileSize := int64(len(data))

	_, err := repo.minioClient.PutObject(ctx, repo.BucketName, objectName, fileReader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return err
	}

	return nil
}

// Remove deletes the object with the given name from the MinIO bucket.
func (repo *MinioRepository) Remove(ctx context.Context, objectName string) error {
	return repo.minioClient.RemoveObject(ctx, repo.BucketName, objectName, minio.RemoveObjectOptions{})
}

// PublicURL returns the durable, stable URL of the stored object.
func (repo *MinioRepository) PublicURL(objectName string) string {
	return repo.publicBaseURL + "/" + repo.BucketName + "/" + objectName
}
