package minio_storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AttachmentStorage keeps assignment and submission attachments in a MinIO
// bucket. Only object keys are persisted in Postgres; URLs are presigned per
// read.
type AttachmentStorage struct {
	client     *minio.Client
	bucket     string
	presignTTL time.Duration
}

func NewAttachmentStorage(endpoint, accessKey, secretKey string, useSSL bool, bucket string, presignTTL time.Duration) (*AttachmentStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", bucket, err)
		}
	}

	return &AttachmentStorage{client: client, bucket: bucket, presignTTL: presignTTL}, nil
}

func (s *AttachmentStorage) Upload(
	ctx context.Context,
	entity string,
	entityID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (objectKey string, err error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".bin"
	}

	objectKey = fmt.Sprintf("%s/%s/%s%s", entity, entityID.String(), uuid.NewString(), ext)

	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *AttachmentStorage) URL(ctx context.Context, objectKey string) (string, error) {
	reqParams := make(url.Values)
	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, s.presignTTL, reqParams)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

func (s *AttachmentStorage) Delete(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
