package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"classroom-service/internal/config"
)

// PresignedURLTTL is how long a generated download link stays valid.
const PresignedURLTTL = 15 * time.Minute

var ErrFileTooLarge = fmt.Errorf("file exceeds the maximum allowed size")

// MinioStorage stores uploaded assignment and submission files in a
// single bucket. Objects are never served directly; downloads go
// through short-lived presigned URLs.
type MinioStorage struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
}

func NewMinioStorage(cfg *config.MinioConfig, maxFileSizeMB int64) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioStorage{
		client:      client,
		bucket:      cfg.Bucket,
		maxFileSize: maxFileSizeMB * 1024 * 1024,
	}, nil
}

// Upload stores one multipart file under the given prefix and returns
// the object name. The object name is random so uploads with the same
// filename never collide.
func (s *MinioStorage) Upload(ctx context.Context, prefix string, file *multipart.FileHeader) (string, error) {
	if file.Size > s.maxFileSize {
		return "", ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), filepath.Ext(file.Filename))
	_, err = s.client.PutObject(ctx, s.bucket, objectName, src, file.Size, minio.PutObjectOptions{
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return objectName, nil
}

// Remove deletes an object. Missing objects are not an error.
func (s *MinioStorage) Remove(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

// PresignedURL returns a short-lived download link that forces the
// original filename in the browser save dialog.
func (s *MinioStorage) PresignedURL(ctx context.Context, objectName, downloadName string) (string, error) {
	params := make(url.Values)
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", downloadName))

	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, PresignedURLTTL, params)
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return u.String(), nil
}
