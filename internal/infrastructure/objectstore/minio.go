// Package objectstore provides the MinIO-backed object storage client.
package objectstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"session-hub/internal/domain"
)

// Config holds object storage connection settings.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
	UploadURLTTL  time.Duration
}

// MinioStorage implements domain.ObjectStorage against an S3-compatible
// service. It hands out presigned PUT URLs so object bytes travel directly
// between the client and storage.
type MinioStorage struct {
	client *minio.Client
	cfg    Config
}

// NewMinioStorage creates a new MinIO storage client.
func NewMinioStorage(cfg Config) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return &MinioStorage{client: client, cfg: cfg}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// CreateUploadURL returns a time-limited presigned PUT URL for the key.
func (s *MinioStorage) CreateUploadURL(ctx context.Context, key string) (string, error) {
	url, err := s.client.PresignedPutObject(ctx, s.cfg.Bucket, key, s.cfg.UploadURLTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return url.String(), nil
}

// Copy copies srcKey to dstKey, overwriting any prior object at dstKey, and
// returns the public URL of the destination. A missing source surfaces as
// domain.ErrObjectNotFound.
func (s *MinioStorage) Copy(ctx context.Context, srcKey, dstKey string) (string, error) {
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.cfg.Bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: s.cfg.Bucket, Object: srcKey},
	)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return "", fmt.Errorf("%w: %s", domain.ErrObjectNotFound, srcKey)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return s.PublicURL(dstKey), nil
}

// Delete removes an object from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// PublicURL builds the public URL for an object key.
func (s *MinioStorage) PublicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + key
	}

	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket, key)
}
