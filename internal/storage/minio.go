package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"todo-starter/backend/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	BucketAvatars         = "avatars"
	BucketTodoAttachments = "todo_attachments"
)

// ObjectStorage is the subset of object-store operations the upload pipeline
// needs. Uploads overwrite any existing object at the same path.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, bucket, path string) error
	PublicURL(bucket, path string) string
	Ping(ctx context.Context) error
}

type MinIOStorage struct {
	client    *minio.Client
	publicURL string
}

func NewMinIOStorage(cfg *config.Config) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
		Region: cfg.Storage.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &MinIOStorage{
		client:    client,
		publicURL: strings.TrimSuffix(cfg.Storage.PublicURL, "/"),
	}, nil
}

// EnsureBuckets creates the media buckets if they do not exist yet.
func (s *MinIOStorage) EnsureBuckets(ctx context.Context, region string) error {
	for _, bucket := range []string{BucketAvatars, BucketTodoAttachments} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}
	return nil
}

func (s *MinIOStorage) Upload(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, bucket, path, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s/%s: %w", bucket, path, err)
	}

	return nil
}

func (s *MinIOStorage) Remove(ctx context.Context, bucket, path string) error {
	err := s.client.RemoveObject(ctx, bucket, path, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object %s/%s: %w", bucket, path, err)
	}
	return nil
}

func (s *MinIOStorage) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, bucket, path)
}

func (s *MinIOStorage) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, BucketAvatars)
	return err
}
