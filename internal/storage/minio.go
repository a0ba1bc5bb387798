package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOStorage struct {
	Client *minio.Client
	Bucket string
}

func NewMinIO(cfg Config) (*MinIOStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}
	return &MinIOStorage{Client: client, Bucket: cfg.MinioBucket}, nil
}

// EnsureBucket creates the bucket unless it already exists.
func (m *MinIOStorage) EnsureBucket(ctx context.Context) error {
	err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{})
	if err == nil {
		return nil
	}
	exists, errExists := m.Client.BucketExists(ctx, m.Bucket)
	if errExists == nil && exists {
		return nil
	}
	return fmt.Errorf("failed to create bucket %q: %w", m.Bucket, err)
}

func (m *MinIOStorage) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	_, err := m.Client.PutObject(ctx, m.Bucket, key, data, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}
	return nil
}

func (m *MinIOStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.Client.GetObject(ctx, m.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download from minio: %w", err)
	}
	return obj, nil
}

func (m *MinIOStorage) Delete(ctx context.Context, key string) error {
	if err := m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete from minio: %w", err)
	}
	return nil
}
