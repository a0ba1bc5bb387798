package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Type string

const (
	TypeMinIO Type = "minio"
	TypeS3    Type = "s3"
)

type Config struct {
	Type Type `env:"STORAGE_TYPE" env-default:"minio"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT" env-default:"minio:9000"`
	MinioBucket    string `env:"MINIO_BUCKET_NAME" env-default:"commercial-files"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" env-default:"admin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" env-default:""`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`

	S3Bucket     string `env:"S3_BUCKET"`
	S3Region     string `env:"S3_REGION" env-default:"us-east-1"`
	S3Endpoint   string `env:"S3_ENDPOINT"`
	AWSAccessKey string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

// Storage keeps file contents addressed by object key.
type Storage interface {
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeMinIO:
		return NewMinIO(cfg)
	case TypeS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}

// ObjectKey builds "files/<id>/v<version>/<name>" keeping only the base name of the upload.
// Each version gets its own key so history rows keep pointing at their content.
func ObjectKey(fileID uuid.UUID, version, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "content"
	}
	return fmt.Sprintf("files/%s/v%s/%s", fileID, version, name)
}
