package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ajmalkv/rollsops/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// s3Sink archives exports to an S3-compatible bucket.
type s3Sink struct {
	client *minio.Client
	bucket string
}

func newS3Sink(cfg config.ExportConfig) (*s3Sink, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("export s3 endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("export s3 credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("export s3 bucket must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("build s3 client: %w", err)
	}

	return &s3Sink{client: client, bucket: cfg.Bucket}, nil
}

func (s *s3Sink) Save(ctx context.Context, name string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: exportContentType,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s: %w", name, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, name), nil
}

var _ ExportSink = (*s3Sink)(nil)
