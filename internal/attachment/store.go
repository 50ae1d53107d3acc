package attachment

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"hr-backoffice/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is the S3-compatible object storage the workflows attach files
// through. The approval core never reads file bytes back; it only hands
// keys and signed URLs around.
//
//go:generate mockgen -source=store.go -destination=mock/store_mock.go -package=mock
type Store interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type noopStore struct{}

func (noopStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", nil
}

func (noopStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", nil
}

// NewNoopStore is used when object storage is not configured; uploads
// are dropped and keys stay empty.
func NewNoopStore() Store {
	return noopStore{}
}

type minioStore struct {
	client *minio.Client
	bucket string
}

func NewStore(cfg *config.Config) (Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}

	return &minioStore{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *minioStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *minioStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
