package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds configuration for an S3-compatible asset store
type MinioConfig struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore creates an asset store for an S3-compatible endpoint such as MinIO
func NewMinioStore(cfg MinioConfig) (AssetStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("S3_ENDPOINT is required")
	}

	host, secure, err := splitEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &minioStore{client: client, bucket: cfg.Bucket}, nil
}

// Fetch downloads the object stored under key
func (s *minioStore) Fetch(ctx context.Context, key string) (*Asset, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(key, err)
	}
	defer obj.Close()

	// GetObject is lazy; errors such as a missing key surface on first read
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.translate(key, err)
	}

	contentType := ""
	if info, err := obj.Stat(); err == nil {
		contentType = info.ContentType
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detectContentType(key, data)
	}

	return &Asset{Key: key, ContentType: contentType, Data: data}, nil
}

// Stat reads the object metadata only
func (s *minioStore) Stat(ctx context.Context, key string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return s.translate(key, err)
	}
	return nil
}

func (s *minioStore) translate(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("%w: %s", ErrAssetNotFound, key)
	}
	return fmt.Errorf("failed to access asset: %w", err)
}

// splitEndpoint accepts "host:port" or a URL and reports whether TLS is used
func splitEndpoint(endpoint string) (string, bool, error) {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return endpoint, false, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid S3_ENDPOINT %q: %w", endpoint, err)
	}
	return u.Host, u.Scheme == "https", nil
}
