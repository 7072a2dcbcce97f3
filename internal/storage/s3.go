package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds configuration for the S3 asset store
type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// ObjectAPI is the part of the S3 client the asset store uses
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type s3Store struct {
	client ObjectAPI
	bucket string
}

// NewS3Store creates an asset store backed by an AWS S3 bucket
func NewS3Store(ctx context.Context, cfg S3Config) (AssetStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3StoreWithClient(s3.NewFromConfig(awsCfg), cfg.Bucket), nil
}

// NewS3StoreWithClient wraps an existing S3 client
func NewS3StoreWithClient(client ObjectAPI, bucket string) AssetStore {
	return &s3Store{client: client, bucket: bucket}
}

// Fetch downloads the object stored under key
func (s *s3Store) Fetch(ctx context.Context, key string) (*Asset, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, key)
		}
		return nil, fmt.Errorf("failed to download asset: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset body: %w", err)
	}

	contentType := aws.ToString(result.ContentType)
	if contentType == "" || contentType == "binary/octet-stream" || contentType == "application/octet-stream" {
		contentType = detectContentType(key, data)
	}

	return &Asset{Key: key, ContentType: contentType, Data: data}, nil
}

// Stat issues a HEAD request for key
func (s *s3Store) Stat(ctx context.Context, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissing(err) {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, key)
		}
		return fmt.Errorf("failed to stat asset: %w", err)
	}
	return nil
}

// isMissing matches GET (NoSuchKey) and HEAD (NotFound) misses
func isMissing(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}
