package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "github.com/bravo68web/shipyard/pkg/errors"
)

// maxDeleteBatch is the S3 DeleteObjects limit
const maxDeleteBatch = 1000

// S3Storage keeps archived logs as objects in an S3 bucket
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string // Base prefix for all objects (e.g., "shipyard/")
}

// S3Config holds configuration for S3 storage
type S3Config struct {
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	Endpoint     string // Optional: for S3-compatible services like MinIO
	UsePathStyle bool   // Optional: use path-style addressing
	Prefix       string // Base prefix for all objects
}

// NewS3Storage creates a new S3 storage instance
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	var configOpts []func(*config.LoadOptions) error
	configOpts = append(configOpts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	storage := &S3Storage{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		prefix: prefix,
	}

	if _, err := storage.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(storage.bucket),
	}); err != nil {
		return nil, fmt.Errorf("failed to verify S3 bucket: %w", err)
	}

	return storage, nil
}

func (s *S3Storage) fullKey(key string) string {
	return s.prefix + strings.TrimPrefix(key, "/")
}

// Put uploads data as the object for key
func (s *S3Storage) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.fullKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return apperrors.StorageError("put", err)
	}
	return nil
}

// Get downloads the object for key
func (s *S3Storage) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, apperrors.NotFound("log", err)
		}
		return nil, apperrors.StorageError("get", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, apperrors.StorageError("get", err)
	}
	return data, nil
}

// DeletePrefix removes all objects under prefix in batches
func (s *S3Storage) DeletePrefix(ctx context.Context, prefix string) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.fullKey(prefix)),
	})

	var objects []types.ObjectIdentifier
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return apperrors.StorageError("list", err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}
	}

	for start := 0; start < len(objects); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(objects))
		_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{
				Objects: objects[start:end],
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return apperrors.StorageError("delete", err)
		}
	}
	return nil
}
