// Package storage provides object store access by (bucket, key).
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore is the byte-blob interface the pipeline consumes. Both methods
// honor the passed context's deadline.
type ObjectStore interface {
	// Get returns a reader over the object's bytes. The caller must close it.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Put durably writes the object with the given descriptive metadata and
	// returns its addressable URI. Writing an existing key overwrites it.
	Put(ctx context.Context, bucket, key string, body io.Reader, metadata map[string]string) (string, error)
}

// S3Store implements ObjectStore against Amazon S3
type S3Store struct {
	client *s3.Client
}

// NewS3Store creates an S3-backed store using the default credential chain
func NewS3Store(ctx context.Context, region string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg)}, nil
}

// Get retrieves an object from S3
func (s *S3Store) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// Put uploads an object to S3 and returns its s3:// URI
func (s *S3Store) Put(ctx context.Context, bucket, key string, body io.Reader, metadata map[string]string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     body,
		Metadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put s3://%s/%s: %w", bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
