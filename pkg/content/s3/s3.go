// Package s3 implements the byte store on Amazon S3 or S3-compatible
// storage (MinIO, Localstack, Cubbit DS3).
//
// Hash-chain paths are used directly as object keys (with an optional
// prefix), so the bucket mirrors the physical layout and stays
// inspectable with standard S3 tooling.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/marmos91/attachfs/pkg/content"
)

// Store implements content.Store using S3 object storage.
//
// Thread safety: the S3 client is safe for concurrent use. Concurrent
// writes to the same key are last-write-wins under S3's consistency model.
type Store struct {
	client    *awss3.Client
	bucket    string
	keyPrefix string
}

// Config contains configuration for the S3 byte store.
type Config struct {
	// Client is the configured S3 client
	Client *awss3.Client

	// Bucket is the S3 bucket name. The bucket must already exist.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys.
	// Example: "attachfs/" results in keys like "attachfs/a1b2/c3d4"
	KeyPrefix string
}

// New creates an S3-based byte store and verifies bucket access.
func New(ctx context.Context, config Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	_, err := config.Client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(config.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", config.Bucket, err)
	}

	return &Store{
		client:    config.Client,
		bucket:    config.Bucket,
		keyPrefix: config.KeyPrefix,
	}, nil
}

func (s *Store) objectKey(path string) string {
	return s.keyPrefix + path
}

// isNotFound reports whether an S3 error means the object does not exist.
// HeadObject reports missing keys as a generic 404 instead of NoSuchKey.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

// Write uploads data to the given path.
func (s *Store) Write(ctx context.Context, path string, data []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if path == "" {
		return 0, fmt.Errorf("content %q: %w", path, content.ErrInvalidPath)
	}

	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(path)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to put object: %w", err)
	}
	return int64(len(data)), nil
}

// Read returns a reader streaming the object at the given path. The caller
// must close it.
func (s *Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("content %s: %w", path, content.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return result.Body, nil
}

// Size returns the object's byte length via a HEAD request.
func (s *Store) Size(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("content %s: %w", path, content.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to head object: %w", err)
	}
	if result.ContentLength == nil {
		return 0, fmt.Errorf("content length not available for %s", path)
	}
	return *result.ContentLength, nil
}

// Exists reports whether an object is stored at the given path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object: %w", err)
	}
	return true, nil
}

// Delete removes the object at the given path. S3 deletion is already
// idempotent: deleting a missing key succeeds.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Stats lists objects under the key prefix and sums their sizes.
//
// For large buckets this is a paginated scan; callers should cache the
// result rather than call it on a hot path.
func (s *Store) Stats(ctx context.Context) (*content.StorageStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var used, count int64
	paginator := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.keyPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, object := range page.Contents {
			if object.Size != nil {
				used += *object.Size
			}
			count++
		}
	}

	return &content.StorageStats{
		TotalSize:     content.UnlimitedSize,
		UsedSize:      used,
		AvailableSize: content.UnlimitedSize,
		ObjectCount:   count,
	}, nil
}
