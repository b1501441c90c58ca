//go:build integration
// +build integration

package s3

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/attachfs/pkg/content"
	contenttesting "github.com/marmos91/attachfs/pkg/content/testing"
)

// TestS3Store_Integration runs the complete byte store test suite against
// a real S3-compatible service (Localstack).
//
// Prerequisites:
//   - Localstack running on localhost:4566
//   - Run with: go test -tags=integration ./pkg/content/s3/...
//
// To start Localstack:
//
//	docker run --rm -p 4566:4566 localstack/localstack
func TestS3Store_Integration(t *testing.T) {
	ctx := context.Background()

	endpoint := os.Getenv("LOCALSTACK_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion("us-east-1"),
		awsConfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			"test", "test", "",
		)),
	)
	if err != nil {
		t.Fatalf("Failed to load AWS config: %v", err)
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		o.UsePathStyle = true // Required for Localstack
	})

	bucketName := "attachfs-test-bucket"
	_, err = client.CreateBucket(ctx, &awss3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		t.Fatalf("Failed to create test bucket: %v", err)
	}

	// Each suite invocation gets its own key prefix so tests stay isolated
	// inside the shared bucket.
	prefixCounter := 0
	suite := &contenttesting.StoreTestSuite{
		NewStore: func() content.Store {
			prefixCounter++
			store, err := New(ctx, Config{
				Client:    client,
				Bucket:    bucketName,
				KeyPrefix: fmt.Sprintf("run-%d/", prefixCounter),
			})
			if err != nil {
				t.Fatalf("Failed to create S3 store: %v", err)
			}
			return store
		},
	}

	suite.Run(t)
}
