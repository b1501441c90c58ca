package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/attachfs/internal/logger"
	"github.com/marmos91/attachfs/pkg/attachment"
	"github.com/marmos91/attachfs/pkg/attachment/badgerstore"
	"github.com/marmos91/attachfs/pkg/attachment/gormstore"
	attachmemory "github.com/marmos91/attachfs/pkg/attachment/memory"
	"github.com/marmos91/attachfs/pkg/content"
	contentfs "github.com/marmos91/attachfs/pkg/content/fs"
	contentmemory "github.com/marmos91/attachfs/pkg/content/memory"
	contents3 "github.com/marmos91/attachfs/pkg/content/s3"
)

// CreateRecordStore creates a record store based on configuration.
//
// This factory uses the Type field to determine which store implementation
// to create, then decodes the type-specific configuration from the
// corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": in-process storage, ephemeral
//   - "database": SQLite or PostgreSQL via GORM, persistent
//   - "badger": BadgerDB key-value storage, persistent
//
// Every backend serves both the record store and the channel directory,
// so the combined attachment.Store is returned.
func CreateRecordStore(ctx context.Context, cfg *RecordsConfig) (attachment.Store, error) {
	switch cfg.Type {
	case "memory":
		return attachmemory.NewStore(), nil
	case "database":
		return createDatabaseRecordStore(cfg.Database)
	case "badger":
		return createBadgerRecordStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown record store type: %q (supported: memory, database, badger)", cfg.Type)
	}
}

// createDatabaseRecordStore creates a GORM-backed record store.
func createDatabaseRecordStore(options map[string]any) (attachment.Store, error) {
	var storeCfg gormstore.Config
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode database record store config: %w", err)
	}

	store, err := gormstore.New(&storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database record store: %w", err)
	}
	return store, nil
}

// createBadgerRecordStore creates a BadgerDB-backed record store.
func createBadgerRecordStore(ctx context.Context, options map[string]any) (attachment.Store, error) {
	type BadgerRecordStoreOptions struct {
		DBPath string `mapstructure:"db_path"`
	}

	var storeOpts BadgerRecordStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger record store config: %w", err)
	}

	if storeOpts.DBPath == "" {
		return nil, fmt.Errorf("badger record store: db_path is required")
	}

	store, err := badgerstore.New(ctx, badgerstore.Config{DBPath: storeOpts.DBPath})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger record store: %w", err)
	}
	return store, nil
}

// CreateContentStore creates a content store based on configuration.
//
// Supported types:
//   - "filesystem": local filesystem storage
//   - "memory": in-process storage, ephemeral
//   - "s3": Amazon S3 or any S3-compatible endpoint (MinIO, Localstack)
func CreateContentStore(ctx context.Context, cfg *ContentConfig) (content.Store, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemContentStore(ctx, cfg.Filesystem)
	case "memory":
		return contentmemory.New(), nil
	case "s3":
		return createS3ContentStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown content store type: %q (supported: filesystem, memory, s3)", cfg.Type)
	}
}

// createFilesystemContentStore creates a filesystem-based content store.
func createFilesystemContentStore(ctx context.Context, options map[string]any) (content.Store, error) {
	type FilesystemContentStoreConfig struct {
		Path string `mapstructure:"path"`
	}

	var storeCfg FilesystemContentStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem content store config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("filesystem content store: path is required")
	}

	store, err := contentfs.New(ctx, storeCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem content store: %w", err)
	}
	return store, nil
}

// createS3ContentStore creates an S3-based content store.
func createS3ContentStore(ctx context.Context, options map[string]any) (content.Store, error) {
	type S3ContentStoreConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var storeCfg S3ContentStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 content store config: %w", err)
	}

	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 content store: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 content store: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))

	// Custom endpoint for MinIO, Localstack and similar S3-compatible
	// services.
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default chain.
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		// Path-style addressing for compatibility with MinIO/Localstack
		if storeCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := contents3.New(ctx, contents3.Config{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 content store: %w", err)
	}
	return store, nil
}

// SeedChannels creates the configured channels in the channel directory.
//
// Seeding is idempotent: a channel whose ID is already present is left
// untouched, so a restart against a persistent store does not clobber
// handle renames or policy changes made at runtime.
func SeedChannels(ctx context.Context, directory attachment.ChannelDirectory, channels []ChannelConfig, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	for i, channelCfg := range channels {
		_, err := directory.GetByID(ctx, channelCfg.ID)
		if err == nil {
			log.Debug("channel already exists, skipping seed", "id", channelCfg.ID, "handle", channelCfg.Handle)
			continue
		}
		if !attachment.IsCode(err, attachment.ErrNotFound) {
			return fmt.Errorf("failed to check channel[%d] %q: %w", i, channelCfg.ID, err)
		}

		channel := &attachment.Channel{
			ID:        channelCfg.ID,
			Handle:    channelCfg.Handle,
			AccountID: channelCfg.AccountID,
			Tier:      channelCfg.Tier,
			CreatedAt: time.Now().UTC(),
		}
		if err := directory.Put(ctx, channel); err != nil {
			return fmt.Errorf("failed to seed channel[%d] %q: %w", i, channelCfg.ID, err)
		}
		log.Info("seeded channel", "id", channel.ID, "handle", channel.Handle, "account", channel.AccountID)
	}

	return nil
}
