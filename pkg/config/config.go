package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/marmos91/attachfs/internal/logger"
	"github.com/marmos91/attachfs/pkg/namespace"
)

// Config represents the complete attachfs configuration.
//
// This structure captures all configurable aspects of the attachment
// namespace server including:
//   - Logging configuration
//   - Server-wide settings (shutdown, metrics endpoint)
//   - Record store selection and configuration (store-specific)
//   - Content store selection and configuration (store-specific)
//   - Namespace policy (mount point, public access, size ceilings)
//   - Channel seed definitions
//
// Configuration sources (in order of precedence):
//  1. Environment variables (ATTACHFS_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each store implementation defines its own configuration type and factory
// function. The Config struct contains type-specific sections (e.g.
// content.filesystem, content.s3) and only the section matching the
// selected type is used.
type Config struct {
	// Logging controls log output behavior
	Logging logger.Config `mapstructure:"logging"`

	// Server contains server-wide settings
	Server ServerConfig `mapstructure:"server"`

	// Records specifies the record store type and type-specific
	// configuration
	Records RecordsConfig `mapstructure:"records"`

	// Content specifies the content store type and type-specific
	// configuration
	Content ContentConfig `mapstructure:"content"`

	// Namespace contains the namespace policy knobs
	Namespace namespace.Config `mapstructure:"namespace"`

	// Sweeper configures the background cleanup of stale provisional
	// records left behind by interrupted file creations
	Sweeper SweeperConfig `mapstructure:"sweeper"`

	// Channels lists channels to seed into the channel directory at
	// startup. Seeding is idempotent; existing channels are left alone.
	Channels []ChannelConfig `mapstructure:"channels" validate:"dive"`
}

// ServerConfig contains server-wide settings.
type ServerConfig struct {
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// Metrics configures the Prometheus metrics endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig controls the Prometheus metrics HTTP endpoint.
type MetricsConfig struct {
	// Enabled turns metrics collection and the /metrics endpoint on
	Enabled bool `mapstructure:"enabled"`

	// Port is the TCP port the metrics server listens on
	Port int `mapstructure:"port" validate:"gte=0,lte=65535"`
}

// SweeperConfig controls the stale provisional record sweeper.
type SweeperConfig struct {
	// Enabled turns background sweeping on
	Enabled bool `mapstructure:"enabled"`

	// Interval is how often to run a sweep pass
	Interval time.Duration `mapstructure:"interval" validate:"gte=0"`

	// MinAge is how old a provisional record must be before it is
	// considered stale
	MinAge time.Duration `mapstructure:"min_age" validate:"gte=0"`

	// DryRun logs what would be removed without removing anything
	DryRun bool `mapstructure:"dry_run"`
}

// RecordsConfig specifies record store configuration.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
type RecordsConfig struct {
	// Type specifies which record store implementation to use
	// Valid values: memory, database, badger
	Type string `mapstructure:"type" validate:"required,oneof=memory database badger"`

	// Database contains relational-backend configuration (SQLite or
	// Postgres via GORM). Only used when Type = "database"
	Database map[string]any `mapstructure:"database"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger"`
}

// ContentConfig specifies content store configuration.
type ContentConfig struct {
	// Type specifies which content store implementation to use
	// Valid values: filesystem, memory, s3
	Type string `mapstructure:"type" validate:"required,oneof=filesystem memory s3"`

	// Filesystem contains filesystem-specific configuration
	// Only used when Type = "filesystem"
	Filesystem map[string]any `mapstructure:"filesystem"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`
}

// ChannelConfig defines a single channel to seed at startup.
type ChannelConfig struct {
	// ID is the channel's stable identity
	ID string `mapstructure:"id" validate:"required"`

	// Handle is the channel's human-readable namespace root segment
	Handle string `mapstructure:"handle" validate:"required"`

	// AccountID groups channels under one storage allowance; defaults to
	// the channel ID
	AccountID string `mapstructure:"account_id"`

	// Tier names the channel's service tier for quota resolution
	Tier string `mapstructure:"tier"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (ATTACHFS_*)
//  2. Configuration file
//  3. Default values
//
// configPath may be empty, in which case the default location is searched.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file
// settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the ATTACHFS_ prefix with underscores,
	// e.g. ATTACHFS_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("ATTACHFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. A missing file
// is not an error; defaults apply.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "attachfs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "attachfs")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
