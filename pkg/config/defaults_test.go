package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	require.Equal(t, "INFO", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
	require.Equal(t, "stdout", cfg.Logging.Output)

	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, 9090, cfg.Server.Metrics.Port)
	require.False(t, cfg.Server.Metrics.Enabled)

	require.Equal(t, "database", cfg.Records.Type)
	require.Equal(t, "filesystem", cfg.Content.Type)
	require.Equal(t, "/var/lib/attachfs/content", cfg.Content.Filesystem["path"])

	require.False(t, cfg.Sweeper.Enabled)
	require.Equal(t, time.Hour, cfg.Sweeper.Interval)
	require.Equal(t, time.Hour, cfg.Sweeper.MinAge)

	require.Equal(t, "/attach", cfg.Namespace.MountPoint)
	require.False(t, cfg.Namespace.BlockPublic)
	require.Zero(t, cfg.Namespace.MaxFileSize)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "warn"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Records.Type = "badger"
	cfg.Content.Type = "s3"
	cfg.Namespace.MountPoint = "/files"

	ApplyDefaults(cfg)

	// Level is normalized to uppercase but otherwise preserved.
	require.Equal(t, "WARN", cfg.Logging.Level)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "badger", cfg.Records.Type)
	require.Equal(t, "s3", cfg.Content.Type)
	require.Equal(t, "/files", cfg.Namespace.MountPoint)
}

func TestApplyDefaultsFillsChannelAccounts(t *testing.T) {
	cfg := &Config{
		Channels: []ChannelConfig{
			{ID: "a", Handle: "alice"},
			{ID: "b", Handle: "bob", AccountID: "shared"},
		},
	}

	ApplyDefaults(cfg)

	require.Equal(t, "a", cfg.Channels[0].AccountID)
	require.Equal(t, "shared", cfg.Channels[1].AccountID)
}
