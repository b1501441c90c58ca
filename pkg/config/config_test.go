package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	// An explicitly named file that is absent is an error; only the
	// default search location may be empty.
	require.Error(t, err)
	require.Nil(t, cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
  format: json
server:
  shutdown_timeout: 10s
  metrics:
    enabled: true
    port: 9191
records:
  type: memory
content:
  type: memory
namespace:
  mount_point: /files
  block_public: true
  max_file_size: 1048576
  tier_limits:
    basic: 1073741824
channels:
  - id: alice-id
    handle: alice
    tier: basic
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "DEBUG", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	require.True(t, cfg.Server.Metrics.Enabled)
	require.Equal(t, 9191, cfg.Server.Metrics.Port)
	require.Equal(t, "memory", cfg.Records.Type)
	require.Equal(t, "memory", cfg.Content.Type)
	require.Equal(t, "/files", cfg.Namespace.MountPoint)
	require.True(t, cfg.Namespace.BlockPublic)
	require.EqualValues(t, 1048576, cfg.Namespace.MaxFileSize)
	require.EqualValues(t, 1073741824, cfg.Namespace.TierLimits["basic"])

	require.Len(t, cfg.Channels, 1)
	require.Equal(t, "alice-id", cfg.Channels[0].ID)
	// AccountID falls back to the channel ID.
	require.Equal(t, "alice-id", cfg.Channels[0].AccountID)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
records:
  type: memory
content:
  type: memory
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "INFO", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
	require.Equal(t, "stdout", cfg.Logging.Output)
	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, 9090, cfg.Server.Metrics.Port)
	require.False(t, cfg.Server.Metrics.Enabled)
	require.Equal(t, "/attach", cfg.Namespace.MountPoint)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: info
records:
  type: memory
content:
  type: memory
`)

	t.Setenv("ATTACHFS_LOGGING_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ERROR", cfg.Logging.Level)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, `
records:
  type: cassandra
content:
  type: memory
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation failed")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "records: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
}
