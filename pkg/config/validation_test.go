package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := GetDefaultConfig()
	cfg.Records.Type = "memory"
	cfg.Content.Type = "memory"
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			"unknown record store type",
			func(c *Config) { c.Records.Type = "cassandra" },
		},
		{
			"unknown content store type",
			func(c *Config) { c.Content.Type = "tape" },
		},
		{
			"empty record store type",
			func(c *Config) { c.Records.Type = "" },
		},
		{
			"zero shutdown timeout",
			func(c *Config) { c.Server.ShutdownTimeout = 0 },
		},
		{
			"metrics port out of range",
			func(c *Config) { c.Server.Metrics.Port = 70000 },
		},
		{
			"unknown log level",
			func(c *Config) { c.Logging.Level = "LOUD" },
		},
		{
			"unknown log format",
			func(c *Config) { c.Logging.Format = "xml" },
		},
		{
			"negative max file size",
			func(c *Config) { c.Namespace.MaxFileSize = -1 },
		},
		{
			"non-positive tier limit",
			func(c *Config) { c.Namespace.TierLimits = map[string]int64{"basic": 0} },
		},
		{
			"sweeper enabled without interval",
			func(c *Config) {
				c.Sweeper.Enabled = true
				c.Sweeper.Interval = 0
			},
		},
		{
			"sweeper enabled without min age",
			func(c *Config) {
				c.Sweeper.Enabled = true
				c.Sweeper.MinAge = 0
			},
		},
		{
			"channel without id",
			func(c *Config) { c.Channels = []ChannelConfig{{Handle: "alice"}} },
		},
		{
			"channel without handle",
			func(c *Config) { c.Channels = []ChannelConfig{{ID: "alice-id"}} },
		},
		{
			"duplicate channel id",
			func(c *Config) {
				c.Channels = []ChannelConfig{
					{ID: "x", Handle: "alice", AccountID: "x"},
					{ID: "x", Handle: "bob", AccountID: "x"},
				}
			},
		},
		{
			"duplicate channel handle",
			func(c *Config) {
				c.Channels = []ChannelConfig{
					{ID: "a", Handle: "alice", AccountID: "a"},
					{ID: "b", Handle: "alice", AccountID: "b"},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
