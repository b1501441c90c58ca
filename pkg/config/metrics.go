package config

import (
	"github.com/marmos91/attachfs/internal/logger"
	"github.com/marmos91/attachfs/pkg/metrics"
	promMetrics "github.com/marmos91/attachfs/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from
// configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if
	// disabled)
	Server *metrics.Server

	// Namespace is the metrics collector for the namespace service
	// (never nil, uses noop if disabled)
	Namespace metrics.NamespaceMetrics
}

// InitializeMetrics creates and initializes all metrics components based
// on configuration.
//
// If metrics are enabled:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
func InitializeMetrics(cfg *Config, log *logger.Logger) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		return &MetricsResult{
			Server:    nil,
			Namespace: metrics.NewNoopNamespaceMetrics(),
		}
	}

	metrics.InitRegistry()

	server := metrics.NewServer(metrics.ServerConfig{
		Port: cfg.Server.Metrics.Port,
		Log:  log,
	})

	return &MetricsResult{
		Server:    server,
		Namespace: promMetrics.NewNamespaceMetrics(),
	}
}
