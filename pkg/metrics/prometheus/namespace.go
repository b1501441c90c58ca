// Package prometheus contains the Prometheus-backed implementations of the
// metrics interfaces in pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/attachfs/pkg/metrics"
)

// namespaceMetrics is the Prometheus implementation of
// metrics.NamespaceMetrics.
type namespaceMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	rejectionsTotal   *prometheus.CounterVec
	bytesWritten      prometheus.Counter
}

// NewNamespaceMetrics creates a new Prometheus-backed NamespaceMetrics
// instance.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry
// not called).
func NewNamespaceMetrics() metrics.NamespaceMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopNamespaceMetrics()
	}

	reg := metrics.GetRegistry()

	return &namespaceMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "attachfs_namespace_operations_total",
				Help: "Total number of namespace operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "attachfs_namespace_operation_duration_seconds",
				Help: "Duration of namespace operations in seconds",
				Buckets: []float64{
					0.0001, // 100µs
					0.0005, // 500µs
					0.001,  // 1ms
					0.005,  // 5ms
					0.01,   // 10ms
					0.05,   // 50ms
					0.1,    // 100ms
					0.5,    // 500ms
					1.0,    // 1s
				},
			},
			[]string{"operation"},
		),
		rejectionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "attachfs_namespace_rejections_total",
				Help: "Total number of creation attempts rolled back by ceiling checks",
			},
			[]string{"reason"},
		),
		bytesWritten: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "attachfs_namespace_bytes_written_total",
				Help: "Total bytes physically written by successful file creations",
			},
		),
	}
}

func (m *namespaceMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *namespaceMetrics) RecordRejection(reason string) {
	m.rejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *namespaceMetrics) RecordBytesWritten(bytes int64) {
	m.bytesWritten.Add(float64(bytes))
}
