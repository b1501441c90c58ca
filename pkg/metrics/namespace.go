package metrics

import "time"

// NamespaceMetrics provides observability for namespace operations.
//
// Implementations collect metrics about directory listings, path
// resolution, file creation, quota rejections, and bytes written.
//
// This interface is optional - if not provided to the namespace service,
// operations proceed without metrics collection (zero overhead).
//
// Example usage:
//
//	// With metrics enabled
//	nsMetrics := prometheus.NewNamespaceMetrics()
//	service := namespace.NewService(deps, nsMetrics)
//
//	// Without metrics (no-op)
//	service := namespace.NewService(deps, nil)
type NamespaceMetrics interface {
	// RecordOperation records a completed namespace operation with its
	// name, duration, and outcome.
	//
	// Parameters:
	//   - operation: Operation name (e.g., "Resolve", "CreateFile", "ListChildren")
	//   - duration: Time taken to complete the operation
	//   - err: Error if operation failed, nil if successful
	RecordOperation(operation string, duration time.Duration, err error)

	// RecordRejection records a creation attempt rolled back by a
	// post-hoc ceiling check.
	//
	// Parameters:
	//   - reason: Rejection reason ("quota_exceeded" or "too_large")
	RecordRejection(reason string)

	// RecordBytesWritten records bytes physically written by a
	// successful file creation.
	RecordBytesWritten(bytes int64)
}

// NewNoopNamespaceMetrics returns a NamespaceMetrics implementation that
// discards everything.
func NewNoopNamespaceMetrics() NamespaceMetrics {
	return noopNamespaceMetrics{}
}

type noopNamespaceMetrics struct{}

func (noopNamespaceMetrics) RecordOperation(operation string, duration time.Duration, err error) {}
func (noopNamespaceMetrics) RecordRejection(reason string)                                       {}
func (noopNamespaceMetrics) RecordBytesWritten(bytes int64)                                      {}
