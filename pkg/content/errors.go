package content

import "errors"

// ============================================================================
// Standard Byte Store Errors
// ============================================================================

// These errors provide a consistent way to indicate common failure
// conditions across all byte store implementations. The namespace core
// checks for them with errors.Is and maps them to its own error codes.
//
// Implementations wrap these errors with path context:
//
//	if !exists {
//	    return fmt.Errorf("content %s: %w", path, content.ErrNotFound)
//	}

var (
	// ErrNotFound indicates no content is stored at the requested path.
	ErrNotFound = errors.New("content not found")

	// ErrInvalidPath indicates the path is empty or malformed.
	ErrInvalidPath = errors.New("invalid content path")

	// ErrStorageFull indicates the backend has no available space.
	// This is a transient error; it may succeed after cleanup.
	ErrStorageFull = errors.New("storage full")

	// ErrUnavailable indicates the backend is temporarily unreachable.
	// This is a transient error; retrying may succeed.
	ErrUnavailable = errors.New("storage unavailable")
)
