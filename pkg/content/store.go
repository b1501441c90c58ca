package content

import (
	"context"
	"io"
	"math"
)

// ============================================================================
// Store Interface
// ============================================================================

// Store provides backend-agnostic storage for physical file bytes.
//
// The byte store is addressed by hash-chain paths: slash-joined record
// hashes accumulated from an owner's root down to the file, exclusive of
// the root itself (e.g. "a1b2/c3d4/e5f6"). The namespace core derives these
// paths during resolution; the byte store treats them as opaque keys.
//
// Separation of concerns:
// The byte store manages only raw data. Record metadata, hierarchy,
// permissions, and quota all live in the attachment record store; the
// namespace core coordinates the two. This separation allows record and
// byte storage to scale independently and lets different deployments mix
// backends (SQLite records with S3 bytes, Badger records with local disk).
//
// Design principles:
//   - Storage-agnostic: works with filesystem, S3, or memory backends
//   - Consistent error handling: sentinel errors wrapped with path context
//   - Context-aware: operations respect cancellation and timeouts
//   - No access control: the byte store trusts paths from the namespace core
//
// Thread safety:
// Implementations must be safe for concurrent use by multiple goroutines.
// Concurrent writes to the same path are last-write-wins; the namespace
// core's creation sequence never issues them.
type Store interface {
	// Write stores the complete byte content at the given path, replacing
	// any previous content, and returns the number of bytes written.
	//
	// The returned length is what the creation sequence verifies against
	// the expected size before committing a record.
	Write(ctx context.Context, path string, data []byte) (int64, error)

	// Read returns a reader for the content at the given path.
	//
	// The caller is responsible for closing the reader. Returns
	// ErrNotFound (wrapped) when nothing is stored at the path.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Size returns the byte length of the content at the given path
	// without reading it. Returns ErrNotFound when nothing is stored.
	Size(ctx context.Context, path string) (int64, error)

	// Exists reports whether content is stored at the given path.
	//
	// A missing path yields (false, nil), not an error.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the content at the given path.
	//
	// Deleting a path with no content succeeds: compensation paths must
	// be able to run unconditionally.
	Delete(ctx context.Context, path string) error

	// Stats returns capacity and usage information for the backing store.
	//
	// Backends without a fixed capacity (S3, memory) report UnlimitedSize
	// for TotalSize and AvailableSize.
	Stats(ctx context.Context) (*StorageStats, error)
}

// ============================================================================
// Supporting Types
// ============================================================================

// UnlimitedSize marks a capacity field as effectively unbounded.
const UnlimitedSize int64 = math.MaxInt64

// StorageStats contains capacity and usage information for a byte store.
type StorageStats struct {
	// TotalSize is the total capacity in bytes, or UnlimitedSize when the
	// backend has no fixed capacity.
	TotalSize int64

	// UsedSize is the space consumed by stored content in bytes.
	UsedSize int64

	// AvailableSize is the remaining space in bytes, or UnlimitedSize.
	AvailableSize int64

	// ObjectCount is the number of stored content items.
	ObjectCount int64
}

// Unlimited reports whether the store has no fixed capacity.
func (s *StorageStats) Unlimited() bool {
	return s.TotalSize == UnlimitedSize
}
