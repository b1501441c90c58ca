package attachment

import (
	"context"
	"time"
)

// ============================================================================
// RecordStore Interface
// ============================================================================

// RecordStore is the persistent table of attachment records, keyed by hash,
// with parent-folder linkage.
//
// The record store is the single source of truth for namespace structure.
// It manages only metadata: file content lives in a separate physical byte
// store addressed by the same hash-chain paths (see pkg/content). The
// namespace core coordinates the two; the record store never touches bytes.
//
// Design principles:
//   - Exact-match equality on hash and name lookups
//   - Consistent error handling: business logic failures return *StoreError
//   - Context-aware: operations respect cancellation and timeouts
//   - Statement-level atomicity: each call is atomic, but no transactions
//     span multiple calls (the creation sequence compensates instead)
//
// Sibling uniqueness:
// Two records sharing the same ParentHash and OwnerID must not share a Name.
// Implementations enforce this (unique index, or an equivalent check under
// the store's write lock) and return ErrAlreadyExists on violation.
//
// Thread safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type RecordStore interface {
	// Insert persists a new record.
	//
	// The record's Hash must be fresh (never used before). Returns
	// ErrAlreadyExists when a sibling with the same name already exists
	// under the same parent and owner.
	Insert(ctx context.Context, record *Record) error

	// GetByHash retrieves a record by its hash.
	//
	// Returns ErrNotFound when no record carries the hash.
	GetByHash(ctx context.Context, hash string) (*Record, error)

	// LookupChild resolves a name within a directory, scoped to an owner.
	//
	// parentHash is the containing directory's hash, or RootParentHash for
	// entries directly under the owner's root. kind narrows the match to
	// directories or files; KindAny matches either. Name matching is exact.
	//
	// Returns ErrNotFound when no sibling matches.
	LookupChild(ctx context.Context, ownerID, parentHash, name string, kind Kind) (*Record, error)

	// ListChildren returns every record whose ParentHash and OwnerID match.
	//
	// The result is sorted by name for stable listings. An empty directory
	// yields an empty slice, not an error.
	ListChildren(ctx context.Context, ownerID, parentHash string) ([]*Record, error)

	// UpdateName renames a record in place.
	//
	// The hash (and therefore the physical storage path of the record and
	// all of its descendants) is unchanged: rename is a pure label change.
	// Returns ErrNotFound if the record does not exist and ErrAlreadyExists
	// if the new name collides with a sibling.
	UpdateName(ctx context.Context, hash, newName string) error

	// CommitSize records the physical byte length of a file after a
	// successful content write, stamps EditedAt, and bumps the revision.
	//
	// This moves a provisional record (SizeBytes == 0) to its committed
	// state. Returns ErrNotFound if the record does not exist.
	CommitSize(ctx context.Context, hash string, sizeBytes int64, editedAt time.Time) error

	// TouchEdited bumps a record's EditedAt timestamp.
	//
	// Used to propagate child mutations to the containing directory.
	// Returns ErrNotFound if the record does not exist.
	TouchEdited(ctx context.Context, hash string, editedAt time.Time) error

	// Delete removes a record by hash.
	//
	// Deleting a hash that no longer exists succeeds: compensation paths
	// must be able to run unconditionally.
	Delete(ctx context.Context, hash string) error

	// SumSizesByAccount returns the aggregate of SizeBytes across every
	// record sharing the account identity.
	//
	// Quota usage aggregates at account level, not per owner or directory.
	// An account with no records yields zero.
	SumSizesByAccount(ctx context.Context, accountID string) (int64, error)

	// ListProvisional returns file records still in the provisional state
	// (size never committed) created before the cutoff, sorted oldest
	// first.
	//
	// A provisional record older than any reasonable create duration is an
	// interrupted creation whose compensation never ran; the sweeper
	// removes them.
	ListProvisional(ctx context.Context, olderThan time.Time) ([]*Record, error)

	// Healthcheck verifies the store is operational.
	Healthcheck(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

// ============================================================================
// ChannelDirectory Interface
// ============================================================================

// ChannelDirectory looks up owning channels by human-readable handle.
//
// The directory filters removed channels out of resolution: a removed
// channel's handle does not resolve, and writes against it are refused by
// the namespace core.
type ChannelDirectory interface {
	// FindByHandle resolves a live channel by its handle.
	//
	// Returns ErrNotFound when no live (non-removed) channel matches.
	FindByHandle(ctx context.Context, handle string) (*Channel, error)

	// GetByID retrieves a channel by ID, removed or not.
	//
	// Callers that must refuse removed channels check the Removed flag;
	// resolution uses FindByHandle instead.
	GetByID(ctx context.Context, id string) (*Channel, error)

	// ListLive returns every non-removed channel, sorted by handle.
	//
	// Used by the namespace root to list all owners.
	ListLive(ctx context.Context) ([]*Channel, error)

	// Put creates or replaces a channel.
	Put(ctx context.Context, channel *Channel) error
}

// Store combines record persistence with the channel directory.
//
// Every shipped backend (memory, gormstore, badgerstore) keeps both in one
// engine so the two stay transactionally close; factories hand the combined
// store out and callers narrow to the interface they need.
type Store interface {
	RecordStore
	ChannelDirectory
}
