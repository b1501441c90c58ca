// Package memory provides in-memory implementations of the attachment
// record store and channel directory.
//
// The memory backend is suitable for tests and ephemeral deployments where
// persistence is not required. All operations are protected by a single
// read-write mutex, making the store safe for concurrent use. This
// coarse-grained locking is simple and correct; the persistent backends
// rely on their storage engines instead.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// siblingKey scopes a directory's children index by owner and parent hash.
type siblingKey struct {
	ownerID    string
	parentHash string
}

// Store implements attachment.RecordStore and attachment.ChannelDirectory
// using in-memory maps.
//
// Storage model:
//   - records: hash → record (primary storage)
//   - children: (owner, parent hash) → name → hash (sibling index, keeps
//     name-uniqueness checks and listings O(1)/O(n log n))
//   - channels: channel ID → channel
//   - handles: channel handle → channel ID
//
// The sibling index and the record map are kept bidirectionally consistent
// by every mutation.
type Store struct {
	mu sync.RWMutex

	records  map[string]*attachment.Record
	children map[siblingKey]map[string]string
	channels map[string]*attachment.Channel
	handles  map[string]string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		records:  make(map[string]*attachment.Record),
		children: make(map[siblingKey]map[string]string),
		channels: make(map[string]*attachment.Channel),
		handles:  make(map[string]string),
	}
}

// ============================================================================
// RecordStore
// ============================================================================

// Insert persists a new record, enforcing sibling-name uniqueness.
func (s *Store) Insert(ctx context.Context, record *attachment.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.Hash == "" || record.Name == "" {
		return &attachment.StoreError{
			Code:    attachment.ErrInvalidArgument,
			Message: "record hash and name are required",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.Hash]; exists {
		return &attachment.StoreError{
			Code:    attachment.ErrAlreadyExists,
			Message: "record hash already in use",
			Path:    record.Hash,
		}
	}

	key := siblingKey{ownerID: record.OwnerID, parentHash: record.ParentHash}
	siblings, ok := s.children[key]
	if !ok {
		siblings = make(map[string]string)
		s.children[key] = siblings
	}
	if _, taken := siblings[record.Name]; taken {
		return &attachment.StoreError{
			Code:    attachment.ErrAlreadyExists,
			Message: "sibling with this name already exists",
			Path:    record.Name,
		}
	}

	stored := *record
	s.records[record.Hash] = &stored
	siblings[record.Name] = record.Hash
	return nil
}

// GetByHash retrieves a record by its hash.
func (s *Store) GetByHash(ctx context.Context, hash string) (*attachment.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[hash]
	if !exists {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "record not found",
			Path:    hash,
		}
	}

	out := *record
	return &out, nil
}

// LookupChild resolves a name within a directory, scoped to an owner.
func (s *Store) LookupChild(ctx context.Context, ownerID, parentHash, name string, kind attachment.Kind) (*attachment.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := siblingKey{ownerID: ownerID, parentHash: parentHash}
	hash, ok := s.children[key][name]
	if !ok {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "no sibling with this name",
			Path:    name,
		}
	}

	record := s.records[hash]
	if kind != attachment.KindAny && record.Kind != kind {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "no sibling of the requested kind",
			Path:    name,
		}
	}

	out := *record
	return &out, nil
}

// ListChildren returns every record under the given parent, sorted by name.
func (s *Store) ListChildren(ctx context.Context, ownerID, parentHash string) ([]*attachment.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := siblingKey{ownerID: ownerID, parentHash: parentHash}
	siblings := s.children[key]

	result := make([]*attachment.Record, 0, len(siblings))
	for _, hash := range siblings {
		out := *s.records[hash]
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// UpdateName renames a record in place; the hash is unchanged.
func (s *Store) UpdateName(ctx context.Context, hash, newName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if newName == "" {
		return &attachment.StoreError{
			Code:    attachment.ErrInvalidArgument,
			Message: "new name must not be empty",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[hash]
	if !exists {
		return &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "record not found",
			Path:    hash,
		}
	}
	if record.Name == newName {
		return nil
	}

	key := siblingKey{ownerID: record.OwnerID, parentHash: record.ParentHash}
	siblings := s.children[key]
	if _, taken := siblings[newName]; taken {
		return &attachment.StoreError{
			Code:    attachment.ErrAlreadyExists,
			Message: "sibling with this name already exists",
			Path:    newName,
		}
	}

	delete(siblings, record.Name)
	siblings[newName] = hash
	record.Name = newName
	return nil
}

// CommitSize records a file's physical byte length and bumps its revision.
func (s *Store) CommitSize(ctx context.Context, hash string, sizeBytes int64, editedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[hash]
	if !exists {
		return &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "record not found",
			Path:    hash,
		}
	}

	record.SizeBytes = sizeBytes
	record.EditedAt = editedAt
	record.Revision++
	return nil
}

// TouchEdited bumps a record's EditedAt timestamp.
func (s *Store) TouchEdited(ctx context.Context, hash string, editedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[hash]
	if !exists {
		return &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "record not found",
			Path:    hash,
		}
	}

	record.EditedAt = editedAt
	return nil
}

// Delete removes a record by hash. Deleting a missing hash succeeds.
func (s *Store) Delete(ctx context.Context, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[hash]
	if !exists {
		return nil
	}

	key := siblingKey{ownerID: record.OwnerID, parentHash: record.ParentHash}
	if siblings, ok := s.children[key]; ok {
		delete(siblings, record.Name)
		if len(siblings) == 0 {
			delete(s.children, key)
		}
	}
	delete(s.records, hash)
	return nil
}

// SumSizesByAccount aggregates SizeBytes across the account's records.
func (s *Store) SumSizesByAccount(ctx context.Context, accountID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, record := range s.records {
		if record.AccountID == accountID {
			total += record.SizeBytes
		}
	}
	return total, nil
}

// ListProvisional returns provisional file records created before the
// cutoff, oldest first.
func (s *Store) ListProvisional(ctx context.Context, olderThan time.Time) ([]*attachment.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*attachment.Record, 0)
	for _, record := range s.records {
		if record.IsProvisional() && record.CreatedAt.Before(olderThan) {
			out := *record
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Healthcheck always succeeds: there are no external dependencies.
func (s *Store) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the memory backend.
func (s *Store) Close() error {
	return nil
}

// ============================================================================
// ChannelDirectory
// ============================================================================

// FindByHandle resolves a live channel by its handle.
func (s *Store) FindByHandle(ctx context.Context, handle string) (*attachment.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.handles[handle]
	if !ok {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "channel not found",
			Path:    handle,
		}
	}
	channel := s.channels[id]
	if channel.Removed {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "channel not found",
			Path:    handle,
		}
	}

	out := *channel
	return &out, nil
}

// GetByID retrieves a channel by ID, removed or not.
func (s *Store) GetByID(ctx context.Context, id string) (*attachment.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	channel, exists := s.channels[id]
	if !exists {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "channel not found",
			Path:    id,
		}
	}

	out := *channel
	return &out, nil
}

// ListLive returns every non-removed channel, sorted by handle.
func (s *Store) ListLive(ctx context.Context) ([]*attachment.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*attachment.Channel, 0, len(s.channels))
	for _, channel := range s.channels {
		if channel.Removed {
			continue
		}
		out := *channel
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Handle < result[j].Handle
	})
	return result, nil
}

// Put creates or replaces a channel.
func (s *Store) Put(ctx context.Context, channel *attachment.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if channel.ID == "" || channel.Handle == "" {
		return &attachment.StoreError{
			Code:    attachment.ErrInvalidArgument,
			Message: "channel id and handle are required",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, exists := s.channels[channel.ID]; exists && previous.Handle != channel.Handle {
		delete(s.handles, previous.Handle)
	}

	stored := *channel
	s.channels[channel.ID] = &stored
	s.handles[channel.Handle] = channel.ID
	return nil
}
