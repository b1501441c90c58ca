// Package badgerstore provides a persistent implementation of the
// attachment record store and channel directory on BadgerDB.
//
// BadgerDB is an embedded key-value store with WAL-based crash recovery,
// which makes this backend suitable for single-node deployments that need
// metadata to survive restarts without running a relational database. See
// keys.go for the key schema.
package badgerstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// Config contains configuration for creating a Badger-backed store.
type Config struct {
	// DBPath is the directory where BadgerDB will store its files
	DBPath string

	// BadgerOptions allows customization of BadgerDB behavior
	// If nil, sensible defaults for a metadata workload are used
	BadgerOptions *badger.Options
}

// Store implements attachment.RecordStore and attachment.ChannelDirectory
// on BadgerDB.
//
// Thread safety: multi-key mutations (record + child index + account index)
// are serialized by a single write mutex on top of Badger's transactions,
// keeping the secondary indexes consistent with the primary records without
// transaction retry handling.
type Store struct {
	mu sync.RWMutex
	db *badger.DB
}

// New opens (creating if necessary) a Badger-backed store at the configured
// path.
func New(ctx context.Context, config Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config.DBPath == "" {
		return nil, fmt.Errorf("badger store: db path is required")
	}

	var opts badger.Options
	if config.BadgerOptions != nil {
		opts = *config.BadgerOptions
	} else {
		opts = badger.DefaultOptions(config.DBPath)
		opts = opts.WithLoggingLevel(badger.WARNING)
		// Records are small; compression overhead is not worth it
		opts = opts.WithCompression(options.None)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Healthcheck verifies the database accepts reads.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

// ============================================================================
// Record operations
// ============================================================================

// Insert persists a new record and its index entries.
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

	return s.db.Update(func(txn *badger.Txn) error {
		ck := childKey(record.OwnerID, record.ParentHash, record.Name)
		if _, err := txn.Get(ck); err == nil {
			return &attachment.StoreError{
				Code:    attachment.ErrAlreadyExists,
				Message: "sibling with this name already exists",
				Path:    record.Name,
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		encoded, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := txn.Set(recordKey(record.Hash), encoded); err != nil {
			return err
		}
		if err := txn.Set(ck, []byte(record.Hash)); err != nil {
			return err
		}
		return txn.Set(accountKey(record.AccountID, record.Hash), encodeSize(record.SizeBytes))
	})
}

// GetByHash retrieves a record by its hash.
func (s *Store) GetByHash(ctx context.Context, hash string) (*attachment.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var record *attachment.Record
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		record, err = getRecord(txn, hash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// LookupChild resolves a name within a directory, scoped to an owner.
func (s *Store) LookupChild(ctx context.Context, ownerID, parentHash, name string, kind attachment.Kind) (*attachment.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var record *attachment.Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(childKey(ownerID, parentHash, name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &attachment.StoreError{
				Code:    attachment.ErrNotFound,
				Message: "no sibling with this name",
				Path:    name,
			}
		} else if err != nil {
			return err
		}

		hash, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		record, err = getRecord(txn, string(hash))
		return err
	})
	if err != nil {
		return nil, err
	}

	if kind != attachment.KindAny && record.Kind != kind {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "no sibling of the requested kind",
			Path:    name,
		}
	}
	return record, nil
}

// ListChildren returns every record under the given parent.
//
// The child index keys sort lexicographically by name, so a prefix scan
// already yields a stable name ordering.
func (s *Store) ListChildren(ctx context.Context, ownerID, parentHash string) ([]*attachment.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []*attachment.Record{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := childPrefix(ownerID, parentHash)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			hash, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			record, err := getRecord(txn, string(hash))
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
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

	return s.db.Update(func(txn *badger.Txn) error {
		record, err := getRecord(txn, hash)
		if err != nil {
			return err
		}
		if record.Name == newName {
			return nil
		}

		newKey := childKey(record.OwnerID, record.ParentHash, newName)
		if _, err := txn.Get(newKey); err == nil {
			return &attachment.StoreError{
				Code:    attachment.ErrAlreadyExists,
				Message: "sibling with this name already exists",
				Path:    newName,
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Delete(childKey(record.OwnerID, record.ParentHash, record.Name)); err != nil {
			return err
		}
		if err := txn.Set(newKey, []byte(hash)); err != nil {
			return err
		}

		record.Name = newName
		return putRecord(txn, record)
	})
}

// CommitSize records a file's physical byte length and bumps its revision.
func (s *Store) CommitSize(ctx context.Context, hash string, sizeBytes int64, editedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		record, err := getRecord(txn, hash)
		if err != nil {
			return err
		}

		record.SizeBytes = sizeBytes
		record.EditedAt = editedAt
		record.Revision++
		if err := putRecord(txn, record); err != nil {
			return err
		}
		return txn.Set(accountKey(record.AccountID, hash), encodeSize(sizeBytes))
	})
}

// TouchEdited bumps a record's EditedAt timestamp.
func (s *Store) TouchEdited(ctx context.Context, hash string, editedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		record, err := getRecord(txn, hash)
		if err != nil {
			return err
		}
		record.EditedAt = editedAt
		return putRecord(txn, record)
	})
}

// Delete removes a record and its index entries. Deleting a missing hash
// succeeds.
func (s *Store) Delete(ctx context.Context, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		record, err := getRecord(txn, hash)
		if err != nil {
			if attachment.IsCode(err, attachment.ErrNotFound) {
				return nil
			}
			return err
		}

		if err := txn.Delete(childKey(record.OwnerID, record.ParentHash, record.Name)); err != nil {
			return err
		}
		if err := txn.Delete(accountKey(record.AccountID, hash)); err != nil {
			return err
		}
		return txn.Delete(recordKey(hash))
	})
}

// SumSizesByAccount aggregates sizes via a prefix scan over the account
// index, bounded to the account's own records.
func (s *Store) SumSizesByAccount(ctx context.Context, accountID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := accountPrefix(accountID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			total += decodeSize(value)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListProvisional returns provisional file records created before the
// cutoff, oldest first. This scans the whole record space; the sweeper
// runs it on a slow cadence.
func (s *Store) ListProvisional(ctx context.Context, olderThan time.Time) ([]*attachment.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*attachment.Record, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixRecord)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var record attachment.Record
			if err := json.Unmarshal(value, &record); err != nil {
				return err
			}
			if record.IsProvisional() && record.CreatedAt.Before(olderThan) {
				result = append(result, &record)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ============================================================================
// Channel operations
// ============================================================================

// FindByHandle resolves a live channel by its handle.
func (s *Store) FindByHandle(ctx context.Context, handle string) (*attachment.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var channel *attachment.Channel
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(handleKey(handle))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &attachment.StoreError{
				Code:    attachment.ErrNotFound,
				Message: "channel not found",
				Path:    handle,
			}
		} else if err != nil {
			return err
		}

		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		channel, err = getChannel(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}

	if channel.Removed {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "channel not found",
			Path:    handle,
		}
	}
	return channel, nil
}

// GetByID retrieves a channel by ID, removed or not.
func (s *Store) GetByID(ctx context.Context, id string) (*attachment.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var channel *attachment.Channel
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		channel, err = getChannel(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return channel, nil
}

// ListLive returns every non-removed channel, sorted by handle.
//
// The handle index keys sort lexicographically, so the scan order is the
// result order.
func (s *Store) ListLive(ctx context.Context) ([]*attachment.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	channels := []*attachment.Channel{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixHandle)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			channel, err := getChannel(txn, string(id))
			if err != nil {
				return err
			}
			if channel.Removed {
				continue
			}
			channels = append(channels, channel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return channels, nil
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

	return s.db.Update(func(txn *badger.Txn) error {
		if previous, err := getChannel(txn, channel.ID); err == nil && previous.Handle != channel.Handle {
			if err := txn.Delete(handleKey(previous.Handle)); err != nil {
				return err
			}
		}

		encoded, err := json.Marshal(channel)
		if err != nil {
			return err
		}
		if err := txn.Set(channelKey(channel.ID), encoded); err != nil {
			return err
		}
		return txn.Set(handleKey(channel.Handle), []byte(channel.ID))
	})
}

// ============================================================================
// Helpers
// ============================================================================

func getRecord(txn *badger.Txn, hash string) (*attachment.Record, error) {
	item, err := txn.Get(recordKey(hash))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "record not found",
			Path:    hash,
		}
	} else if err != nil {
		return nil, err
	}

	var record attachment.Record
	err = item.Value(func(value []byte) error {
		return json.Unmarshal(value, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func putRecord(txn *badger.Txn, record *attachment.Record) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return txn.Set(recordKey(record.Hash), encoded)
}

func getChannel(txn *badger.Txn, id string) (*attachment.Channel, error) {
	item, err := txn.Get(channelKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrNotFound,
			Message: "channel not found",
			Path:    id,
		}
	} else if err != nil {
		return nil, err
	}

	var channel attachment.Channel
	err = item.Value(func(value []byte) error {
		return json.Unmarshal(value, &channel)
	})
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func encodeSize(size int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(size))
	return buf
}

func decodeSize(value []byte) int64 {
	if len(value) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(value))
}
