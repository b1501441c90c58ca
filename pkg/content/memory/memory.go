// Package memory implements the byte store in process memory.
//
// Intended for tests and ephemeral deployments; nothing survives a restart.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/marmos91/attachfs/pkg/content"
)

// Store implements content.Store backed by an in-memory map.
//
// Thread safety: a single RWMutex guards the map. Reads return copies, so
// a returned reader stays valid across later writes.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates an empty in-memory byte store.
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

// Write stores a copy of data at the given path.
func (s *Store) Write(ctx context.Context, path string, data []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if path == "" {
		return 0, fmt.Errorf("content %q: %w", path, content.ErrInvalidPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[path] = stored
	return int64(len(stored)), nil
}

// Read returns a reader over a copy of the content at the given path.
func (s *Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.objects[path]
	if !exists {
		return nil, fmt.Errorf("content %s: %w", path, content.ErrNotFound)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return io.NopCloser(bytes.NewReader(out)), nil
}

// Size returns the byte length of the content at the given path.
func (s *Store) Size(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.objects[path]
	if !exists {
		return 0, fmt.Errorf("content %s: %w", path, content.ErrNotFound)
	}
	return int64(len(data)), nil
}

// Exists reports whether content is stored at the given path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.objects[path]
	return exists, nil
}

// Delete removes the content at the given path. Deleting a missing path
// succeeds.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, path)
	return nil
}

// Stats reports current usage. Memory has no fixed capacity.
func (s *Store) Stats(ctx context.Context) (*content.StorageStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var used int64
	for _, data := range s.objects {
		used += int64(len(data))
	}

	return &content.StorageStats{
		TotalSize:     content.UnlimitedSize,
		UsedSize:      used,
		AvailableSize: content.UnlimitedSize,
		ObjectCount:   int64(len(s.objects)),
	}, nil
}
