// Package fs implements the byte store on the local filesystem.
//
// Hash-chain paths map directly onto directories under the base path: the
// content of "a1b2/c3d4/e5f6" lives in <base>/a1b2/c3d4/e5f6. Because every
// path segment is a generated hash, the layout stays shallow and collision
// free without any escaping.
package fs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/marmos91/attachfs/pkg/content"
)

// Store implements content.Store using the local filesystem.
//
// Thread safety: the underlying filesystem operations are safe at the OS
// level. Concurrent writes to the same path are last-write-wins.
type Store struct {
	basePath string
}

// New creates a filesystem-based byte store rooted at basePath, creating
// the directory if needed.
func New(ctx context.Context, basePath string) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if basePath == "" {
		return nil, fmt.Errorf("base path is required")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Store{basePath: basePath}, nil
}

// filePath maps a hash-chain path onto the filesystem, refusing anything
// that would escape the base directory.
func (s *Store) filePath(path string) (string, error) {
	if path == "" || strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("content %q: %w", path, content.ErrInvalidPath)
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("content %q: %w", path, content.ErrInvalidPath)
		}
	}
	return filepath.Join(s.basePath, filepath.FromSlash(path)), nil
}

// Write stores data at the given path, creating parent directories as
// needed. The write goes through a temporary file and rename so readers
// never observe partial content.
func (s *Store) Write(ctx context.Context, path string, data []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	target, err := s.filePath(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, fmt.Errorf("failed to create content directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".write-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	written, err := tmp.Write(data)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to finalize content: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to commit content: %w", err)
	}

	return int64(written), nil
}

// Read returns a reader for the content at the given path. The caller must
// close it.
func (s *Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, err := s.filePath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content %s: %w", path, content.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open content: %w", err)
	}
	return file, nil
}

// Size returns the byte length of the content at the given path.
func (s *Store) Size(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	target, err := s.filePath(path)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("content %s: %w", path, content.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to stat content: %w", err)
	}
	return info.Size(), nil
}

// Exists reports whether content is stored at the given path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	target, err := s.filePath(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat content: %w", err)
	}
	return true, nil
}

// Delete removes the content at the given path. Deleting a missing path
// succeeds.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.filePath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return nil
}

// Stats walks the base directory summing file sizes.
//
// The filesystem backend reports no fixed capacity of its own; callers
// that need a hard ceiling configure one at the quota layer instead.
func (s *Store) Stats(ctx context.Context) (*content.StorageStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var used, count int64
	err := filepath.WalkDir(s.basePath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		used += info.Size()
		count++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan content directory: %w", err)
	}

	return &content.StorageStats{
		TotalSize:     content.UnlimitedSize,
		UsedSize:      used,
		AvailableSize: content.UnlimitedSize,
		ObjectCount:   count,
	}, nil
}
