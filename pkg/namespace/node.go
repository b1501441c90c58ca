package namespace

import (
	"context"
	"io"
	"time"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// Node is a resolved entry in the namespace: a directory or a file.
type Node interface {
	// Name returns the human-readable segment name.
	Name() string

	// IsDir reports whether the node is a directory.
	IsDir() bool
}

// File is the file-node view over a committed attachment record.
//
// A file carries its parent directory's resolved context so its physical
// path can be derived without re-resolving.
type File struct {
	service  *Service
	actor    *Actor
	resolved *ResolvedContext
	record   *attachment.Record
}

// Name returns the file's segment name.
func (f *File) Name() string {
	return f.record.Name
}

// IsDir reports false for files.
func (f *File) IsDir() bool {
	return false
}

// Size returns the committed byte length.
func (f *File) Size() int64 {
	return f.record.SizeBytes
}

// MimeType returns the declared content type.
func (f *File) MimeType() string {
	return f.record.MimeType
}

// ModTime returns the last content change time.
func (f *File) ModTime() time.Time {
	return f.record.EditedAt
}

// ETag returns the content fingerprint (stable across renames, changed by
// every content commit).
func (f *File) ETag() string {
	return f.record.ETag()
}

// PhysicalPath returns the hash-chain storage path of the file's bytes.
func (f *File) PhysicalPath() string {
	return f.resolved.ChildPhysicalPath(f.record.Hash)
}

// Content returns a reader over the file's bytes. The caller must close
// it. Fails with ErrForbidden when the gate denies viewing.
func (f *File) Content(ctx context.Context) (io.ReadCloser, error) {
	if !f.service.gate.CanView(f.actor, f.resolved.Owner) {
		return nil, forbidden("not permitted to read this namespace", f.record.Name)
	}
	reader, err := f.service.store.Read(ctx, f.PhysicalPath())
	if err != nil {
		return nil, &attachment.StoreError{
			Code:    attachment.ErrIOError,
			Message: "failed to read file content",
			Path:    f.record.Name,
		}
	}
	return reader, nil
}

// SetName renames the file in place.
//
// Rename is restricted to the owner itself: delegated write capability is
// not sufficient. The hash, and therefore the physical path, is unchanged.
func (f *File) SetName(ctx context.Context, newName string) error {
	if f.actor == nil || f.resolved.Owner == nil || f.actor.ID != f.resolved.Owner.ID {
		return forbidden("only the owner may rename", f.record.Name)
	}
	if err := validateName(newName); err != nil {
		return err
	}
	if err := f.service.records.UpdateName(ctx, f.record.Hash, newName); err != nil {
		return err
	}
	f.record.Name = newName
	return nil
}

// forbidden builds the gate-denial error.
func forbidden(message, path string) error {
	return &attachment.StoreError{
		Code:    attachment.ErrForbidden,
		Message: message,
		Path:    path,
	}
}

// notFound builds the resolution-failure error.
func notFound(message, path string) error {
	return &attachment.StoreError{
		Code:    attachment.ErrNotFound,
		Message: message,
		Path:    path,
	}
}
