package namespace

import (
	"context"
	"strings"
	"time"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// validateName rejects names the namespace cannot address: empty names,
// names containing a path separator (a single record must occupy a single
// path segment), and names containing a NUL byte (the record stores key
// on names with delimiter-based schemas).
func validateName(name string) error {
	var reason string
	switch {
	case name == "":
		reason = "name must not be empty"
	case strings.ContainsRune(name, '/'):
		reason = "name must not contain a path separator"
	case strings.ContainsRune(name, 0):
		reason = "name must not contain a NUL byte"
	default:
		return nil
	}
	return &attachment.StoreError{
		Code:    attachment.ErrInvalidArgument,
		Message: reason,
		Path:    name,
	}
}

// CreateDirectory creates a named child directory and returns its node.
//
// Fails with ErrForbidden when the gate denies writing, ErrChannelRemoved
// when the owning channel has been removed, ErrInvalidArgument when the
// name is empty or unaddressable, and ErrAlreadyExists when the name is
// taken.
func (d *Directory) CreateDirectory(ctx context.Context, name string) (child *Directory, err error) {
	start := time.Now()
	defer func() { d.service.metrics.RecordOperation("CreateDirectory", time.Since(start), err) }()

	if err := d.checkWritable(ctx); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &attachment.Record{
		Hash:       attachment.NewHash(),
		OwnerID:    d.resolved.Owner.ID,
		AccountID:  d.resolved.Owner.AccountID,
		ParentHash: d.resolved.FolderHash,
		Name:       name,
		Kind:       attachment.KindDirectory,
		CreatorID:  d.creatorID(),
		CreatedAt:  now,
		EditedAt:   now,
	}
	if err := d.service.records.Insert(ctx, record); err != nil {
		return nil, err
	}
	d.touchParent(ctx)

	node := d.nodeFor(record).(*Directory)
	return node, nil
}

// CreateFile stores data under a new name in this directory and returns
// the resulting file node.
//
// The write proceeds through distinct stages: the record is inserted
// first, the bytes are written to content storage under the record's
// physical path, the written size is verified, and finally the record's
// size is committed. A failure at any stage after insertion compensates
// by deleting both the record and any written bytes, so a failed create
// never leaks partial state into either store.
//
// Size and quota limits are enforced after the bytes land: an oversize or
// over-quota write is fully rolled back and reported as ErrTooLarge or
// ErrQuotaExceeded.
func (d *Directory) CreateFile(ctx context.Context, name string, data []byte, mimeType string) (file *File, err error) {
	start := time.Now()
	defer func() { d.service.metrics.RecordOperation("CreateFile", time.Since(start), err) }()

	if err := d.checkWritable(ctx); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &attachment.Record{
		Hash:       attachment.NewHash(),
		OwnerID:    d.resolved.Owner.ID,
		AccountID:  d.resolved.Owner.AccountID,
		ParentHash: d.resolved.FolderHash,
		Name:       name,
		Kind:       attachment.KindFile,
		MimeType:   mimeType,
		CreatorID:  d.creatorID(),
		CreatedAt:  now,
	}
	if err := d.service.records.Insert(ctx, record); err != nil {
		return nil, err
	}

	physicalPath := d.resolved.ChildPhysicalPath(record.Hash)

	written, err := d.service.store.Write(ctx, physicalPath, data)
	if err != nil {
		d.rollback(ctx, record.Hash, physicalPath)
		return nil, &attachment.StoreError{
			Code:    attachment.ErrWriteFailed,
			Message: "content write failed: " + err.Error(),
			Path:    name,
		}
	}
	if written != int64(len(data)) {
		d.rollback(ctx, record.Hash, physicalPath)
		return nil, &attachment.StoreError{
			Code:    attachment.ErrWriteFailed,
			Message: "short write to content storage",
			Path:    name,
		}
	}

	if err := d.service.records.CommitSize(ctx, record.Hash, written, now); err != nil {
		d.rollback(ctx, record.Hash, physicalPath)
		return nil, err
	}
	record.SizeBytes = written
	record.EditedAt = now

	if max := d.service.config.MaxFileSize; max > 0 && written > max {
		d.rollback(ctx, record.Hash, physicalPath)
		d.service.metrics.RecordRejection("too_large")
		return nil, &attachment.StoreError{
			Code:    attachment.ErrTooLarge,
			Message: "file exceeds the maximum allowed size",
			Path:    name,
		}
	}

	limit, err := d.service.accountant.Limit(ctx, d.resolved.Owner)
	if err != nil {
		d.rollback(ctx, record.Hash, physicalPath)
		return nil, err
	}
	if limit != Unbounded {
		used, err := d.service.accountant.Usage(ctx, d.resolved.Owner.AccountID)
		if err != nil {
			d.rollback(ctx, record.Hash, physicalPath)
			return nil, err
		}
		if used > limit {
			d.rollback(ctx, record.Hash, physicalPath)
			d.service.metrics.RecordRejection("quota_exceeded")
			return nil, &attachment.StoreError{
				Code:    attachment.ErrQuotaExceeded,
				Message: "account storage quota exceeded",
				Path:    name,
			}
		}
	}

	d.touchParent(ctx)
	d.service.metrics.RecordBytesWritten(written)

	return &File{
		service:  d.service,
		actor:    d.actor,
		resolved: d.resolved,
		record:   record,
	}, nil
}

// checkWritable gates a mutation on this directory: the gate must permit
// writing and the owning channel must still be live.
func (d *Directory) checkWritable(ctx context.Context) error {
	if d.serverRoot || d.resolved.IsRoot() {
		return forbidden("cannot create entries outside a channel namespace", d.Name())
	}
	if !d.service.gate.CanWrite(d.actor, d.resolved.Owner) {
		return forbidden("not permitted to write to this namespace", d.Name())
	}

	channel, err := d.service.channels.GetByID(ctx, d.resolved.Owner.ID)
	if err != nil {
		return err
	}
	if channel.Removed {
		return &attachment.StoreError{
			Code:    attachment.ErrChannelRemoved,
			Message: "channel has been removed",
			Path:    channel.Handle,
		}
	}
	return nil
}

// rollback compensates a failed create by removing the record and any
// bytes written under its physical path. Both deletions run
// unconditionally; failures are logged rather than surfaced, since the
// original error is the one that matters.
func (d *Directory) rollback(ctx context.Context, hash, physicalPath string) {
	if err := d.service.records.Delete(ctx, hash); err != nil {
		d.service.log.Error("rollback failed to delete record", "hash", hash, "error", err)
	}
	if err := d.service.store.Delete(ctx, physicalPath); err != nil {
		d.service.log.Error("rollback failed to delete content", "path", physicalPath, "error", err)
	}
}

// touchParent refreshes the parent directory's EditedAt after a
// successful create. The owner root has no record to touch. Failures are
// logged only, the create already succeeded.
func (d *Directory) touchParent(ctx context.Context) {
	if d.resolved.FolderHash == attachment.RootParentHash {
		return
	}
	if err := d.service.records.TouchEdited(ctx, d.resolved.FolderHash, time.Now().UTC()); err != nil {
		d.service.log.Warn("failed to touch parent directory", "hash", d.resolved.FolderHash, "error", err)
	}
}

// creatorID returns the acting user's id, empty for anonymous actors.
func (d *Directory) creatorID() string {
	if d.actor == nil {
		return ""
	}
	return d.actor.ID
}
