package namespace

import (
	"context"
	"time"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// Directory is the public-facing collection abstraction composing the
// resolver, gate, accountant, and record store.
//
// A directory carries the immutable ResolvedContext produced at
// construction. Three shapes exist:
//   - the server root (serverRoot true): its only child is the mount
//     segment, yielding a fresh root context
//   - the root context (resolved.Owner nil): children are the live
//     channels' roots
//   - an owner directory: children are the records under FolderHash
type Directory struct {
	service  *Service
	actor    *Actor
	resolved *ResolvedContext

	// record is this directory's own record, nil at the owner root and
	// in root contexts. Populated when the directory was reached through
	// Child or CreateDirectory.
	record *attachment.Record

	serverRoot bool
}

// Name returns the directory's segment name: its record name, the owner
// handle at an owner root, or the mount segment at the namespace root.
func (d *Directory) Name() string {
	switch {
	case d.record != nil:
		return d.record.Name
	case d.serverRoot:
		return "/"
	case d.resolved.IsRoot():
		return d.service.mountSegment()
	default:
		return d.resolved.Owner.Handle
	}
}

// IsDir reports true for directories.
func (d *Directory) IsDir() bool {
	return true
}

// Resolved exposes the directory's resolved storage context.
func (d *Directory) Resolved() *ResolvedContext {
	return d.resolved
}

// ListChildren returns every child of this directory as nodes, sorted by
// name. Fails with ErrForbidden when the gate denies viewing.
//
// In the root context the children are the live channels, presented as
// directories.
func (d *Directory) ListChildren(ctx context.Context) (nodes []Node, err error) {
	start := time.Now()
	defer func() { d.service.metrics.RecordOperation("ListChildren", time.Since(start), err) }()

	if d.serverRoot {
		root := &Directory{service: d.service, actor: d.actor, resolved: &ResolvedContext{}}
		return []Node{root}, nil
	}
	if !d.service.gate.CanView(d.actor, d.resolved.Owner) {
		return nil, forbidden("not permitted to view this namespace", d.Name())
	}

	if d.resolved.IsRoot() {
		channels, err := d.service.channels.ListLive(ctx)
		if err != nil {
			return nil, err
		}
		nodes = make([]Node, 0, len(channels))
		for _, channel := range channels {
			nodes = append(nodes, &Directory{
				service:  d.service,
				actor:    d.actor,
				resolved: &ResolvedContext{Owner: channel},
			})
		}
		return nodes, nil
	}

	records, err := d.service.records.ListChildren(ctx, d.resolved.Owner.ID, d.resolved.FolderHash)
	if err != nil {
		return nil, err
	}

	nodes = make([]Node, 0, len(records))
	for _, record := range records {
		nodes = append(nodes, d.nodeFor(record))
	}
	return nodes, nil
}

// Child resolves a single name within this directory.
//
// At the server root the only legal child is the mount-point segment,
// which yields a fresh root context. In the root context the name is an
// owner handle. Fails with ErrForbidden before ErrNotFound when the gate
// denies.
func (d *Directory) Child(ctx context.Context, name string) (node Node, err error) {
	start := time.Now()
	defer func() { d.service.metrics.RecordOperation("Child", time.Since(start), err) }()

	if d.serverRoot {
		if name != d.service.mountSegment() {
			return nil, notFound("no such entry", name)
		}
		return &Directory{service: d.service, actor: d.actor, resolved: &ResolvedContext{}}, nil
	}

	if !d.service.gate.CanView(d.actor, d.resolved.Owner) {
		return nil, forbidden("not permitted to view this namespace", name)
	}

	if d.resolved.IsRoot() {
		channel, err := d.service.channels.FindByHandle(ctx, name)
		if err != nil {
			return nil, err
		}
		if d.actor != nil {
			d.actor.OwnerID = channel.ID
			d.actor.OwnerHandle = channel.Handle
		}
		return &Directory{
			service:  d.service,
			actor:    d.actor,
			resolved: &ResolvedContext{Owner: channel},
		}, nil
	}

	record, err := d.service.records.LookupChild(ctx, d.resolved.Owner.ID, d.resolved.FolderHash, name, attachment.KindAny)
	if err != nil {
		return nil, err
	}
	return d.nodeFor(record), nil
}

// ChildExists reports whether a child resolves, without the error-based
// control flow of Child. The gate still applies.
func (d *Directory) ChildExists(ctx context.Context, name string) (bool, error) {
	_, err := d.Child(ctx, name)
	if err != nil {
		if attachment.IsCode(err, attachment.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// LastModified returns the directory's modification time: the maximum
// EditedAt across children, falling back to the directory's own record
// when it has none.
//
// The second return is false when no timestamp is known (a root context
// with no record), never a zero epoch.
func (d *Directory) LastModified(ctx context.Context) (time.Time, bool, error) {
	if d.serverRoot || d.resolved.IsRoot() {
		return time.Time{}, false, nil
	}

	records, err := d.service.records.ListChildren(ctx, d.resolved.Owner.ID, d.resolved.FolderHash)
	if err != nil {
		return time.Time{}, false, err
	}

	var latest time.Time
	for _, record := range records {
		if record.EditedAt.After(latest) {
			latest = record.EditedAt
		}
	}
	if !latest.IsZero() {
		return latest, true, nil
	}

	own, err := d.ownRecord(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	if own != nil && !own.EditedAt.IsZero() {
		return own.EditedAt, true, nil
	}
	return time.Time{}, false, nil
}

// QuotaInfo returns (used, free) for the resolved owner's account, or
// whole-backing-store totals in the root context.
func (d *Directory) QuotaInfo(ctx context.Context) (*QuotaInfo, error) {
	if d.serverRoot || d.resolved.IsRoot() {
		return d.service.accountant.StoreInfo(ctx)
	}
	return d.service.accountant.Info(ctx, d.resolved.Owner)
}

// SetName renames the directory in place.
//
// Rename is restricted to the owner itself: delegated write capability is
// not sufficient. The hash, and with it the physical path of the
// directory and every descendant, is unchanged: rename is a pure label
// change, never a data move.
func (d *Directory) SetName(ctx context.Context, newName string) (err error) {
	start := time.Now()
	defer func() { d.service.metrics.RecordOperation("SetName", time.Since(start), err) }()

	if d.record == nil {
		return forbidden("cannot rename a namespace root", d.Name())
	}
	if d.actor == nil || d.resolved.Owner == nil || d.actor.ID != d.resolved.Owner.ID {
		return forbidden("only the owner may rename", d.record.Name)
	}
	if err := validateName(newName); err != nil {
		return err
	}

	if err := d.service.records.UpdateName(ctx, d.record.Hash, newName); err != nil {
		return err
	}
	d.record.Name = newName
	return nil
}

// nodeFor wraps a child record in the matching node type. Child
// directories receive a context extended by their own hash.
func (d *Directory) nodeFor(record *attachment.Record) Node {
	if record.IsDirectory() {
		logical := record.Name
		if d.resolved.LogicalPath != "" {
			logical = d.resolved.LogicalPath + "/" + record.Name
		}
		return &Directory{
			service: d.service,
			actor:   d.actor,
			resolved: &ResolvedContext{
				Owner:        d.resolved.Owner,
				FolderHash:   record.Hash,
				PhysicalPath: d.resolved.ChildPhysicalPath(record.Hash),
				LogicalPath:  logical,
			},
			record: record,
		}
	}
	return &File{
		service:  d.service,
		actor:    d.actor,
		resolved: d.resolved,
		record:   record,
	}
}

// ownRecord fetches this directory's own record, caching it on the node.
func (d *Directory) ownRecord(ctx context.Context) (*attachment.Record, error) {
	if d.record != nil {
		return d.record, nil
	}
	if d.resolved.FolderHash == attachment.RootParentHash {
		return nil, nil
	}
	record, err := d.service.records.GetByHash(ctx, d.resolved.FolderHash)
	if err != nil {
		return nil, err
	}
	d.record = record
	return record, nil
}
