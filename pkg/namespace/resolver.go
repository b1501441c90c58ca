package namespace

import (
	"context"
	"strings"

	"github.com/marmos91/attachfs/internal/logger"
	"github.com/marmos91/attachfs/pkg/attachment"
)

// ResolvedContext is the immutable result of resolving a logical path:
// the owning channel, the terminal folder hash, and the physical storage
// path accumulated along the way.
//
// It is computed once by the Resolver and carried by the directory node
// for the rest of the operation; it is never recomputed implicitly, so a
// node's view of the namespace cannot silently diverge mid-operation if
// the underlying records change.
type ResolvedContext struct {
	// Owner is the resolved owning channel, or nil for the root context
	// (the anonymous listing of all owners).
	Owner *attachment.Channel

	// FolderHash is the terminal folder's record hash, or
	// attachment.RootParentHash when the path resolves to the owner's
	// root (or the root context).
	FolderHash string

	// PhysicalPath is the slash-joined hash chain from the owner's root
	// to the terminal folder, exclusive of the owner root itself. Empty
	// at the owner's root.
	PhysicalPath string

	// LogicalPath is the resolved logical path relative to the owner's
	// root, one segment per successfully resolved directory.
	LogicalPath string
}

// IsRoot reports whether the context is the anonymous root (no owner).
func (rc *ResolvedContext) IsRoot() bool {
	return rc.Owner == nil
}

// ChildPhysicalPath returns the physical storage path of a direct child
// with the given hash.
func (rc *ResolvedContext) ChildPhysicalPath(hash string) string {
	if rc.PhysicalPath == "" {
		return hash
	}
	return rc.PhysicalPath + "/" + hash
}

// Resolver walks slash-separated logical paths against the record store,
// producing a ResolvedContext.
//
// Resolution is a pure read: it is idempotent and leaves no state behind
// other than the owner fields it populates on the Actor.
type Resolver struct {
	records  attachment.RecordStore
	channels attachment.ChannelDirectory
	log      *logger.Logger
}

// NewResolver creates a path resolver over the given stores.
func NewResolver(records attachment.RecordStore, channels attachment.ChannelDirectory, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		records:  records,
		channels: channels,
		log:      log.With("component", "resolver"),
	}
}

// Resolve walks a logical path already stripped of the mount prefix.
//
// An empty path (or "/") yields the root context. Otherwise the first
// segment is an owner handle, resolved against the channel directory
// (removed channels do not resolve); the remaining segments are resolved
// iteratively as directory-kind children, accumulating the physical hash
// chain.
//
// Trailing segments that do not resolve as directories stop the walk
// early: the deepest successfully resolved folder becomes the terminal
// context. A missing or non-directory tail is a file name for the caller
// to resolve separately, not a resolution error.
//
// As a side effect, the actor's owner fields are populated from the
// resolved channel.
func (r *Resolver) Resolve(ctx context.Context, actor *Actor, path string) (*ResolvedContext, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return &ResolvedContext{}, nil
	}

	handle := segments[0]
	owner, err := r.channels.FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	if actor != nil {
		actor.OwnerID = owner.ID
		actor.OwnerHandle = owner.Handle
	}

	resolved := &ResolvedContext{
		Owner:      owner,
		FolderHash: attachment.RootParentHash,
	}

	logical := make([]string, 0, len(segments)-1)
	for _, segment := range segments[1:] {
		record, err := r.records.LookupChild(ctx, owner.ID, resolved.FolderHash, segment, attachment.KindDirectory)
		if err != nil {
			if attachment.IsCode(err, attachment.ErrNotFound) {
				// Deepest-known-ancestor: the remaining segments are
				// left for the caller to interpret as file names
				r.log.Debug("path walk stopped early",
					"handle", handle,
					"segment", segment,
					"resolved", resolved.LogicalPath)
				break
			}
			return nil, err
		}

		resolved.FolderHash = record.Hash
		resolved.PhysicalPath = resolved.ChildPhysicalPath(record.Hash)
		logical = append(logical, record.Name)
		resolved.LogicalPath = strings.Join(logical, "/")
	}

	return resolved, nil
}

// splitPath breaks a slash-separated path into its non-empty segments.
func splitPath(path string) []string {
	segments := make([]string, 0, 8)
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
