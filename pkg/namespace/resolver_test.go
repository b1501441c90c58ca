package namespace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/attachfs/pkg/attachment"
	"github.com/marmos91/attachfs/pkg/namespace"
)

func TestResolveEmptyPathYieldsRootContext(t *testing.T) {
	f := newFixture(t, namespace.Config{})

	for _, path := range []string{"", "/", "/attach", "/attach/"} {
		dir, err := f.service.Resolve(t.Context(), nil, path)
		require.NoError(t, err, "path %q", path)
		require.True(t, dir.Resolved().IsRoot(), "path %q", path)
	}
}

func TestResolveUnknownHandle(t *testing.T) {
	f := newFixture(t, namespace.Config{})

	_, err := f.service.Resolve(t.Context(), nil, "/attach/nobody")
	require.True(t, attachment.IsCode(err, attachment.ErrNotFound))
}

func TestResolveRemovedChannelDoesNotResolve(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	ghost := f.seedChannel(t, "ghost-id", "ghost")
	ghost.Removed = true
	require.NoError(t, f.records.Put(t.Context(), ghost))

	_, err := f.service.Resolve(t.Context(), nil, "/attach/ghost")
	require.True(t, attachment.IsCode(err, attachment.ErrNotFound))
}

// Trailing segments that do not resolve as directories stop the walk at
// the deepest known ancestor instead of failing: the tail is a file name
// for the caller to resolve separately.
func TestResolveStopsAtDeepestKnownAncestor(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	docs, err := root.CreateDirectory(t.Context(), "docs")
	require.NoError(t, err)
	_, err = docs.CreateFile(t.Context(), "note.txt", []byte("hi"), "text/plain")
	require.NoError(t, err)

	// The file name is not a directory: resolution terminates at docs.
	dir, err := f.service.Resolve(t.Context(), actor, "/attach/alice/docs/note.txt")
	require.NoError(t, err)
	require.Equal(t, docs.Resolved().FolderHash, dir.Resolved().FolderHash)
	require.Equal(t, "docs", dir.Resolved().LogicalPath)

	// Entirely missing tails behave the same way.
	dir, err = f.service.Resolve(t.Context(), actor, "/attach/alice/docs/missing/deeper")
	require.NoError(t, err)
	require.Equal(t, docs.Resolved().FolderHash, dir.Resolved().FolderHash)

	// A fully unknown path below the root resolves to the owner root.
	dir, err = f.service.Resolve(t.Context(), actor, "/attach/alice/nothing")
	require.NoError(t, err)
	require.Equal(t, attachment.RootParentHash, dir.Resolved().FolderHash)
	require.Empty(t, dir.Resolved().PhysicalPath)
}

func TestResolveAccumulatesNestedContext(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	a, err := root.CreateDirectory(t.Context(), "a")
	require.NoError(t, err)
	b, err := a.CreateDirectory(t.Context(), "b")
	require.NoError(t, err)

	dir, err := f.service.Resolve(t.Context(), actor, "/attach/alice/a/b")
	require.NoError(t, err)
	require.Equal(t, b.Resolved().FolderHash, dir.Resolved().FolderHash)
	require.Equal(t, "a/b", dir.Resolved().LogicalPath)
	require.Equal(t,
		a.Resolved().FolderHash+"/"+b.Resolved().FolderHash,
		dir.Resolved().PhysicalPath)
}

// A file sharing its name with the requested directory segment must not
// satisfy the walk: only directory records continue resolution.
func TestResolveIgnoresFilesDuringWalk(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	_, err = root.CreateFile(t.Context(), "docs", []byte("not a folder"), "text/plain")
	require.NoError(t, err)

	dir, err := f.service.Resolve(t.Context(), actor, "/attach/alice/docs")
	require.NoError(t, err)
	require.Equal(t, attachment.RootParentHash, dir.Resolved().FolderHash)
}
