package namespace_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/attachfs/pkg/attachment"
	"github.com/marmos91/attachfs/pkg/namespace"
)

func TestServerRootExposesOnlyTheMountSegment(t *testing.T) {
	f := newFixture(t, namespace.Config{MountPoint: "/attach"})
	root := f.service.Root(nil)

	children, err := root.ListChildren(t.Context())
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, "attach", children[0].Name())
	require.True(t, children[0].IsDir())

	mount, err := root.Child(t.Context(), "attach")
	require.NoError(t, err)
	require.True(t, mount.(*namespace.Directory).Resolved().IsRoot())

	_, err = root.Child(t.Context(), "etc")
	require.True(t, attachment.IsCode(err, attachment.ErrNotFound))
}

func TestRootContextListsLiveOwners(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	f.seedChannel(t, "bob-id", "bob")
	f.seedChannel(t, "alice-id", "alice")
	gone := f.seedChannel(t, "gone-id", "gone")
	gone.Removed = true
	require.NoError(t, f.records.Put(t.Context(), gone))

	dir, err := f.service.Resolve(t.Context(), nil, "/attach")
	require.NoError(t, err)

	children, err := dir.ListChildren(t.Context())
	require.NoError(t, err)
	require.Len(t, children, 2)
	require.Equal(t, "alice", children[0].Name())
	require.Equal(t, "bob", children[1].Name())
	require.True(t, children[0].IsDir())

	aliceDir, err := dir.Child(t.Context(), "alice")
	require.NoError(t, err)
	require.Equal(t, "alice-id", aliceDir.(*namespace.Directory).Resolved().Owner.ID)

	_, err = dir.Child(t.Context(), "gone")
	require.True(t, attachment.IsCode(err, attachment.ErrNotFound))
}

func TestListChildrenSortsAndMixesKinds(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	_, err = root.CreateFile(t.Context(), "zulu.txt", []byte("z"), "text/plain")
	require.NoError(t, err)
	_, err = root.CreateDirectory(t.Context(), "docs")
	require.NoError(t, err)
	_, err = root.CreateFile(t.Context(), "alpha.txt", []byte("a"), "text/plain")
	require.NoError(t, err)

	children, err := root.ListChildren(t.Context())
	require.NoError(t, err)
	require.Len(t, children, 3)
	require.Equal(t, "alpha.txt", children[0].Name())
	require.Equal(t, "docs", children[1].Name())
	require.Equal(t, "zulu.txt", children[2].Name())
	require.False(t, children[0].IsDir())
	require.True(t, children[1].IsDir())
}

func TestChildExists(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	_, err = root.CreateFile(t.Context(), "note.txt", []byte("n"), "text/plain")
	require.NoError(t, err)

	exists, err := root.ChildExists(t.Context(), "note.txt")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = root.ChildExists(t.Context(), "missing.txt")
	require.NoError(t, err)
	require.False(t, exists)
}

// A directory's modification time is dominated by its children: the
// newest child EditedAt wins, the directory's own record is only the
// fallback for an empty directory.
func TestLastModifiedDominatedByChildren(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	docs, err := root.CreateDirectory(t.Context(), "docs")
	require.NoError(t, err)

	// Empty directory falls back to its own record.
	modTime, known, err := docs.LastModified(t.Context())
	require.NoError(t, err)
	require.True(t, known)
	require.False(t, modTime.IsZero())

	_, err = docs.CreateFile(t.Context(), "old.txt", []byte("1"), "text/plain")
	require.NoError(t, err)
	_, err = docs.CreateFile(t.Context(), "new.txt", []byte("2"), "text/plain")
	require.NoError(t, err)

	// Push one child far into the future directly in the record store.
	future := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, f.records.TouchEdited(t.Context(), fileHash(t, f, alice.ID, docs, "old.txt"), future))

	modTime, known, err = docs.LastModified(t.Context())
	require.NoError(t, err)
	require.True(t, known)
	require.Equal(t, future, modTime.UTC().Truncate(time.Second))
}

func TestLastModifiedUnknownForRootContexts(t *testing.T) {
	f := newFixture(t, namespace.Config{})

	dir, err := f.service.Resolve(t.Context(), nil, "/attach")
	require.NoError(t, err)
	_, known, err := dir.LastModified(t.Context())
	require.NoError(t, err)
	require.False(t, known)

	_, known, err = f.service.Root(nil).LastModified(t.Context())
	require.NoError(t, err)
	require.False(t, known)
}

func TestQuotaInfoForOwnerAndRoot(t *testing.T) {
	f := newFixture(t, namespace.Config{
		TierLimits: map[string]int64{"basic": 100},
	})
	alice := f.seedChannel(t, "alice-id", "alice")
	alice.Tier = "basic"
	require.NoError(t, f.records.Put(t.Context(), alice))
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	_, err = root.CreateFile(t.Context(), "a.bin", make([]byte, 30), "application/octet-stream")
	require.NoError(t, err)

	info, err := root.QuotaInfo(t.Context())
	require.NoError(t, err)
	require.EqualValues(t, 30, info.Used)
	require.EqualValues(t, 70, info.Free)

	// Root context reports backing-store totals instead.
	rootDir, err := f.service.Resolve(t.Context(), nil, "/attach")
	require.NoError(t, err)
	storeInfo, err := rootDir.QuotaInfo(t.Context())
	require.NoError(t, err)
	require.EqualValues(t, 30, storeInfo.Used)
}

// Free space is a signed figure: an account over its limit reports the
// deficit instead of clamping to zero.
func TestQuotaInfoFreeGoesNegative(t *testing.T) {
	f := newFixture(t, namespace.Config{
		TierLimits: map[string]int64{"basic": 100},
	})
	alice := f.seedChannel(t, "alice-id", "alice")
	alice.Tier = "basic"
	require.NoError(t, f.records.Put(t.Context(), alice))
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	_, err = root.CreateFile(t.Context(), "a.bin", make([]byte, 60), "application/octet-stream")
	require.NoError(t, err)

	// Shrink the limit underneath existing usage.
	shrunk := newFixtureWithStores(t, namespace.Config{
		TierLimits: map[string]int64{"basic": 40},
	}, f)

	info, err := shrunk.Accountant().Info(t.Context(), alice)
	require.NoError(t, err)
	require.EqualValues(t, 60, info.Used)
	require.EqualValues(t, -20, info.Free)
}

func TestDirectoryRootsCannotBeRenamed(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	err = root.SetName(t.Context(), "renamed")
	require.True(t, attachment.IsCode(err, attachment.ErrForbidden))
}

// newFixtureWithStores rebuilds a service over an existing fixture's
// stores with different policy knobs.
func newFixtureWithStores(t *testing.T, config namespace.Config, f *fixture) *namespace.Service {
	t.Helper()
	return namespace.NewService(config, f.records, f.records, f.content, nil, nil)
}

// fileHash looks up a child's record hash directly in the record store.
func fileHash(t *testing.T, f *fixture, ownerID string, dir *namespace.Directory, name string) string {
	t.Helper()
	record, err := f.records.LookupChild(t.Context(), ownerID, dir.Resolved().FolderHash, name, attachment.KindAny)
	require.NoError(t, err)
	return record.Hash
}
