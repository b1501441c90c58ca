package namespace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/attachfs/pkg/attachment"
	"github.com/marmos91/attachfs/pkg/namespace"
)

func TestCreateRejectsDuplicateSiblingNames(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	_, err = root.CreateFile(t.Context(), "note.txt", []byte("1"), "text/plain")
	require.NoError(t, err)

	_, err = root.CreateFile(t.Context(), "note.txt", []byte("2"), "text/plain")
	require.True(t, attachment.IsCode(err, attachment.ErrAlreadyExists))

	_, err = root.CreateDirectory(t.Context(), "note.txt")
	require.True(t, attachment.IsCode(err, attachment.ErrAlreadyExists))

	// The conflicting create left nothing behind.
	stats, err := f.content.Stats(t.Context())
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.ObjectCount)
}

func TestCreateRejectsEmptyNames(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)

	_, err = root.CreateFile(t.Context(), "", []byte("x"), "text/plain")
	require.True(t, attachment.IsCode(err, attachment.ErrInvalidArgument))

	_, err = root.CreateDirectory(t.Context(), "")
	require.True(t, attachment.IsCode(err, attachment.ErrInvalidArgument))
}

func TestCreateRejectsUnaddressableNames(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)

	// Resolve splits logical paths on "/", so a separator-bearing name
	// could never be addressed again once created.
	for _, name := range []string{"docs/note.txt", "/leading", "trailing/", "nul\x00byte"} {
		_, err = root.CreateFile(t.Context(), name, []byte("x"), "text/plain")
		require.True(t, attachment.IsCode(err, attachment.ErrInvalidArgument), "CreateFile(%q)", name)

		_, err = root.CreateDirectory(t.Context(), name)
		require.True(t, attachment.IsCode(err, attachment.ErrInvalidArgument), "CreateDirectory(%q)", name)
	}

	// Nothing was created or billed.
	children, err := root.ListChildren(t.Context())
	require.NoError(t, err)
	require.Empty(t, children)
	used, err := f.service.Accountant().Usage(t.Context(), alice.AccountID)
	require.NoError(t, err)
	require.Zero(t, used)
}

func TestRenameRejectsUnaddressableNames(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)

	dir, err := root.CreateDirectory(t.Context(), "docs")
	require.NoError(t, err)
	file, err := root.CreateFile(t.Context(), "note.txt", []byte("x"), "text/plain")
	require.NoError(t, err)

	err = dir.SetName(t.Context(), "docs/archive")
	require.True(t, attachment.IsCode(err, attachment.ErrInvalidArgument))
	require.Equal(t, "docs", dir.Name())

	err = file.SetName(t.Context(), "nul\x00byte")
	require.True(t, attachment.IsCode(err, attachment.ErrInvalidArgument))
	require.Equal(t, "note.txt", file.Name())
}

func TestCreateRefusedInRootContexts(t *testing.T) {
	f := newFixture(t, namespace.Config{})

	dir, err := f.service.Resolve(t.Context(), nil, "/attach")
	require.NoError(t, err)
	_, err = dir.CreateDirectory(t.Context(), "intruder")
	require.True(t, attachment.IsCode(err, attachment.ErrForbidden))

	_, err = f.service.Root(nil).CreateFile(t.Context(), "boot.txt", []byte("x"), "text/plain")
	require.True(t, attachment.IsCode(err, attachment.ErrForbidden))
}

func TestCreateRefusedOnRemovedChannel(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)

	// The channel is removed between resolution and the write.
	alice.Removed = true
	require.NoError(t, f.records.Put(t.Context(), alice))

	_, err = root.CreateFile(t.Context(), "late.txt", []byte("x"), "text/plain")
	require.True(t, attachment.IsCode(err, attachment.ErrChannelRemoved))
}

// An oversize upload is admitted, measured, and then fully rolled back:
// afterwards neither a record nor any bytes remain anywhere.
func TestCreateFileOversizeFullRollback(t *testing.T) {
	f := newFixture(t, namespace.Config{MaxFileSize: 10})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)

	_, err = root.CreateFile(t.Context(), "big.bin", make([]byte, 11), "application/octet-stream")
	require.True(t, attachment.IsCode(err, attachment.ErrTooLarge))

	children, err := root.ListChildren(t.Context())
	require.NoError(t, err)
	require.Empty(t, children)

	stats, err := f.content.Stats(t.Context())
	require.NoError(t, err)
	require.EqualValues(t, 0, stats.ObjectCount)
	require.EqualValues(t, 0, stats.UsedSize)

	used, err := f.service.Accountant().Usage(t.Context(), alice.AccountID)
	require.NoError(t, err)
	require.EqualValues(t, 0, used)

	// A file exactly at the ceiling is accepted.
	file, err := root.CreateFile(t.Context(), "fits.bin", make([]byte, 10), "application/octet-stream")
	require.NoError(t, err)
	require.EqualValues(t, 10, file.Size())
}

func TestCreateFileQuotaExceededFullRollback(t *testing.T) {
	f := newFixture(t, namespace.Config{
		TierLimits: map[string]int64{"basic": 100},
	})
	alice := f.seedChannel(t, "alice-id", "alice")
	alice.Tier = "basic"
	require.NoError(t, f.records.Put(t.Context(), alice))
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	_, err = root.CreateFile(t.Context(), "first.bin", make([]byte, 80), "application/octet-stream")
	require.NoError(t, err)

	_, err = root.CreateFile(t.Context(), "second.bin", make([]byte, 40), "application/octet-stream")
	require.True(t, attachment.IsCode(err, attachment.ErrQuotaExceeded))

	// Only the first upload survives.
	children, err := root.ListChildren(t.Context())
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, "first.bin", children[0].Name())

	used, err := f.service.Accountant().Usage(t.Context(), alice.AccountID)
	require.NoError(t, err)
	require.EqualValues(t, 80, used)

	stats, err := f.content.Stats(t.Context())
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.ObjectCount)
}

// Quota pools by account, not by channel: two channels on the same
// account share one ceiling.
func TestQuotaSpansChannelsOfOneAccount(t *testing.T) {
	f := newFixture(t, namespace.Config{
		TierLimits: map[string]int64{"basic": 100},
	})

	work := &attachment.Channel{ID: "work-id", Handle: "work", AccountID: "acme", Tier: "basic"}
	side := &attachment.Channel{ID: "side-id", Handle: "side", AccountID: "acme", Tier: "basic"}
	require.NoError(t, f.records.Put(t.Context(), work))
	require.NoError(t, f.records.Put(t.Context(), side))

	workRoot, err := f.service.Resolve(t.Context(), ownerActor(work), "/attach/work")
	require.NoError(t, err)
	_, err = workRoot.CreateFile(t.Context(), "a.bin", make([]byte, 70), "application/octet-stream")
	require.NoError(t, err)

	sideRoot, err := f.service.Resolve(t.Context(), ownerActor(side), "/attach/side")
	require.NoError(t, err)
	_, err = sideRoot.CreateFile(t.Context(), "b.bin", make([]byte, 50), "application/octet-stream")
	require.True(t, attachment.IsCode(err, attachment.ErrQuotaExceeded))

	used, err := f.service.Accountant().Usage(t.Context(), "acme")
	require.NoError(t, err)
	require.EqualValues(t, 70, used)
}

func TestCreateTouchesParentDirectory(t *testing.T) {
	f := newFixture(t, namespace.Config{})
	alice := f.seedChannel(t, "alice-id", "alice")
	actor := ownerActor(alice)

	root, err := f.service.Resolve(t.Context(), actor, "/attach/alice")
	require.NoError(t, err)
	docs, err := root.CreateDirectory(t.Context(), "docs")
	require.NoError(t, err)

	hash := docs.Resolved().FolderHash
	before, err := f.records.GetByHash(t.Context(), hash)
	require.NoError(t, err)

	_, err = docs.CreateFile(t.Context(), "new.txt", []byte("x"), "text/plain")
	require.NoError(t, err)

	after, err := f.records.GetByHash(t.Context(), hash)
	require.NoError(t, err)
	require.False(t, after.EditedAt.Before(before.EditedAt))
}
