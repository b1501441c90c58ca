package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	attachmemory "github.com/marmos91/attachfs/pkg/attachment/memory"
)

func TestCreateRecordStoreMemory(t *testing.T) {
	store, err := CreateRecordStore(t.Context(), &RecordsConfig{Type: "memory"})
	require.NoError(t, err)
	require.NoError(t, store.Healthcheck(t.Context()))
	require.NoError(t, store.Close())
}

func TestCreateRecordStoreDatabase(t *testing.T) {
	cfg := &RecordsConfig{
		Type: "database",
		Database: map[string]any{
			"type": "sqlite",
			"sqlite": map[string]any{
				"path": filepath.Join(t.TempDir(), "records.db"),
			},
		},
	}

	store, err := CreateRecordStore(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Healthcheck(t.Context()))
}

func TestCreateRecordStoreBadger(t *testing.T) {
	cfg := &RecordsConfig{
		Type: "badger",
		Badger: map[string]any{
			"db_path": t.TempDir(),
		},
	}

	store, err := CreateRecordStore(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Healthcheck(t.Context()))
}

func TestCreateRecordStoreBadgerRequiresPath(t *testing.T) {
	_, err := CreateRecordStore(t.Context(), &RecordsConfig{Type: "badger"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "db_path")
}

func TestCreateRecordStoreUnknownType(t *testing.T) {
	_, err := CreateRecordStore(t.Context(), &RecordsConfig{Type: "cassandra"})
	require.Error(t, err)
}

func TestCreateContentStoreFilesystem(t *testing.T) {
	cfg := &ContentConfig{
		Type: "filesystem",
		Filesystem: map[string]any{
			"path": t.TempDir(),
		},
	}

	store, err := CreateContentStore(t.Context(), cfg)
	require.NoError(t, err)

	written, err := store.Write(t.Context(), "hash-a/hash-b", []byte("payload"))
	require.NoError(t, err)
	require.EqualValues(t, 7, written)
}

func TestCreateContentStoreFilesystemRequiresPath(t *testing.T) {
	_, err := CreateContentStore(t.Context(), &ContentConfig{Type: "filesystem"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "path")
}

func TestCreateContentStoreMemory(t *testing.T) {
	store, err := CreateContentStore(t.Context(), &ContentConfig{Type: "memory"})
	require.NoError(t, err)

	_, err = store.Write(t.Context(), "hash", []byte("x"))
	require.NoError(t, err)
}

func TestCreateContentStoreUnknownType(t *testing.T) {
	_, err := CreateContentStore(t.Context(), &ContentConfig{Type: "tape"})
	require.Error(t, err)
}

func TestSeedChannels(t *testing.T) {
	store := attachmemory.NewStore()
	channels := []ChannelConfig{
		{ID: "alice-id", Handle: "alice", AccountID: "alice-id", Tier: "basic"},
		{ID: "bob-id", Handle: "bob", AccountID: "acme"},
	}

	require.NoError(t, SeedChannels(t.Context(), store, channels, nil))

	alice, err := store.FindByHandle(t.Context(), "alice")
	require.NoError(t, err)
	require.Equal(t, "alice-id", alice.ID)
	require.Equal(t, "basic", alice.Tier)

	// Re-seeding leaves runtime changes alone.
	alice.Handle = "renamed"
	require.NoError(t, store.Put(t.Context(), alice))
	require.NoError(t, SeedChannels(t.Context(), store, channels, nil))

	kept, err := store.GetByID(t.Context(), "alice-id")
	require.NoError(t, err)
	require.Equal(t, "renamed", kept.Handle)
}
