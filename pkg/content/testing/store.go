package testing

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/attachfs/pkg/content"
)

// assertContentEquals reads back content at a path and compares it.
func assertContentEquals(t *testing.T, store content.Store, path string, expected []byte) {
	t.Helper()

	reader, err := store.Read(testContext(), path)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, expected, data)
}

// ============================================================================
// Write Tests
// ============================================================================

// RunWriteTests executes all write operation tests.
func (suite *StoreTestSuite) RunWriteTests(t *testing.T) {
	t.Run("Basic", func(t *testing.T) {
		store := suite.NewStore()

		written, err := store.Write(testContext(), "aaaa/bbbb", []byte("Hello, World!"))
		require.NoError(t, err)
		require.Equal(t, int64(13), written)

		assertContentEquals(t, store, "aaaa/bbbb", []byte("Hello, World!"))

		size, err := store.Size(testContext(), "aaaa/bbbb")
		require.NoError(t, err)
		require.Equal(t, int64(13), size)
	})

	t.Run("Overwrite", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.Write(testContext(), "aaaa", []byte("old"))
		require.NoError(t, err)
		_, err = store.Write(testContext(), "aaaa", []byte("new data that is longer"))
		require.NoError(t, err)

		assertContentEquals(t, store, "aaaa", []byte("new data that is longer"))
	})

	t.Run("Empty", func(t *testing.T) {
		store := suite.NewStore()

		written, err := store.Write(testContext(), "aaaa", []byte{})
		require.NoError(t, err)
		require.Zero(t, written)

		size, err := store.Size(testContext(), "aaaa")
		require.NoError(t, err)
		require.Zero(t, size)
	})

	t.Run("NestedChain", func(t *testing.T) {
		store := suite.NewStore()

		// Deep hash chains must not require the intermediate levels to
		// have content of their own
		_, err := store.Write(testContext(), "a1/b2/c3/d4", []byte("deep"))
		require.NoError(t, err)

		assertContentEquals(t, store, "a1/b2/c3/d4", []byte("deep"))
	})

	t.Run("ErrorEmptyPath", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.Write(testContext(), "", []byte("data"))
		require.Error(t, err)
		require.ErrorIs(t, err, content.ErrInvalidPath)
	})
}

// ============================================================================
// Read Tests
// ============================================================================

// RunReadTests executes all read operation tests.
func (suite *StoreTestSuite) RunReadTests(t *testing.T) {
	t.Run("ErrorNotFound", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.Read(testContext(), "missing")
		require.Error(t, err)
		require.True(t, errors.Is(err, content.ErrNotFound))
	})

	t.Run("SizeErrorNotFound", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.Size(testContext(), "missing")
		require.Error(t, err)
		require.True(t, errors.Is(err, content.ErrNotFound))
	})

	t.Run("Exists", func(t *testing.T) {
		store := suite.NewStore()

		exists, err := store.Exists(testContext(), "aaaa")
		require.NoError(t, err)
		require.False(t, exists)

		_, err = store.Write(testContext(), "aaaa", []byte("data"))
		require.NoError(t, err)

		exists, err = store.Exists(testContext(), "aaaa")
		require.NoError(t, err)
		require.True(t, exists)
	})

	t.Run("IndependentPaths", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.Write(testContext(), "aaaa/one", []byte("one"))
		require.NoError(t, err)
		_, err = store.Write(testContext(), "aaaa/two", []byte("two"))
		require.NoError(t, err)

		assertContentEquals(t, store, "aaaa/one", []byte("one"))
		assertContentEquals(t, store, "aaaa/two", []byte("two"))
	})
}

// ============================================================================
// Delete Tests
// ============================================================================

// RunDeleteTests executes all delete operation tests.
func (suite *StoreTestSuite) RunDeleteTests(t *testing.T) {
	t.Run("RemovesContent", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.Write(testContext(), "aaaa", []byte("data"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(testContext(), "aaaa"))

		exists, err := store.Exists(testContext(), "aaaa")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("Idempotent", func(t *testing.T) {
		store := suite.NewStore()

		require.NoError(t, store.Delete(testContext(), "never-written"))
	})

	t.Run("LeavesSiblingsIntact", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.Write(testContext(), "aaaa/one", []byte("one"))
		require.NoError(t, err)
		_, err = store.Write(testContext(), "aaaa/two", []byte("two"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(testContext(), "aaaa/one"))

		assertContentEquals(t, store, "aaaa/two", []byte("two"))
	})
}

// ============================================================================
// Stats Tests
// ============================================================================

// RunStatsTests executes all storage statistics tests.
func (suite *StoreTestSuite) RunStatsTests(t *testing.T) {
	t.Run("TracksUsage", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.Write(testContext(), "aaaa", make([]byte, 100))
		require.NoError(t, err)
		_, err = store.Write(testContext(), "bbbb", make([]byte, 50))
		require.NoError(t, err)

		stats, err := store.Stats(testContext())
		require.NoError(t, err)
		require.Equal(t, int64(150), stats.UsedSize)
		require.Equal(t, int64(2), stats.ObjectCount)
	})

	t.Run("EmptyStore", func(t *testing.T) {
		store := suite.NewStore()

		stats, err := store.Stats(testContext())
		require.NoError(t, err)
		require.Zero(t, stats.UsedSize)
		require.Zero(t, stats.ObjectCount)
	})
}
