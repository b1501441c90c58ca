package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// RunChannelTests executes all channel directory contract tests.
func (suite *StoreTestSuite) RunChannelTests(t *testing.T) {
	t.Run("FindByHandle", suite.testFindByHandle)
	t.Run("GetByID", suite.testGetByID)
	t.Run("ListLive", suite.testListLive)
	t.Run("Put", suite.testPut)
}

func (suite *StoreTestSuite) testFindByHandle(t *testing.T) {
	t.Run("FindsLiveChannel", func(t *testing.T) {
		store := suite.NewStore()

		mustPut(t, store, TestChannel("id-1", "engineering"))

		got, err := store.FindByHandle(t.Context(), "engineering")
		require.NoError(t, err)
		require.Equal(t, "id-1", got.ID)
	})

	t.Run("ErrorNotFound", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.FindByHandle(t.Context(), "nope")
		AssertErrorCode(t, attachment.ErrNotFound, err)
	})

	t.Run("RemovedChannelDoesNotResolve", func(t *testing.T) {
		store := suite.NewStore()

		channel := TestChannel("id-1", "gone")
		channel.Removed = true
		mustPut(t, store, channel)

		_, err := store.FindByHandle(t.Context(), "gone")
		AssertErrorCode(t, attachment.ErrNotFound, err)
	})
}

func (suite *StoreTestSuite) testGetByID(t *testing.T) {
	t.Run("ReturnsRemovedChannel", func(t *testing.T) {
		store := suite.NewStore()

		channel := TestChannel("id-1", "gone")
		channel.Removed = true
		mustPut(t, store, channel)

		got, err := store.GetByID(t.Context(), "id-1")
		require.NoError(t, err)
		require.True(t, got.Removed)
	})

	t.Run("ErrorNotFound", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.GetByID(t.Context(), "nope")
		AssertErrorCode(t, attachment.ErrNotFound, err)
	})
}

func (suite *StoreTestSuite) testListLive(t *testing.T) {
	t.Run("SortedByHandle", func(t *testing.T) {
		store := suite.NewStore()

		mustPut(t, store, TestChannel("id-3", "zulu"))
		mustPut(t, store, TestChannel("id-1", "alpha"))
		mustPut(t, store, TestChannel("id-2", "mike"))

		channels, err := store.ListLive(t.Context())
		require.NoError(t, err)
		require.Len(t, channels, 3)
		require.Equal(t, "alpha", channels[0].Handle)
		require.Equal(t, "mike", channels[1].Handle)
		require.Equal(t, "zulu", channels[2].Handle)
	})

	t.Run("ExcludesRemoved", func(t *testing.T) {
		store := suite.NewStore()

		mustPut(t, store, TestChannel("id-1", "alive"))
		removed := TestChannel("id-2", "dead")
		removed.Removed = true
		mustPut(t, store, removed)

		channels, err := store.ListLive(t.Context())
		require.NoError(t, err)
		require.Len(t, channels, 1)
		require.Equal(t, "alive", channels[0].Handle)
	})

	t.Run("EmptyDirectory", func(t *testing.T) {
		store := suite.NewStore()

		channels, err := store.ListLive(t.Context())
		require.NoError(t, err)
		require.Empty(t, channels)
	})
}

func (suite *StoreTestSuite) testPut(t *testing.T) {
	t.Run("ReplacesExisting", func(t *testing.T) {
		store := suite.NewStore()

		mustPut(t, store, TestChannel("id-1", "before"))

		updated := TestChannel("id-1", "after")
		mustPut(t, store, updated)

		got, err := store.FindByHandle(t.Context(), "after")
		require.NoError(t, err)
		require.Equal(t, "id-1", got.ID)

		// The old handle no longer resolves to this channel
		_, err = store.FindByHandle(t.Context(), "before")
		AssertErrorCode(t, attachment.ErrNotFound, err)
	})

	t.Run("MarkRemoved", func(t *testing.T) {
		store := suite.NewStore()

		channel := TestChannel("id-1", "team")
		mustPut(t, store, channel)

		channel.Removed = true
		mustPut(t, store, channel)

		_, err := store.FindByHandle(t.Context(), "team")
		AssertErrorCode(t, attachment.ErrNotFound, err)

		got, err := store.GetByID(t.Context(), "id-1")
		require.NoError(t, err)
		require.True(t, got.Removed)
	})
}
