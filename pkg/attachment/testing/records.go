package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// RunRecordTests executes all record store contract tests.
func (suite *StoreTestSuite) RunRecordTests(t *testing.T) {
	t.Run("Insert", suite.testInsert)
	t.Run("GetByHash", suite.testGetByHash)
	t.Run("LookupChild", suite.testLookupChild)
	t.Run("ListChildren", suite.testListChildren)
	t.Run("UpdateName", suite.testUpdateName)
	t.Run("CommitSize", suite.testCommitSize)
	t.Run("TouchEdited", suite.testTouchEdited)
	t.Run("Delete", suite.testDelete)
	t.Run("SumSizesByAccount", suite.testSumSizesByAccount)
	t.Run("ListProvisional", suite.testListProvisional)
}

// ============================================================================
// Insert Tests
// ============================================================================

func (suite *StoreTestSuite) testInsert(t *testing.T) {
	t.Run("RoundTrip", suite.testInsertRoundTrip)
	t.Run("ErrorDuplicateSiblingName", suite.testInsertErrorDuplicateSiblingName)
	t.Run("SameNameDifferentParent", suite.testInsertSameNameDifferentParent)
	t.Run("SameNameDifferentOwner", suite.testInsertSameNameDifferentOwner)
	t.Run("SameNameDifferentKindStillConflicts", suite.testInsertSameNameDifferentKindConflicts)
}

func (suite *StoreTestSuite) testInsertRoundTrip(t *testing.T) {
	store := suite.NewStore()

	record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "report.txt", 42)
	mustInsert(t, store, record)

	got, err := store.GetByHash(t.Context(), record.Hash)
	require.NoError(t, err)
	require.Equal(t, record.Hash, got.Hash)
	require.Equal(t, "report.txt", got.Name)
	require.Equal(t, attachment.KindFile, got.Kind)
	require.Equal(t, int64(42), got.SizeBytes)
	require.Equal(t, "chan-1", got.OwnerID)
	require.Equal(t, "acct-1", got.AccountID)
}

func (suite *StoreTestSuite) testInsertErrorDuplicateSiblingName(t *testing.T) {
	store := suite.NewStore()

	mustInsert(t, store, TestFile("chan-1", "acct-1", attachment.RootParentHash, "dup.txt", 1))

	err := store.Insert(t.Context(), TestFile("chan-1", "acct-1", attachment.RootParentHash, "dup.txt", 2))
	AssertErrorCode(t, attachment.ErrAlreadyExists, err)
}

func (suite *StoreTestSuite) testInsertSameNameDifferentParent(t *testing.T) {
	store := suite.NewStore()

	dir := TestDirectory("chan-1", "acct-1", attachment.RootParentHash, "docs")
	mustInsert(t, store, dir)
	mustInsert(t, store, TestFile("chan-1", "acct-1", attachment.RootParentHash, "same.txt", 1))
	mustInsert(t, store, TestFile("chan-1", "acct-1", dir.Hash, "same.txt", 2))
}

func (suite *StoreTestSuite) testInsertSameNameDifferentOwner(t *testing.T) {
	store := suite.NewStore()

	mustInsert(t, store, TestFile("chan-1", "acct-1", attachment.RootParentHash, "same.txt", 1))
	mustInsert(t, store, TestFile("chan-2", "acct-2", attachment.RootParentHash, "same.txt", 2))
}

func (suite *StoreTestSuite) testInsertSameNameDifferentKindConflicts(t *testing.T) {
	store := suite.NewStore()

	mustInsert(t, store, TestDirectory("chan-1", "acct-1", attachment.RootParentHash, "clash"))

	err := store.Insert(t.Context(), TestFile("chan-1", "acct-1", attachment.RootParentHash, "clash", 1))
	AssertErrorCode(t, attachment.ErrAlreadyExists, err)
}

// ============================================================================
// GetByHash Tests
// ============================================================================

func (suite *StoreTestSuite) testGetByHash(t *testing.T) {
	t.Run("ErrorNotFound", func(t *testing.T) {
		store := suite.NewStore()

		_, err := store.GetByHash(t.Context(), "no-such-hash")
		AssertErrorCode(t, attachment.ErrNotFound, err)
	})

	t.Run("ReturnsCopy", func(t *testing.T) {
		store := suite.NewStore()

		record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "a.txt", 1)
		mustInsert(t, store, record)

		first, err := store.GetByHash(t.Context(), record.Hash)
		require.NoError(t, err)
		first.Name = "mutated"

		second, err := store.GetByHash(t.Context(), record.Hash)
		require.NoError(t, err)
		require.Equal(t, "a.txt", second.Name)
	})
}

// ============================================================================
// LookupChild Tests
// ============================================================================

func (suite *StoreTestSuite) testLookupChild(t *testing.T) {
	t.Run("FindsFileUnderRoot", suite.testLookupChildFindsFileUnderRoot)
	t.Run("FindsNestedDirectory", suite.testLookupChildFindsNestedDirectory)
	t.Run("KindFiltering", suite.testLookupChildKindFiltering)
	t.Run("ExactNameMatch", suite.testLookupChildExactNameMatch)
	t.Run("ScopedToOwner", suite.testLookupChildScopedToOwner)
	t.Run("ErrorNotFound", suite.testLookupChildErrorNotFound)
}

func (suite *StoreTestSuite) testLookupChildFindsFileUnderRoot(t *testing.T) {
	store := suite.NewStore()

	record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "report.txt", 10)
	mustInsert(t, store, record)

	got, err := store.LookupChild(t.Context(), "chan-1", attachment.RootParentHash, "report.txt", attachment.KindFile)
	require.NoError(t, err)
	require.Equal(t, record.Hash, got.Hash)
}

func (suite *StoreTestSuite) testLookupChildFindsNestedDirectory(t *testing.T) {
	store := suite.NewStore()

	docs := TestDirectory("chan-1", "acct-1", attachment.RootParentHash, "docs")
	mustInsert(t, store, docs)
	inner := TestDirectory("chan-1", "acct-1", docs.Hash, "reports")
	mustInsert(t, store, inner)

	got, err := store.LookupChild(t.Context(), "chan-1", docs.Hash, "reports", attachment.KindDirectory)
	require.NoError(t, err)
	require.Equal(t, inner.Hash, got.Hash)
}

func (suite *StoreTestSuite) testLookupChildKindFiltering(t *testing.T) {
	store := suite.NewStore()

	record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "thing", 1)
	mustInsert(t, store, record)

	// Wrong kind does not match
	_, err := store.LookupChild(t.Context(), "chan-1", attachment.RootParentHash, "thing", attachment.KindDirectory)
	AssertErrorCode(t, attachment.ErrNotFound, err)

	// KindAny matches either
	got, err := store.LookupChild(t.Context(), "chan-1", attachment.RootParentHash, "thing", attachment.KindAny)
	require.NoError(t, err)
	require.Equal(t, record.Hash, got.Hash)
}

func (suite *StoreTestSuite) testLookupChildExactNameMatch(t *testing.T) {
	store := suite.NewStore()

	mustInsert(t, store, TestFile("chan-1", "acct-1", attachment.RootParentHash, "Report.txt", 1))

	_, err := store.LookupChild(t.Context(), "chan-1", attachment.RootParentHash, "report.txt", attachment.KindAny)
	AssertErrorCode(t, attachment.ErrNotFound, err)
}

func (suite *StoreTestSuite) testLookupChildScopedToOwner(t *testing.T) {
	store := suite.NewStore()

	mustInsert(t, store, TestFile("chan-1", "acct-1", attachment.RootParentHash, "mine.txt", 1))

	_, err := store.LookupChild(t.Context(), "chan-2", attachment.RootParentHash, "mine.txt", attachment.KindAny)
	AssertErrorCode(t, attachment.ErrNotFound, err)
}

func (suite *StoreTestSuite) testLookupChildErrorNotFound(t *testing.T) {
	store := suite.NewStore()

	_, err := store.LookupChild(t.Context(), "chan-1", attachment.RootParentHash, "ghost", attachment.KindAny)
	AssertErrorCode(t, attachment.ErrNotFound, err)
}

// ============================================================================
// ListChildren Tests
// ============================================================================

func (suite *StoreTestSuite) testListChildren(t *testing.T) {
	t.Run("EmptyDirectory", func(t *testing.T) {
		store := suite.NewStore()

		children, err := store.ListChildren(t.Context(), "chan-1", attachment.RootParentHash)
		require.NoError(t, err)
		require.Empty(t, children)
	})

	t.Run("SortedByName", func(t *testing.T) {
		store := suite.NewStore()

		mustInsert(t, store, TestFile("chan-1", "acct-1", attachment.RootParentHash, "zebra.txt", 1))
		mustInsert(t, store, TestDirectory("chan-1", "acct-1", attachment.RootParentHash, "alpha"))
		mustInsert(t, store, TestFile("chan-1", "acct-1", attachment.RootParentHash, "middle.txt", 1))

		children, err := store.ListChildren(t.Context(), "chan-1", attachment.RootParentHash)
		require.NoError(t, err)
		require.Len(t, children, 3)
		require.Equal(t, "alpha", children[0].Name)
		require.Equal(t, "middle.txt", children[1].Name)
		require.Equal(t, "zebra.txt", children[2].Name)
	})

	t.Run("OnlyDirectChildren", func(t *testing.T) {
		store := suite.NewStore()

		docs := TestDirectory("chan-1", "acct-1", attachment.RootParentHash, "docs")
		mustInsert(t, store, docs)
		mustInsert(t, store, TestFile("chan-1", "acct-1", docs.Hash, "nested.txt", 1))

		children, err := store.ListChildren(t.Context(), "chan-1", attachment.RootParentHash)
		require.NoError(t, err)
		require.Len(t, children, 1)
		require.Equal(t, "docs", children[0].Name)
	})
}

// ============================================================================
// UpdateName Tests
// ============================================================================

func (suite *StoreTestSuite) testUpdateName(t *testing.T) {
	t.Run("HashUnchanged", suite.testUpdateNameHashUnchanged)
	t.Run("OldNameGone", suite.testUpdateNameOldNameGone)
	t.Run("NoOpSameName", suite.testUpdateNameNoOpSameName)
	t.Run("ErrorNotFound", suite.testUpdateNameErrorNotFound)
	t.Run("ErrorSiblingCollision", suite.testUpdateNameErrorSiblingCollision)
}

func (suite *StoreTestSuite) testUpdateNameHashUnchanged(t *testing.T) {
	store := suite.NewStore()

	record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "old.txt", 7)
	mustInsert(t, store, record)

	require.NoError(t, store.UpdateName(t.Context(), record.Hash, "new.txt"))

	got, err := store.GetByHash(t.Context(), record.Hash)
	require.NoError(t, err)
	require.Equal(t, "new.txt", got.Name)
	require.Equal(t, record.Hash, got.Hash)
	require.Equal(t, int64(7), got.SizeBytes)
}

func (suite *StoreTestSuite) testUpdateNameOldNameGone(t *testing.T) {
	store := suite.NewStore()

	record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "old.txt", 1)
	mustInsert(t, store, record)

	require.NoError(t, store.UpdateName(t.Context(), record.Hash, "new.txt"))

	_, err := store.LookupChild(t.Context(), "chan-1", attachment.RootParentHash, "old.txt", attachment.KindAny)
	AssertErrorCode(t, attachment.ErrNotFound, err)

	got, err := store.LookupChild(t.Context(), "chan-1", attachment.RootParentHash, "new.txt", attachment.KindAny)
	require.NoError(t, err)
	require.Equal(t, record.Hash, got.Hash)
}

func (suite *StoreTestSuite) testUpdateNameNoOpSameName(t *testing.T) {
	store := suite.NewStore()

	record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "same.txt", 1)
	mustInsert(t, store, record)

	require.NoError(t, store.UpdateName(t.Context(), record.Hash, "same.txt"))

	got, err := store.LookupChild(t.Context(), "chan-1", attachment.RootParentHash, "same.txt", attachment.KindAny)
	require.NoError(t, err)
	require.Equal(t, record.Hash, got.Hash)
}

func (suite *StoreTestSuite) testUpdateNameErrorNotFound(t *testing.T) {
	store := suite.NewStore()

	err := store.UpdateName(t.Context(), "no-such-hash", "anything")
	AssertErrorCode(t, attachment.ErrNotFound, err)
}

func (suite *StoreTestSuite) testUpdateNameErrorSiblingCollision(t *testing.T) {
	store := suite.NewStore()

	record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "a.txt", 1)
	mustInsert(t, store, record)
	mustInsert(t, store, TestFile("chan-1", "acct-1", attachment.RootParentHash, "b.txt", 1))

	err := store.UpdateName(t.Context(), record.Hash, "b.txt")
	AssertErrorCode(t, attachment.ErrAlreadyExists, err)
}

// ============================================================================
// CommitSize Tests
// ============================================================================

func (suite *StoreTestSuite) testCommitSize(t *testing.T) {
	t.Run("SetsSizeAndEditedAt", func(t *testing.T) {
		store := suite.NewStore()

		record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "a.txt", 0)
		mustInsert(t, store, record)

		editedAt := time.Now().Add(time.Minute).Truncate(time.Second)
		require.NoError(t, store.CommitSize(t.Context(), record.Hash, 2048, editedAt))

		got, err := store.GetByHash(t.Context(), record.Hash)
		require.NoError(t, err)
		require.Equal(t, int64(2048), got.SizeBytes)
		require.WithinDuration(t, editedAt, got.EditedAt, time.Second)
	})

	t.Run("BumpsRevision", func(t *testing.T) {
		store := suite.NewStore()

		record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "a.txt", 0)
		mustInsert(t, store, record)

		before, err := store.GetByHash(t.Context(), record.Hash)
		require.NoError(t, err)

		require.NoError(t, store.CommitSize(t.Context(), record.Hash, 100, time.Now()))

		after, err := store.GetByHash(t.Context(), record.Hash)
		require.NoError(t, err)
		require.Equal(t, before.Revision+1, after.Revision)
	})

	t.Run("ErrorNotFound", func(t *testing.T) {
		store := suite.NewStore()

		err := store.CommitSize(t.Context(), "no-such-hash", 1, time.Now())
		AssertErrorCode(t, attachment.ErrNotFound, err)
	})
}

// ============================================================================
// TouchEdited Tests
// ============================================================================

func (suite *StoreTestSuite) testTouchEdited(t *testing.T) {
	t.Run("UpdatesTimestamp", func(t *testing.T) {
		store := suite.NewStore()

		record := TestDirectory("chan-1", "acct-1", attachment.RootParentHash, "docs")
		mustInsert(t, store, record)

		editedAt := time.Now().Add(time.Hour).Truncate(time.Second)
		require.NoError(t, store.TouchEdited(t.Context(), record.Hash, editedAt))

		got, err := store.GetByHash(t.Context(), record.Hash)
		require.NoError(t, err)
		require.WithinDuration(t, editedAt, got.EditedAt, time.Second)
	})

	t.Run("ErrorNotFound", func(t *testing.T) {
		store := suite.NewStore()

		err := store.TouchEdited(t.Context(), "no-such-hash", time.Now())
		AssertErrorCode(t, attachment.ErrNotFound, err)
	})
}

// ============================================================================
// Delete Tests
// ============================================================================

func (suite *StoreTestSuite) testDelete(t *testing.T) {
	t.Run("RemovesRecord", func(t *testing.T) {
		store := suite.NewStore()

		record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "a.txt", 1)
		mustInsert(t, store, record)

		require.NoError(t, store.Delete(t.Context(), record.Hash))

		_, err := store.GetByHash(t.Context(), record.Hash)
		AssertErrorCode(t, attachment.ErrNotFound, err)
	})

	t.Run("FreesSiblingName", func(t *testing.T) {
		store := suite.NewStore()

		record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "a.txt", 1)
		mustInsert(t, store, record)
		require.NoError(t, store.Delete(t.Context(), record.Hash))

		// Reinsert under the same name succeeds after deletion
		mustInsert(t, store, TestFile("chan-1", "acct-1", attachment.RootParentHash, "a.txt", 2))
	})

	t.Run("Idempotent", func(t *testing.T) {
		store := suite.NewStore()

		require.NoError(t, store.Delete(t.Context(), "never-existed"))
	})
}

// ============================================================================
// SumSizesByAccount Tests
// ============================================================================

func (suite *StoreTestSuite) testSumSizesByAccount(t *testing.T) {
	t.Run("EmptyAccountYieldsZero", func(t *testing.T) {
		store := suite.NewStore()

		total, err := store.SumSizesByAccount(t.Context(), "acct-empty")
		require.NoError(t, err)
		require.Zero(t, total)
	})

	t.Run("AggregatesAcrossOwners", func(t *testing.T) {
		store := suite.NewStore()

		// Two channels on the same account
		mustInsert(t, store, TestFile("chan-1", "acct-1", attachment.RootParentHash, "a.txt", 100))
		mustInsert(t, store, TestFile("chan-2", "acct-1", attachment.RootParentHash, "b.txt", 250))
		// Another account's record must not count
		mustInsert(t, store, TestFile("chan-3", "acct-2", attachment.RootParentHash, "c.txt", 999))

		total, err := store.SumSizesByAccount(t.Context(), "acct-1")
		require.NoError(t, err)
		require.Equal(t, int64(350), total)
	})

	t.Run("TracksCommitAndDelete", func(t *testing.T) {
		store := suite.NewStore()

		record := TestFile("chan-1", "acct-1", attachment.RootParentHash, "a.txt", 0)
		mustInsert(t, store, record)

		require.NoError(t, store.CommitSize(t.Context(), record.Hash, 500, time.Now()))

		total, err := store.SumSizesByAccount(t.Context(), "acct-1")
		require.NoError(t, err)
		require.Equal(t, int64(500), total)

		require.NoError(t, store.Delete(t.Context(), record.Hash))

		total, err = store.SumSizesByAccount(t.Context(), "acct-1")
		require.NoError(t, err)
		require.Zero(t, total)
	})
}

// ============================================================================
// ListProvisional Tests
// ============================================================================

func (suite *StoreTestSuite) testListProvisional(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		store := suite.NewStore()

		stale, err := store.ListProvisional(t.Context(), time.Now())
		require.NoError(t, err)
		require.Empty(t, stale)
	})

	t.Run("FindsStaleProvisionalFiles", func(t *testing.T) {
		store := suite.NewStore()

		stuck := TestFile("chan-1", "acct-1", attachment.RootParentHash, "stuck.bin", 0)
		stuck.CreatedAt = time.Now().Add(-2 * time.Hour)
		mustInsert(t, store, stuck)

		committed := TestFile("chan-1", "acct-1", attachment.RootParentHash, "done.bin", 0)
		committed.CreatedAt = time.Now().Add(-2 * time.Hour)
		mustInsert(t, store, committed)
		require.NoError(t, store.CommitSize(t.Context(), committed.Hash, 42, time.Now()))

		// Directories are never provisional
		mustInsert(t, store, TestDirectory("chan-1", "acct-1", attachment.RootParentHash, "docs"))

		stale, err := store.ListProvisional(t.Context(), time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, stale, 1)
		require.Equal(t, stuck.Hash, stale[0].Hash)
	})

	t.Run("CutoffExcludesRecent", func(t *testing.T) {
		store := suite.NewStore()

		fresh := TestFile("chan-1", "acct-1", attachment.RootParentHash, "inflight.bin", 0)
		mustInsert(t, store, fresh)

		stale, err := store.ListProvisional(t.Context(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		require.Empty(t, stale)
	})

	t.Run("OldestFirst", func(t *testing.T) {
		store := suite.NewStore()

		newer := TestFile("chan-1", "acct-1", attachment.RootParentHash, "newer.bin", 0)
		newer.CreatedAt = time.Now().Add(-1 * time.Hour)
		older := TestFile("chan-1", "acct-1", attachment.RootParentHash, "older.bin", 0)
		older.CreatedAt = time.Now().Add(-3 * time.Hour)
		mustInsert(t, store, newer)
		mustInsert(t, store, older)

		stale, err := store.ListProvisional(t.Context(), time.Now())
		require.NoError(t, err)
		require.Len(t, stale, 2)
		require.Equal(t, older.Hash, stale[0].Hash)
		require.Equal(t, newer.Hash, stale[1].Hash)
	})
}
