package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/attachfs/pkg/content"
	contenttesting "github.com/marmos91/attachfs/pkg/content/testing"
)

// TestFSStore runs the complete byte store test suite against the
// filesystem implementation.
func TestFSStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func() content.Store {
			store, err := New(context.Background(), t.TempDir())
			if err != nil {
				t.Fatalf("Failed to create filesystem store: %v", err)
			}
			return store
		},
	}

	suite.Run(t)
}

func TestFSStoreRejectsEscapingPaths(t *testing.T) {
	store, err := New(context.Background(), t.TempDir())
	require.NoError(t, err)

	for _, path := range []string{"../escape", "a/../../b", "/absolute", "a//b", "."} {
		_, err := store.Write(context.Background(), path, []byte("x"))
		require.ErrorIs(t, err, content.ErrInvalidPath, "path %q", path)
	}
}
