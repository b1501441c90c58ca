package badgerstore

import (
	"context"
	"testing"

	"github.com/marmos91/attachfs/pkg/attachment"
	attachmenttesting "github.com/marmos91/attachfs/pkg/attachment/testing"
)

// TestBadgerStore runs the complete store test suite against the BadgerDB
// implementation.
func TestBadgerStore(t *testing.T) {
	suite := &attachmenttesting.StoreTestSuite{
		NewStore: func() attachment.Store {
			store, err := New(context.Background(), Config{DBPath: t.TempDir()})
			if err != nil {
				t.Fatalf("Failed to create Badger store: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}

	suite.Run(t)
}
