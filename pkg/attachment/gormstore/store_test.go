package gormstore

import (
	"path/filepath"
	"testing"

	"github.com/marmos91/attachfs/pkg/attachment"
	attachmenttesting "github.com/marmos91/attachfs/pkg/attachment/testing"
)

// TestGormStoreSQLite runs the complete store test suite against the GORM
// implementation backed by a throwaway SQLite database.
func TestGormStoreSQLite(t *testing.T) {
	suite := &attachmenttesting.StoreTestSuite{
		NewStore: func() attachment.Store {
			config := &Config{
				Type: DatabaseTypeSQLite,
				SQLite: SQLiteConfig{
					Path: filepath.Join(t.TempDir(), "records.db"),
				},
			}

			store, err := New(config)
			if err != nil {
				t.Fatalf("Failed to create GORM store: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}

	suite.Run(t)
}
