package memory

import (
	"testing"

	"github.com/marmos91/attachfs/pkg/content"
	contenttesting "github.com/marmos91/attachfs/pkg/content/testing"
)

// TestMemoryStore runs the complete byte store test suite against the
// in-memory implementation.
func TestMemoryStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func() content.Store {
			return New()
		},
	}

	suite.Run(t)
}
