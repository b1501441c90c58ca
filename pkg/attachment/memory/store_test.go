package memory

import (
	"testing"

	"github.com/marmos91/attachfs/pkg/attachment"
	attachmenttesting "github.com/marmos91/attachfs/pkg/attachment/testing"
)

// TestMemoryStore runs the complete store test suite against the in-memory
// implementation.
func TestMemoryStore(t *testing.T) {
	suite := &attachmenttesting.StoreTestSuite{
		NewStore: func() attachment.Store {
			return NewStore()
		},
	}

	suite.Run(t)
}
