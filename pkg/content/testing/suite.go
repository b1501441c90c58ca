package testing

import (
	"context"
	"testing"

	"github.com/marmos91/attachfs/pkg/content"
)

// StoreTestSuite is a comprehensive test suite for byte store
// implementations. It tests the interface contract, not implementation
// details, making it reusable across different backends (filesystem,
// memory, S3).
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//	    suite := &testing.StoreTestSuite{
//	        NewStore: func() content.Store {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh byte store
	// instance for each test. This ensures test isolation.
	NewStore func() content.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Write", suite.RunWriteTests)
	t.Run("Read", suite.RunReadTests)
	t.Run("Delete", suite.RunDeleteTests)
	t.Run("Stats", suite.RunStatsTests)
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}
