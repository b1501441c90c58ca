package testing

import (
	"testing"

	"github.com/marmos91/attachfs/pkg/attachment"
)

// StoreTestSuite is a comprehensive test suite for record store and channel
// directory implementations. It tests the interface contract, not
// implementation details, making it reusable across different backends
// (memory, GORM, Badger).
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh store instance
	// for each test. This ensures test isolation.
	NewStore func() attachment.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(test *testing.T) {
	test.Run("Records", suite.RunRecordTests)
	test.Run("Channels", suite.RunChannelTests)
	test.Run("Healthcheck", suite.RunHealthcheckTests)
}
