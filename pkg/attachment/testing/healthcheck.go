package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// RunHealthcheckTests executes the healthcheck contract tests.
func (suite *StoreTestSuite) RunHealthcheckTests(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		store := suite.NewStore()

		require.NoError(t, store.Healthcheck(t.Context()))
	})

	t.Run("RespectsCancellation", func(t *testing.T) {
		store := suite.NewStore()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		require.Error(t, store.Healthcheck(ctx))
	})
}
