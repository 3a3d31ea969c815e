package helm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindlab/kindstack/internal/util/retry"
)

func TestChartFindError(t *testing.T) {
	t.Parallel()

	t.Run("nil passes through", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, chartFindError(nil))
	})

	t.Run("missing chart is fatal", func(t *testing.T) {
		t.Parallel()

		cause := fmt.Errorf("chart %q version %q not found in %s repository",
			"lokii", "6.0.0", "https://grafana.github.io/helm-charts")

		err := chartFindError(cause)
		require.Error(t, err)
		assert.True(t, retry.IsFatal(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("network failure is retryable", func(t *testing.T) {
		t.Parallel()

		err := chartFindError(errors.New("Get \"https://example.invalid/index.yaml\": connection refused"))
		require.Error(t, err)
		assert.False(t, retry.IsFatal(err))
	})
}
