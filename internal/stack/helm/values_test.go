package helm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	t.Run("later maps win", func(t *testing.T) {
		t.Parallel()

		merged := Merge(
			Values{"a": 1, "b": 1},
			Values{"b": 2, "c": 2},
		)
		assert.Equal(t, Values{"a": 1, "b": 2, "c": 2}, merged)
	})

	t.Run("no maps", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, Merge())
	})

	t.Run("inputs unchanged", func(t *testing.T) {
		t.Parallel()

		base := Values{"a": 1}
		_ = Merge(base, Values{"a": 2})
		assert.Equal(t, 1, base["a"])
	})
}

func TestValues_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	in := Values{
		"grafana": map[string]any{
			"service": map[string]any{
				"type":     "NodePort",
				"nodePort": 30300,
			},
		},
	}

	data, err := in.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "nodePort: 30300")

	out, err := FromYAML(data)
	require.NoError(t, err)
	grafana, ok := out["grafana"].(map[string]any)
	require.True(t, ok)
	service, ok := grafana["service"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NodePort", service["type"])
}

func TestFromYAML_Invalid(t *testing.T) {
	t.Parallel()

	_, err := FromYAML([]byte("{bad: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML values")
}
