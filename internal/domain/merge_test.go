package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeVariablesLastWriterWins(t *testing.T) {
	current := map[string]interface{}{
		"region": "us-east-1",
		"count":  float64(3),
	}

	err := MergeVariables(current, map[string]interface{}{
		"region": "eu-west-1",
		"extra":  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", current["region"])
	assert.Equal(t, float64(3), current["count"])
	assert.Equal(t, true, current["extra"])
}

func TestMergeVariablesEmptyUpdates(t *testing.T) {
	current := map[string]interface{}{"keep": "value"}

	require.NoError(t, MergeVariables(current, nil))
	require.NoError(t, MergeVariables(current, map[string]interface{}{}))

	assert.Equal(t, map[string]interface{}{"keep": "value"}, current)
}

func TestMergeVariablesNestedOverride(t *testing.T) {
	current := map[string]interface{}{
		"deploy": map[string]interface{}{
			"target":   "staging",
			"replicas": float64(2),
		},
	}

	err := MergeVariables(current, map[string]interface{}{
		"deploy": map[string]interface{}{
			"target": "production",
		},
	})
	require.NoError(t, err)

	deploy, ok := current["deploy"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "production", deploy["target"])
	assert.Equal(t, float64(2), deploy["replicas"])
}

func TestOverlayVariablesLeavesInputsUntouched(t *testing.T) {
	base := map[string]interface{}{"env": "dev", "debug": false}
	updates := map[string]interface{}{"env": "prod"}

	merged, err := OverlayVariables(base, updates)
	require.NoError(t, err)

	assert.Equal(t, "prod", merged["env"])
	assert.Equal(t, false, merged["debug"])
	assert.Equal(t, "dev", base["env"], "base must not be mutated")
}

func TestOverlayVariablesNilBase(t *testing.T) {
	merged, err := OverlayVariables(nil, map[string]interface{}{"a": 1})
	require.NoError(t, err)
	require.NotNil(t, merged)
	assert.Equal(t, 1, merged["a"])

	merged, err = OverlayVariables(nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}
