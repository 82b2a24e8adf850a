package core_test

import (
	"errors"
	"testing"

	"github.com/compozy/tplsettings/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMap(t *testing.T) {
	t.Run("Should deep copy nested maps", func(t *testing.T) {
		src := map[string]any{"a": map[string]any{"b": 1}}
		dst, err := core.CloneMap(src)
		require.NoError(t, err)
		nested, ok := dst["a"].(map[string]any)
		require.True(t, ok)
		nested["b"] = 2
		assert.Equal(t, 1, src["a"].(map[string]any)["b"])
	})
	t.Run("Should return empty map for nil input", func(t *testing.T) {
		dst, err := core.CloneMap(nil)
		require.NoError(t, err)
		assert.NotNil(t, dst)
		assert.Empty(t, dst)
	})
}

func TestCopyMaps(t *testing.T) {
	t.Run("Should let later maps win", func(t *testing.T) {
		out := core.CopyMaps(map[string]any{"a": 1, "b": 1}, map[string]any{"b": 2})
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, out)
	})
}

func TestError(t *testing.T) {
	t.Run("Should expose code and unwrap cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := core.NewError(cause, "SAVE_FAILED", map[string]any{"id": "x"})
		assert.Equal(t, "SAVE_FAILED: boom", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "x", err.Details["id"])
	})
}
