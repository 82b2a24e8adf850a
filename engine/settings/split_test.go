package settings

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitValues_Unbound(t *testing.T) {
	t.Run("Should write rendered values straight into data", func(t *testing.T) {
		comp := apiCallComponent()
		comp.Data["unrelated"] = 42
		res, err := SplitValues(comp, map[string]any{"method": "GET", "url": "https://new"})
		require.NoError(t, err)
		assert.False(t, res.Bound)
		assert.Nil(t, res.Vars)
		assert.Equal(t, "GET", res.Data["method"])
		assert.Equal(t, "https://new", res.Data["url"])
		assert.Equal(t, "secret", res.Data["token"], "fields not rendered keep their value")
		assert.Equal(t, 42, res.Data["unrelated"])
		assert.Equal(t, "POST", comp.Data["method"], "component must not be mutated")
	})

	t.Run("Should skip button settings", func(t *testing.T) {
		comp := apiCallComponent()
		comp.Settings = append(comp.Settings, Setting{Name: "test", Type: KindButton})
		res, err := SplitValues(comp, map[string]any{"test": "clicked"})
		require.NoError(t, err)
		_, ok := res.Data["test"]
		assert.False(t, ok)
	})
}

func TestSplitValues_Bound(t *testing.T) {
	t.Run("Should route included keys to data and rebuild template vars", func(t *testing.T) {
		comp := boundComponent()
		values := map[string]any{
			"url":     "https://edited",
			"method":  "DELETE",
			"headers": `{"a":"b"}`,
			"token":   "t0k",
		}
		res, err := SplitValues(comp, values)
		require.NoError(t, err)
		assert.True(t, res.Bound)
		assert.Equal(t, map[string]any{"url": "https://edited"}, res.Data)
		assert.Equal(t, map[string]any{"method": "DELETE", "headers": `{"a":"b"}`, "token": "t0k"}, res.Vars)
		_, stale := res.Vars["stale"]
		assert.False(t, stale, "stale keys must not survive")
	})

	t.Run("Should keep previous values for variables that were not rendered", func(t *testing.T) {
		comp := boundComponent()
		res, err := SplitValues(comp, map[string]any{"url": "https://edited"})
		require.NoError(t, err)
		assert.Equal(t, "PUT", res.Vars["method"])
		assert.Nil(t, res.Vars["token"])
		_, hasToken := res.Vars["token"]
		assert.True(t, hasToken, "every schema key must be covered")
	})

	t.Run("Should route a newly included key to data", func(t *testing.T) {
		comp := boundComponent()
		res, err := SplitWithIncluded(comp, comp.TemplateSchema(), map[string]any{}, []string{"url", "method"})
		require.NoError(t, err)
		assert.Equal(t, "PUT", res.Data["method"], "value moves from the var bag into data")
		_, inVars := res.Vars["method"]
		assert.False(t, inVars)
	})

	t.Run("Should move an excluded key into template vars with its instance value", func(t *testing.T) {
		comp := boundComponent()
		res, err := SplitWithIncluded(comp, comp.TemplateSchema(), map[string]any{}, []string{})
		require.NoError(t, err)
		assert.Equal(t, "https://instance.example.com", res.Vars["url"])
		_, inData := res.Data["url"]
		assert.False(t, inData)
	})

	t.Run("Should keep included and variable key sets disjoint and complete", func(t *testing.T) {
		comp := apiCallComponent()
		values := maps.Clone(comp.Data)
		allKeys := names(comp.Settings)
		for mask := 0; mask < 1<<len(allKeys); mask++ {
			var included []string
			for i, name := range allKeys {
				if mask&(1<<i) != 0 {
					included = append(included, name)
				}
			}
			res, err := SplitWithIncluded(comp, comp.Settings, values, included)
			require.NoError(t, err)
			written := res.IncludedValues()
			union := slices.Collect(maps.Keys(written))
			for key := range res.Vars {
				_, dup := written[key]
				assert.False(t, dup, "key %s in both maps", key)
				union = append(union, key)
			}
			slices.Sort(union)
			expected := slices.Clone(allKeys)
			slices.Sort(expected)
			assert.Equal(t, expected, union, "included %v", included)
		}
	})
}

func TestApplySplit(t *testing.T) {
	t.Run("Should write data and the variable bag", func(t *testing.T) {
		comp := boundComponent()
		res, err := SplitValues(comp, map[string]any{"url": "u", "method": "GET", "headers": "", "token": ""})
		require.NoError(t, err)
		ApplySplit(comp, res)
		assert.Equal(t, "u", comp.Data["url"])
		assert.Equal(t, "GET", comp.TemplateVars()["method"])
		assert.NoError(t, VerifyDuality(comp))
	})
}

func TestWithDefaultsFrom(t *testing.T) {
	t.Run("Should replace defaults without touching the input", func(t *testing.T) {
		schema := apiCallComponent().Settings
		out := WithDefaultsFrom(schema, map[string]any{"method": "PATCH"})
		assert.Equal(t, "PATCH", out[0].Value)
		assert.Equal(t, "GET", schema[0].Value)
	})
}
