package template

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionsCache(t *testing.T) {
	fetcher := func(calls *int, result []Collection, err error) func(context.Context) ([]Collection, error) {
		return func(context.Context) ([]Collection, error) {
			*calls++
			return result, err
		}
	}

	t.Run("Should fetch once and serve from cache", func(t *testing.T) {
		cache := NewCollectionsCache(0)
		calls := 0
		fetch := fetcher(&calls, []Collection{{Value: "a"}}, nil)
		first, err := cache.Get(context.Background(), fetch)
		require.NoError(t, err)
		second, err := cache.Get(context.Background(), fetch)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, calls)
		assert.True(t, cache.Cached())
	})

	t.Run("Should refetch after invalidation", func(t *testing.T) {
		cache := NewCollectionsCache(0)
		calls := 0
		fetch := fetcher(&calls, []Collection{{Value: "a"}}, nil)
		_, _ = cache.Get(context.Background(), fetch)
		cache.Invalidate()
		assert.False(t, cache.Cached())
		_, _ = cache.Get(context.Background(), fetch)
		assert.Equal(t, 2, calls)
	})

	t.Run("Should not cache failures", func(t *testing.T) {
		cache := NewCollectionsCache(0)
		calls := 0
		_, err := cache.Get(context.Background(), fetcher(&calls, nil, errors.New("down")))
		assert.Error(t, err)
		assert.False(t, cache.Cached())
	})
}
