package template

import (
	"context"
	"slices"
	"time"

	"github.com/compozy/tplsettings/pkg/logger"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const collectionsKey = "collections"

// CollectionsCache memoizes the collections lookup for one authoring
// session. The owner invalidates it every time settings are freshly opened.
type CollectionsCache struct {
	lru *expirable.LRU[string, []Collection]
}

// NewCollectionsCache builds a cache whose entry expires after ttl.
// A non-positive ttl keeps the entry until invalidated.
func NewCollectionsCache(ttl time.Duration) *CollectionsCache {
	return &CollectionsCache{lru: expirable.NewLRU[string, []Collection](1, nil, ttl)}
}

// Get returns the cached list or loads it through fetch. Failed fetches are
// not cached.
func (c *CollectionsCache) Get(
	ctx context.Context,
	fetch func(context.Context) ([]Collection, error),
) ([]Collection, error) {
	if cached, ok := c.lru.Get(collectionsKey); ok {
		return slices.Clone(cached), nil
	}
	collections, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("Cached component collections", "count", len(collections))
	c.lru.Add(collectionsKey, slices.Clone(collections))
	return collections, nil
}

// Invalidate empties the cache.
func (c *CollectionsCache) Invalidate() {
	c.lru.Purge()
}

// Cached reports whether a list is currently held.
func (c *CollectionsCache) Cached() bool {
	return c.lru.Contains(collectionsKey)
}
