package storage

import (
	"context"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshAfter keeps cached links well inside AccessURLTTL.
const DefaultRefreshAfter = 45 * time.Minute

// CachingStore reuses issued access URLs until refreshAfter has passed so
// repeated page renders do not re-sign the same object. Concurrent
// requests for one locator share a single issuance.
type CachingStore struct {
	inner        DocumentStore
	cache        *cache.Cache
	group        singleflight.Group
	refreshAfter time.Duration
}

var _ DocumentStore = &CachingStore{}

func NewCachingStore(inner DocumentStore, refreshAfter time.Duration) *CachingStore {
	if refreshAfter <= 0 || refreshAfter >= AccessURLTTL {
		refreshAfter = DefaultRefreshAfter
	}
	return &CachingStore{
		inner:        inner,
		cache:        cache.New(refreshAfter, 10*time.Minute),
		refreshAfter: refreshAfter,
	}
}

func (c *CachingStore) Store(ctx context.Context, ownerID, fileName, contentType string, r io.Reader) (Locator, error) {
	return c.inner.Store(ctx, ownerID, fileName, contentType, r)
}

func (c *CachingStore) IssueAccessURL(ctx context.Context, loc Locator) (*AccessURL, error) {
	key := string(loc)
	if x, found := c.cache.Get(key); found {
		return x.(*AccessURL), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		u, err := c.inner.IssueAccessURL(ctx, loc)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, u, cache.DefaultExpiration)
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*AccessURL), nil
}

// Unwrap exposes the wrapped store, e.g. to reach local.Store.Resolve.
func (c *CachingStore) Unwrap() DocumentStore {
	return c.inner
}
