// Package cache holds short-lived read caches for public pages.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"lawoffice/internal/domain/blog"
)

// DefaultTTL bounds how stale the public blog listing may be.
const DefaultTTL = 2 * time.Minute

const publishedKey = "blog:published"

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// PostCache caches the published post list.
type PostCache struct {
	cache *gocache.Cache

	mu    sync.Mutex
	stats Stats
}

// NewPostCache creates a cache whose entries expire after ttl.
func NewPostCache(ttl time.Duration) *PostCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PostCache{cache: gocache.New(ttl, ttl*2)}
}

// Published returns the cached list, calling load on a miss.
// POST: a failed load is returned and nothing is cached
func (c *PostCache) Published(ctx context.Context, load func(context.Context) ([]blog.Post, error)) ([]blog.Post, error) {
	if v, ok := c.cache.Get(publishedKey); ok {
		if posts, ok := v.([]blog.Post); ok {
			c.count(true)
			return posts, nil
		}
	}
	c.count(false)
	posts, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(publishedKey, posts)
	return posts, nil
}

// Invalidate drops every cached entry. Called after any blog write.
func (c *PostCache) Invalidate() {
	c.cache.Flush()
}

// Stats returns a snapshot of the counters.
func (c *PostCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.cache.ItemCount()
	return s
}

func (c *PostCache) count(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
}
