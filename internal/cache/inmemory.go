package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultExpiration = 5 * time.Minute
	cleanupInterval   = 10 * time.Minute
)

type inMemoryCache struct {
	cache *gocache.Cache
}

var (
	inMemoryInstance *inMemoryCache
	inMemoryOnce     sync.Once
)

// NewInMemoryCache returns the process-wide in-memory cache.
func NewInMemoryCache() Cache {
	inMemoryOnce.Do(func() {
		inMemoryInstance = &inMemoryCache{
			cache: gocache.New(defaultExpiration, cleanupInterval),
		}
	})
	return inMemoryInstance
}

func (c *inMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *inMemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration <= 0 {
		expiration = defaultExpiration
	}
	c.cache.Set(key, value, expiration)
}

func (c *inMemoryCache) Delete(ctx context.Context, key string) {
	c.cache.Delete(key)
}

func (c *inMemoryCache) DeleteByPrefix(ctx context.Context, prefix string) {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}

func (c *inMemoryCache) Flush(ctx context.Context) {
	c.cache.Flush()
}
