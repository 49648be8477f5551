// Package cache holds the Redis-backed response cache for the public
// menu. The menu is read by every visitor and changes rarely, so
// menu.list responses are cached whole and invalidated on any menu
// write. A nil Redis client disables caching entirely.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const menuKey = "cache:menu:list"

// MenuCache caches the serialized menu.list result.
type MenuCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMenuCache builds a cache over the given client. rdb may be nil,
// in which case every lookup misses and writes are no-ops.
func NewMenuCache(rdb *redis.Client, ttl time.Duration) *MenuCache {
	return &MenuCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached response body, if any.
func (c *MenuCache) Get(ctx context.Context) ([]byte, bool) {
	if c.rdb == nil {
		return nil, false
	}
	body, err := c.rdb.Get(ctx, menuKey).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores a response body for the configured TTL. Failures are
// ignored; the cache is an optimization, not a source of truth.
func (c *MenuCache) Set(ctx context.Context, body []byte) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Set(ctx, menuKey, body, c.ttl).Err()
}

// Invalidate drops the cached menu. Called after every menu write.
func (c *MenuCache) Invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, menuKey).Err()
}
