// Package cache provides the Redis-backed resolved-URL cache.
//
// Resolution is pure computation, but it sits on the serving hot path behind
// project lookups; caching the final URL string keyed by the full input set
// removes the store round-trip for repeated links.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "resolve:url:"

// Cache stores resolved URLs with a TTL. A nil *Cache is a valid no-op
// cache, so callers never branch on whether Redis is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a resolved-URL cache over an existing Redis client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key builds a cache key from every input that affects the resolved URL.
// Stale entries after project mutations age out via TTL.
func Key(parts ...string) string {
	return keyPrefix + strings.Join(parts, "\x1f")
}

// Get returns the cached URL and whether it was present. Infrastructure
// errors degrade to a miss; the caller recomputes.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	if c == nil || c.client == nil {
		return "", false, nil
	}
	url, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve cache get: %w", err)
	}
	return url, true, nil
}

// Set stores a resolved URL under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key, url string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, key, url, c.ttl).Err(); err != nil {
		return fmt.Errorf("resolve cache set: %w", err)
	}
	return nil
}
