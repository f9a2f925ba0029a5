// Package cache provides a two-tier record cache: an in-process map in
// front of Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Options configure the cache tiers.
type Options struct {
	// LocalTTL bounds how long an entry lives in process memory. Zero
	// disables the local tier.
	LocalTTL time.Duration
}

// Cache provides record cache access methods.
type Cache struct {
	client   *redis.Client
	local    *gocache.Cache
	localTTL time.Duration
}

// New creates a new Cache with a Redis client.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{
		client:   client,
		local:    newLocal(opts.LocalTTL),
		localTTL: opts.LocalTTL,
	}, nil
}

func newLocal(ttl time.Duration) *gocache.Cache {
	if ttl <= 0 {
		return nil
	}
	return gocache.New(ttl, 2*ttl)
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	if c.local != nil {
		c.local.Flush()
	}
	return c.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to Cache.
func (c *Cache) Client() *redis.Client {
	return c.client
}
