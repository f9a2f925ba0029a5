package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Cache key prefixes and TTLs.
const (
	recordKeyPrefix   = "record:"
	negCacheKeySuffix = ":neg"

	// DefaultRecordTTL is the TTL for cached records.
	DefaultRecordTTL = 10 * time.Minute

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = time.Minute
)

// ErrCacheMiss is returned when a record is not cached.
var ErrCacheMiss = errors.New("cache miss")

// CachedRecord is the cached form of a stored record.
type CachedRecord struct {
	Body     []byte // canonical JSON object
	BodyHash string
}

func recordKey(kind, id string) string {
	return recordKeyPrefix + kind + ":" + id
}

// ParseRecordKey splits a record cache key into kind and id.
func ParseRecordKey(key string) (kind, id string, ok bool) {
	rest, found := strings.CutPrefix(key, recordKeyPrefix)
	if !found {
		return "", "", false
	}
	kind, id, found = strings.Cut(rest, ":")
	if !found || kind == "" || id == "" {
		return "", "", false
	}
	return kind, id, true
}

// GetRecord retrieves a record from cache. Returns ErrCacheMiss if it is in
// neither tier.
func (c *Cache) GetRecord(ctx context.Context, kind, id string) (*CachedRecord, error) {
	key := recordKey(kind, id)

	if rec, ok := c.getLocal(key); ok {
		return rec, nil
	}

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	body, ok := result["body"]
	if !ok {
		return nil, ErrCacheMiss
	}

	rec := &CachedRecord{Body: []byte(body), BodyHash: result["body_hash"]}
	c.setLocal(key, rec, c.localTTL)
	return rec, nil
}

// SetRecord stores a record in both tiers. A non-positive ttl uses
// DefaultRecordTTL.
func (c *Cache) SetRecord(ctx context.Context, kind, id string, rec *CachedRecord, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultRecordTTL
	}
	key := recordKey(kind, id)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"body":      rec.Body,
		"body_hash": rec.BodyHash,
	})
	pipe.Expire(ctx, key, ttl)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache record: %w", err)
	}

	c.setLocal(key, rec, min(ttl, c.localTTL))
	return nil
}

// DeleteRecord removes a record and its negative entry from both tiers.
func (c *Cache) DeleteRecord(ctx context.Context, kind, id string) error {
	key := recordKey(kind, id)
	c.deleteLocal(key)

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete record from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a record is known to be absent.
func (c *Cache) IsNegativelyCached(ctx context.Context, kind, id string) (bool, error) {
	key := recordKey(kind, id) + negCacheKeySuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a record as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, kind, id string) error {
	key := recordKey(kind, id) + negCacheKeySuffix

	if err := c.client.SetEx(ctx, key, "", NegativeCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}

// InvalidateKind drops every cached record of kind and returns how many
// Redis keys were removed.
func (c *Cache) InvalidateKind(ctx context.Context, kind string) (int, error) {
	pattern := recordKeyPrefix + kind + ":*"

	var removed int
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan record keys: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete record keys: %w", err)
			}
			removed += int(n)
		}
		for _, k := range keys {
			c.deleteLocal(k)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.deleteLocalKind(kind)
	return removed, nil
}
