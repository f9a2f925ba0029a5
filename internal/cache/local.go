package cache

import (
	"slices"
	"strings"
	"time"
)

// The local tier stores copies so callers can never mutate a cached body.

func (c *Cache) getLocal(key string) (*CachedRecord, bool) {
	if c.local == nil {
		return nil, false
	}
	v, ok := c.local.Get(key)
	if !ok {
		return nil, false
	}
	rec := v.(CachedRecord)
	rec.Body = slices.Clone(rec.Body)
	return &rec, true
}

func (c *Cache) setLocal(key string, rec *CachedRecord, ttl time.Duration) {
	if c.local == nil || ttl <= 0 {
		return
	}
	c.local.Set(key, CachedRecord{Body: slices.Clone(rec.Body), BodyHash: rec.BodyHash}, ttl)
}

func (c *Cache) deleteLocal(key string) {
	if c.local != nil {
		c.local.Delete(key)
	}
}

func (c *Cache) deleteLocalKind(kind string) {
	if c.local == nil {
		return
	}
	prefix := recordKeyPrefix + kind + ":"
	for key := range c.local.Items() {
		if strings.HasPrefix(key, prefix) {
			c.local.Delete(key)
		}
	}
}
