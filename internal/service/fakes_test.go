package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/enterprise-auth/appmodel/internal/cache"
	"github.com/enterprise-auth/appmodel/internal/model"
	"github.com/enterprise-auth/appmodel/internal/repository"
)

var baseTime = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

type memStore struct {
	mu      sync.Mutex
	rows    map[string]*repository.StoredRecord
	seq     map[string]int
	next    int
	gets    int
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]*repository.StoredRecord{}, seq: map[string]int{}}
}

func storeKey(kind, id string) string { return kind + "/" + id }

func copyStored(r *repository.StoredRecord) *repository.StoredRecord {
	c := *r
	c.Body = slices.Clone(r.Body)
	return &c
}

func (m *memStore) SaveRecord(_ context.Context, rec *repository.StoredRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	k := storeKey(rec.Kind, rec.ID)
	m.next++
	now := baseTime.Add(time.Duration(m.next) * time.Second)
	if prev, ok := m.rows[k]; ok {
		rec.CreatedAt = prev.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.rows[k] = copyStored(rec)
	m.seq[k] = m.next
	return nil
}

func (m *memStore) GetRecord(_ context.Context, kind, id string) (*repository.StoredRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	r, ok := m.rows[storeKey(kind, id)]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return copyStored(r), nil
}

func (m *memStore) GetRecords(_ context.Context, kind string, ids []string) ([]*repository.StoredRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*repository.StoredRecord
	for _, id := range ids {
		if r, ok := m.rows[storeKey(kind, id)]; ok {
			out = append(out, copyStored(r))
		}
	}
	return out, nil
}

func (m *memStore) ListRecords(_ context.Context, kind string, limit int) ([]*repository.StoredRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for k, r := range m.rows {
		if r.Kind == kind {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int { return m.seq[b] - m.seq[a] })
	if len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]*repository.StoredRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, copyStored(m.rows[k]))
	}
	return out, nil
}

func (m *memStore) DeleteRecord(_ context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := storeKey(kind, id)
	if _, ok := m.rows[k]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(m.rows, k)
	delete(m.seq, k)
	return nil
}

// put writes a raw body, bypassing encoding.
func (m *memStore) put(kind, id, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[storeKey(kind, id)] = &repository.StoredRecord{Kind: kind, ID: id, Body: []byte(body)}
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]cache.CachedRecord
	neg     map[string]bool
	getErr  error
	setErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]cache.CachedRecord{}, neg: map[string]bool{}}
}

func (c *memCache) GetRecord(_ context.Context, kind, id string) (*cache.CachedRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.getErr != nil {
		return nil, c.getErr
	}
	e, ok := c.entries[storeKey(kind, id)]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	e.Body = slices.Clone(e.Body)
	return &e, nil
}

func (c *memCache) SetRecord(_ context.Context, kind, id string, rec *cache.CachedRecord, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.setErr != nil {
		return c.setErr
	}
	k := storeKey(kind, id)
	c.entries[k] = cache.CachedRecord{Body: slices.Clone(rec.Body), BodyHash: rec.BodyHash}
	delete(c.neg, k)
	return nil
}

func (c *memCache) DeleteRecord(_ context.Context, kind, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := storeKey(kind, id)
	delete(c.entries, k)
	delete(c.neg, k)
	return nil
}

func (c *memCache) IsNegativelyCached(_ context.Context, kind, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.neg[storeKey(kind, id)], nil
}

func (c *memCache) SetNegativeCache(_ context.Context, kind, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.neg[storeKey(kind, id)] = true
	return nil
}

func (c *memCache) has(kind, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[storeKey(kind, id)]
	return ok
}

type memSecrets struct {
	mu      sync.Mutex
	secrets []*repository.APIKeySecret
}

func (m *memSecrets) CreateAPIKeySecret(_ context.Context, s *repository.APIKeySecret) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *s
	c.Scopes = slices.Clone(s.Scopes)
	m.secrets = append(m.secrets, &c)
	return nil
}

func (m *memSecrets) GetAPIKeySecretsByPrefix(_ context.Context, prefix string) ([]*repository.APIKeySecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*repository.APIKeySecret
	for _, s := range m.secrets {
		if s.KeyPrefix == prefix && s.RevokedAt == nil {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memSecrets) RevokeAPIKeySecret(_ context.Context, keyID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.secrets {
		if s.KeyID == keyID && s.RevokedAt == nil {
			s.RevokedAt = &at
			return nil
		}
	}
	return repository.ErrAPIKeyNotFound
}

var errCacheDown = errors.New("redis: connection refused")

func sampleKey(id string) model.APIKey {
	desc := "ingest worker"
	return model.APIKey{
		ID:          id,
		Name:        "worker " + id,
		Description: &desc,
		KeyPrefix:   "sk_live_ab",
		Scopes:      []model.APIKeyScope{model.ScopeRead, model.ScopeWrite},
		RateLimit:   1000,
		AllowedIPs:  []string{"10.0.0.1"},
		IsActive:    true,
		UsageCount:  3,
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
}
