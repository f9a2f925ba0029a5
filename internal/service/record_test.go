package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/enterprise-auth/appmodel/internal/cache"
	"github.com/enterprise-auth/appmodel/internal/metrics"
	"github.com/enterprise-auth/appmodel/internal/model"
	"github.com/enterprise-auth/appmodel/internal/record"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordTestEnv struct {
	svc     *RecordService
	store   *memStore
	cache   *memCache
	metrics *metrics.InMemoryRecorder
}

func newRecordTestEnv(withCache bool) *recordTestEnv {
	env := &recordTestEnv{store: newMemStore(), metrics: metrics.NewInMemory()}
	var c RecordCache
	if withCache {
		env.cache = newMemCache()
		c = env.cache
	}
	env.svc = NewRecordService(env.store, c, time.Minute, discardLogger(), env.metrics)
	return env
}

func TestRecordService_PutThenGet(t *testing.T) {
	for _, withCache := range []bool{true, false} {
		name := "no_cache"
		if withCache {
			name = "cache"
		}
		t.Run(name, func(t *testing.T) {
			env := newRecordTestEnv(withCache)
			ctx := context.Background()
			key := sampleKey("k1")

			meta, err := env.svc.Put(ctx, key.ID, key)
			if err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			if meta.Kind != "api_key" || meta.ID != "k1" {
				t.Errorf("meta = %+v", meta)
			}
			if meta.Hash != record.Hash(key) {
				t.Errorf("meta hash = %x, want %x", meta.Hash, record.Hash(key))
			}

			got, err := env.svc.Get(ctx, "api_key", "k1")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			gotKey, ok := got.(model.APIKey)
			if !ok {
				t.Fatalf("Get returned %T", got)
			}
			if !record.Equal(gotKey, key) {
				t.Errorf("Get = %+v, want %+v", gotKey, key)
			}

			snap := env.metrics.Snapshot()
			if snap.Saved["api_key"] != 1 {
				t.Errorf("saved = %d, want 1", snap.Saved["api_key"])
			}
			if snap.LoadDurationCount != 1 {
				t.Errorf("load count = %d, want 1", snap.LoadDurationCount)
			}
			if withCache && (snap.RecordCacheHits != 1 || env.store.gets != 0) {
				t.Errorf("expected a cache hit, hits=%d store gets=%d", snap.RecordCacheHits, env.store.gets)
			}
		})
	}
}

func TestRecordService_PutAcceptsPointer(t *testing.T) {
	env := newRecordTestEnv(true)
	key := sampleKey("k1")

	meta, err := env.svc.Put(context.Background(), "k1", &key)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if meta.Kind != "api_key" {
		t.Errorf("kind = %q, want api_key", meta.Kind)
	}
}

func TestRecordService_PutRejects(t *testing.T) {
	env := newRecordTestEnv(true)
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		rec     any
		wantErr error
	}{
		{"empty_id", "", sampleKey("k1"), ErrInvalidID},
		{"nil_record", "k1", nil, ErrNilRecord},
		{"unregistered_type", "k1", struct{ A int }{1}, model.ErrUnknownKind},
		{"invalid_enum", "k1", model.APIKey{Scopes: []model.APIKeyScope{"root"}}, record.ErrFieldType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Put(ctx, tt.id, tt.rec)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if len(env.store.rows) != 0 {
		t.Errorf("rejected records reached the store: %d rows", len(env.store.rows))
	}
}

func TestRecordService_GetUnknownKind(t *testing.T) {
	env := newRecordTestEnv(true)

	_, err := env.svc.Get(context.Background(), "link", "k1")
	if !errors.Is(err, model.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestRecordService_NegativeCache(t *testing.T) {
	env := newRecordTestEnv(true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := env.svc.Get(ctx, "api_key", "missing")
		if !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("attempt %d: expected ErrRecordNotFound, got %v", i, err)
		}
	}
	if env.store.gets != 1 {
		t.Errorf("store gets = %d, want 1", env.store.gets)
	}

	key := sampleKey("missing")
	if _, err := env.svc.Put(ctx, key.ID, key); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := env.svc.Get(ctx, "api_key", "missing"); err != nil {
		t.Fatalf("Get after Put failed: %v", err)
	}
}

func TestRecordService_BackfillsCache(t *testing.T) {
	env := newRecordTestEnv(true)
	ctx := context.Background()
	key := sampleKey("k1")

	if _, err := env.svc.Put(ctx, key.ID, key); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	_ = env.cache.DeleteRecord(ctx, "api_key", "k1")

	if _, err := env.svc.Get(ctx, "api_key", "k1"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !env.cache.has("api_key", "k1") {
		t.Error("store read did not backfill the cache")
	}
	if env.metrics.Snapshot().RecordCacheMisses != 1 {
		t.Errorf("misses = %d, want 1", env.metrics.Snapshot().RecordCacheMisses)
	}
}

func TestRecordService_UndecodableCacheEntry(t *testing.T) {
	env := newRecordTestEnv(true)
	ctx := context.Background()
	key := sampleKey("k1")

	if _, err := env.svc.Put(ctx, key.ID, key); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	_ = env.cache.SetRecord(ctx, "api_key", "k1", &cache.CachedRecord{Body: []byte(`{"id":1}`)}, time.Minute)

	got, err := env.svc.Get(ctx, "api_key", "k1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !record.Equal(got.(model.APIKey), key) {
		t.Errorf("Get = %+v, want %+v", got, key)
	}
	if n := env.metrics.Snapshot().DecodeFailures["api_key"]; n != 1 {
		t.Errorf("decode failures = %d, want 1", n)
	}
	if env.store.gets != 1 {
		t.Errorf("store gets = %d, want 1", env.store.gets)
	}
}

func TestRecordService_CacheErrorsFallBackToStore(t *testing.T) {
	env := newRecordTestEnv(true)
	ctx := context.Background()
	key := sampleKey("k1")

	env.cache.setErr = errCacheDown
	if _, err := env.svc.Put(ctx, key.ID, key); err != nil {
		t.Fatalf("Put with cache down failed: %v", err)
	}

	env.cache.getErr = errCacheDown
	got, err := env.svc.Get(ctx, "api_key", "k1")
	if err != nil {
		t.Fatalf("Get with cache down failed: %v", err)
	}
	if !record.Equal(got.(model.APIKey), key) {
		t.Errorf("Get = %+v, want %+v", got, key)
	}
}

func TestRecordService_StoredBodyDoesNotDecode(t *testing.T) {
	env := newRecordTestEnv(true)
	env.store.put("api_key", "bad", `{"id":"bad"}`)

	_, err := env.svc.Get(context.Background(), "api_key", "bad")
	if !errors.Is(err, record.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if env.cache.has("api_key", "bad") {
		t.Error("undecodable record was cached")
	}
	if n := env.metrics.Snapshot().DecodeFailures["api_key"]; n != 1 {
		t.Errorf("decode failures = %d, want 1", n)
	}
}

func TestRecordService_Delete(t *testing.T) {
	env := newRecordTestEnv(true)
	ctx := context.Background()
	key := sampleKey("k1")

	if _, err := env.svc.Put(ctx, key.ID, key); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := env.svc.Delete(ctx, "api_key", "k1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if env.cache.has("api_key", "k1") {
		t.Error("Delete left the cache entry")
	}
	if _, err := env.svc.Get(ctx, "api_key", "k1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound after delete, got %v", err)
	}
	if err := env.svc.Delete(ctx, "api_key", "k1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound on second delete, got %v", err)
	}
	if n := env.metrics.Snapshot().Deleted["api_key"]; n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}

func TestRecordService_GetManyAndList(t *testing.T) {
	env := newRecordTestEnv(true)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := env.svc.Put(ctx, id, sampleKey(id)); err != nil {
			t.Fatalf("Put(%s) failed: %v", id, err)
		}
	}

	many, err := env.svc.GetMany(ctx, "api_key", []string{"c", "missing", "a"})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if ids := keyIDs(many); !slices.Equal(ids, []string{"c", "a"}) {
		t.Errorf("GetMany ids = %v, want [c a]", ids)
	}

	list, err := env.svc.List(ctx, "api_key", 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if ids := keyIDs(list); !slices.Equal(ids, []string{"c", "b"}) {
		t.Errorf("List ids = %v, want [c b]", ids)
	}

	if _, err := env.svc.List(ctx, "nope", 10); !errors.Is(err, model.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestGetAs(t *testing.T) {
	env := newRecordTestEnv(true)
	ctx := context.Background()
	key := sampleKey("k1")

	if _, err := env.svc.Put(ctx, key.ID, key); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := GetAs[model.APIKey](ctx, env.svc, "k1")
	if err != nil {
		t.Fatalf("GetAs failed: %v", err)
	}
	if got.UsageCount != 3 || got.Name != key.Name {
		t.Errorf("GetAs = %+v", got)
	}

	if _, err := GetAs[model.Profile](ctx, env.svc, "k1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound for another kind, got %v", err)
	}
	if _, err := GetAs[struct{}](ctx, env.svc, "k1"); !errors.Is(err, model.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func keyIDs(vs []any) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.(model.APIKey).ID
	}
	return out
}
