package cache

import (
	"context"
	"testing"
	"time"
)

func TestRecordKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind, id string
		want     string
	}{
		{"api_key", "01JAPIKEY", "record:api_key:01JAPIKEY"},
		{"notification", "ntf-1", "record:notification:ntf-1"},
		{"profile", "usr:42", "record:profile:usr:42"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := recordKey(tt.kind, tt.id); got != tt.want {
				t.Errorf("recordKey(%q, %q) = %q, want %q", tt.kind, tt.id, got, tt.want)
			}
		})
	}
}

func TestParseRecordKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		wantKind string
		wantID   string
		wantOK   bool
	}{
		{"simple", "record:api_key:abc", "api_key", "abc", true},
		{"id with colon", "record:profile:usr:42", "profile", "usr:42", true},
		{"round trip", recordKey("notification_batch", "bat_1"), "notification_batch", "bat_1", true},
		{"wrong prefix", "link:abc", "", "", false},
		{"no id", "record:api_key:", "", "", false},
		{"no separator", "record:api_key", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kind, id, ok := ParseRecordKey(tt.key)
			if kind != tt.wantKind || id != tt.wantID || ok != tt.wantOK {
				t.Errorf("ParseRecordKey(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.key, kind, id, ok, tt.wantKind, tt.wantID, tt.wantOK)
			}
		})
	}
}

// localOnly builds a cache whose Redis tier is never reached.
func localOnly(ttl time.Duration) *Cache {
	return &Cache{local: newLocal(ttl), localTTL: ttl}
}

func TestLocalTier_HitSkipsRedis(t *testing.T) {
	t.Parallel()

	c := localOnly(time.Minute)
	key := recordKey("api_key", "k1")
	c.setLocal(key, &CachedRecord{Body: []byte(`{"id":"k1"}`), BodyHash: "ab"}, time.Minute)

	got, err := c.GetRecord(context.Background(), "api_key", "k1")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if string(got.Body) != `{"id":"k1"}` || got.BodyHash != "ab" {
		t.Errorf("GetRecord = %+v", got)
	}
}

func TestLocalTier_ReturnsCopies(t *testing.T) {
	t.Parallel()

	c := localOnly(time.Minute)
	key := recordKey("api_key", "k1")
	body := []byte(`{"id":"k1"}`)
	c.setLocal(key, &CachedRecord{Body: body}, time.Minute)
	body[2] = 'X'

	first, _ := c.getLocal(key)
	first.Body[3] = 'Y'

	second, ok := c.getLocal(key)
	if !ok {
		t.Fatal("expected local hit")
	}
	if string(second.Body) != `{"id":"k1"}` {
		t.Errorf("cached body was mutated: %s", second.Body)
	}
}

func TestLocalTier_Disabled(t *testing.T) {
	t.Parallel()

	c := localOnly(0)
	key := recordKey("api_key", "k1")
	c.setLocal(key, &CachedRecord{Body: []byte(`{}`)}, time.Minute)
	if _, ok := c.getLocal(key); ok {
		t.Error("disabled local tier returned a hit")
	}
	c.deleteLocal(key)
	c.deleteLocalKind("api_key")
}

func TestLocalTier_DeleteKind(t *testing.T) {
	t.Parallel()

	c := localOnly(time.Minute)
	rec := &CachedRecord{Body: []byte(`{}`)}
	c.setLocal(recordKey("api_key", "a"), rec, time.Minute)
	c.setLocal(recordKey("api_key", "b"), rec, time.Minute)
	c.setLocal(recordKey("api_key_list", "a"), rec, time.Minute)

	c.deleteLocalKind("api_key")

	for _, k := range []string{recordKey("api_key", "a"), recordKey("api_key", "b")} {
		if _, ok := c.getLocal(k); ok {
			t.Errorf("%s survived deleteLocalKind", k)
		}
	}
	if _, ok := c.getLocal(recordKey("api_key_list", "a")); !ok {
		t.Error("deleteLocalKind removed a different kind")
	}
}
