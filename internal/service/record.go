// Package service provides cache-aside access to stored records.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enterprise-auth/appmodel/internal/cache"
	"github.com/enterprise-auth/appmodel/internal/metrics"
	"github.com/enterprise-auth/appmodel/internal/model"
	"github.com/enterprise-auth/appmodel/internal/record"
	"github.com/enterprise-auth/appmodel/internal/repository"
)

// Service errors.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidID      = errors.New("record id must not be empty")
	ErrNilRecord      = errors.New("record must not be nil")
)

// RecordStore is the durable record storage.
type RecordStore interface {
	SaveRecord(ctx context.Context, rec *repository.StoredRecord) error
	GetRecord(ctx context.Context, kind, id string) (*repository.StoredRecord, error)
	GetRecords(ctx context.Context, kind string, ids []string) ([]*repository.StoredRecord, error)
	ListRecords(ctx context.Context, kind string, limit int) ([]*repository.StoredRecord, error)
	DeleteRecord(ctx context.Context, kind, id string) error
}

// RecordCache is the optional cache in front of RecordStore.
type RecordCache interface {
	GetRecord(ctx context.Context, kind, id string) (*cache.CachedRecord, error)
	SetRecord(ctx context.Context, kind, id string, rec *cache.CachedRecord, ttl time.Duration) error
	DeleteRecord(ctx context.Context, kind, id string) error
	IsNegativelyCached(ctx context.Context, kind, id string) (bool, error)
	SetNegativeCache(ctx context.Context, kind, id string) error
}

// RecordService stores records by kind and id and reads them back through
// the cache.
type RecordService struct {
	store   RecordStore
	cache   RecordCache
	ttl     time.Duration
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewRecordService creates a new RecordService. c may be nil to run
// without a cache.
func NewRecordService(store RecordStore, c RecordCache, ttl time.Duration, logger *slog.Logger, recorder metrics.Recorder) *RecordService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordService{
		store:   store,
		cache:   c,
		ttl:     ttl,
		logger:  logger.With("component", "record.service"),
		metrics: recorder,
	}
}

// StoredMeta describes a record as persisted.
type StoredMeta struct {
	Kind      model.Kind
	ID        string
	Hash      uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Put encodes rec and stores it under its registered kind and id,
// replacing any previous value.
func (s *RecordService) Put(ctx context.Context, id string, rec any) (*StoredMeta, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if rec == nil {
		return nil, ErrNilRecord
	}

	kind, err := model.KindOf(rec)
	if err != nil {
		return nil, err
	}

	body, err := record.Marshal(rec)
	if err != nil {
		return nil, err
	}
	// A record that cannot be read back must never be stored.
	if _, err := model.DecodeJSON(kind, body); err != nil {
		return nil, err
	}

	hash := record.Hash(rec)
	stored := &repository.StoredRecord{
		Kind:     string(kind),
		ID:       id,
		Body:     body,
		BodyHash: formatHash(hash),
	}
	if err := s.store.SaveRecord(ctx, stored); err != nil {
		return nil, err
	}
	s.metrics.IncRecordSaved(string(kind))

	if s.cache != nil {
		cached := &cache.CachedRecord{Body: body, BodyHash: stored.BodyHash}
		if err := s.cache.SetRecord(ctx, string(kind), id, cached, s.ttl); err != nil {
			// The stale entry must not outlive the write.
			s.logger.Warn("cache set failed", "kind", kind, "id", id, "error", err)
			if err := s.cache.DeleteRecord(ctx, string(kind), id); err != nil {
				s.logger.Warn("cache delete failed", "kind", kind, "id", id, "error", err)
			}
		}
	}

	return &StoredMeta{
		Kind:      kind,
		ID:        id,
		Hash:      hash,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

// Get returns the record of kind stored under id. The value is the record
// itself (for example model.APIKey), not a pointer.
func (s *RecordService) Get(ctx context.Context, kind model.Kind, id string) (any, error) {
	if !kind.IsKnown() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}
	if id == "" {
		return nil, ErrInvalidID
	}

	start := time.Now()
	defer func() {
		s.metrics.ObserveRecordLoadDuration(time.Since(start))
	}()

	if v, ok := s.fromCache(ctx, kind, id); ok {
		return v, nil
	}
	if s.cache != nil {
		if neg, err := s.cache.IsNegativelyCached(ctx, string(kind), id); err == nil && neg {
			return nil, ErrRecordNotFound
		}
	}

	stored, err := s.store.GetRecord(ctx, string(kind), id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			if s.cache != nil {
				_ = s.cache.SetNegativeCache(ctx, string(kind), id)
			}
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	v, err := s.decodeStored(stored)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached := &cache.CachedRecord{Body: stored.Body, BodyHash: stored.BodyHash}
		if err := s.cache.SetRecord(ctx, string(kind), id, cached, s.ttl); err != nil {
			s.logger.Warn("cache backfill failed", "kind", kind, "id", id, "error", err)
		}
	}

	return v, nil
}

// fromCache returns a decoded cache hit. Cache errors and undecodable
// entries are logged and treated as misses.
func (s *RecordService) fromCache(ctx context.Context, kind model.Kind, id string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}

	cached, err := s.cache.GetRecord(ctx, string(kind), id)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncRecordCacheMiss()
		} else {
			s.logger.Warn("cache get failed", "kind", kind, "id", id, "error", err)
		}
		return nil, false
	}

	v, err := model.DecodeJSON(kind, cached.Body)
	if err != nil {
		s.metrics.IncDecodeFailure(string(kind))
		s.logger.Warn("dropping undecodable cache entry", "kind", kind, "id", id, "error", err)
		_ = s.cache.DeleteRecord(ctx, string(kind), id)
		return nil, false
	}

	s.metrics.IncRecordCacheHit()
	return v, true
}

func (s *RecordService) decodeStored(stored *repository.StoredRecord) (any, error) {
	kind := model.Kind(stored.Kind)

	v, err := model.DecodeJSON(kind, stored.Body)
	if err != nil {
		s.metrics.IncDecodeFailure(stored.Kind)
		s.logger.Error("stored record does not decode", "kind", kind, "id", stored.ID, "error", err)
		return nil, fmt.Errorf("record %s/%s: %w", kind, stored.ID, err)
	}

	if want := formatHash(record.Hash(v)); stored.BodyHash != "" && stored.BodyHash != want {
		s.logger.Warn("record hash mismatch",
			"kind", kind,
			"id", stored.ID,
			"stored_hash", stored.BodyHash,
			"computed_hash", want,
		)
	}
	return v, nil
}

// GetMany returns the stored records of kind among ids, in id order.
// Missing ids are skipped. The cache is not consulted.
func (s *RecordService) GetMany(ctx context.Context, kind model.Kind, ids []string) ([]any, error) {
	if !kind.IsKnown() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}

	stored, err := s.store.GetRecords(ctx, string(kind), ids)
	if err != nil {
		return nil, err
	}
	return s.decodeAll(stored)
}

// List returns up to limit records of kind, most recently updated first.
func (s *RecordService) List(ctx context.Context, kind model.Kind, limit int) ([]any, error) {
	if !kind.IsKnown() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}

	stored, err := s.store.ListRecords(ctx, string(kind), limit)
	if err != nil {
		return nil, err
	}
	return s.decodeAll(stored)
}

func (s *RecordService) decodeAll(stored []*repository.StoredRecord) ([]any, error) {
	out := make([]any, 0, len(stored))
	for _, st := range stored {
		v, err := s.decodeStored(st)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Delete removes a record from the store and the cache.
func (s *RecordService) Delete(ctx context.Context, kind model.Kind, id string) error {
	if !kind.IsKnown() {
		return fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}

	if err := s.store.DeleteRecord(ctx, string(kind), id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return err
	}
	s.metrics.IncRecordDeleted(string(kind))

	if s.cache != nil {
		if err := s.cache.DeleteRecord(ctx, string(kind), id); err != nil {
			s.logger.Warn("cache delete failed", "kind", kind, "id", id, "error", err)
		}
	}
	return nil
}

// GetAs reads the record stored under id as a T.
func GetAs[T any](ctx context.Context, s *RecordService, id string) (T, error) {
	var zero T

	kind, err := model.KindFor[T]()
	if err != nil {
		return zero, err
	}

	v, err := s.Get(ctx, kind, id)
	if err != nil {
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("record %s/%s has type %T", kind, id, v)
	}
	return out, nil
}

func formatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}
