package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RecordCacheHits     uint64
	RecordCacheMisses   uint64
	LoadDurationCount   uint64
	LoadDurationTotalNs int64
	Saved               map[string]uint64
	Deleted             map[string]uint64
	DecodeFailures      map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests and the CLI summary.
type InMemoryRecorder struct {
	recordCacheHits     uint64
	recordCacheMisses   uint64
	loadDurationCount   uint64
	loadDurationTotalNs int64

	mu             sync.Mutex
	saved          map[string]uint64
	deleted        map[string]uint64
	decodeFailures map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		saved:          map[string]uint64{},
		deleted:        map[string]uint64{},
		decodeFailures: map[string]uint64{},
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		RecordCacheHits:     atomic.LoadUint64(&m.recordCacheHits),
		RecordCacheMisses:   atomic.LoadUint64(&m.recordCacheMisses),
		LoadDurationCount:   atomic.LoadUint64(&m.loadDurationCount),
		LoadDurationTotalNs: atomic.LoadInt64(&m.loadDurationTotalNs),
		Saved:               maps.Clone(m.saved),
		Deleted:             maps.Clone(m.deleted),
		DecodeFailures:      maps.Clone(m.decodeFailures),
	}
}

// IncRecordCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncRecordCacheHit() {
	atomic.AddUint64(&m.recordCacheHits, 1)
}

// IncRecordCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncRecordCacheMiss() {
	atomic.AddUint64(&m.recordCacheMisses, 1)
}

// ObserveRecordLoadDuration records how long a Get took.
func (m *InMemoryRecorder) ObserveRecordLoadDuration(duration time.Duration) {
	atomic.AddUint64(&m.loadDurationCount, 1)
	atomic.AddInt64(&m.loadDurationTotalNs, duration.Nanoseconds())
}

// IncRecordSaved increments the saved counter for kind.
func (m *InMemoryRecorder) IncRecordSaved(kind string) {
	m.inc(m.saved, kind)
}

// IncRecordDeleted increments the deleted counter for kind.
func (m *InMemoryRecorder) IncRecordDeleted(kind string) {
	m.inc(m.deleted, kind)
}

// IncDecodeFailure increments the decode failure counter for kind.
func (m *InMemoryRecorder) IncDecodeFailure(kind string) {
	m.inc(m.decodeFailures, kind)
}

func (m *InMemoryRecorder) inc(counter map[string]uint64, kind string) {
	m.mu.Lock()
	counter[kind]++
	m.mu.Unlock()
}
