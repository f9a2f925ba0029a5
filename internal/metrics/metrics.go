// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for record access.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Cache metrics
	IncRecordCacheHit()
	IncRecordCacheMiss()
	ObserveRecordLoadDuration(duration time.Duration)

	// Storage metrics, labelled by record kind
	IncRecordSaved(kind string)
	IncRecordDeleted(kind string)
	IncDecodeFailure(kind string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
