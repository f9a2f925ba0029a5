package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRecordCacheHit is a no-op.
func (n *NoopRecorder) IncRecordCacheHit() {}

// IncRecordCacheMiss is a no-op.
func (n *NoopRecorder) IncRecordCacheMiss() {}

// ObserveRecordLoadDuration is a no-op.
func (n *NoopRecorder) ObserveRecordLoadDuration(duration time.Duration) {}

// IncRecordSaved is a no-op.
func (n *NoopRecorder) IncRecordSaved(kind string) {}

// IncRecordDeleted is a no-op.
func (n *NoopRecorder) IncRecordDeleted(kind string) {}

// IncDecodeFailure is a no-op.
func (n *NoopRecorder) IncDecodeFailure(kind string) {}
