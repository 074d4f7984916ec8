package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRateLimitDecision is a no-op.
func (n *NoopRecorder) IncRateLimitDecision(route string, allowed bool) {}

// IncFactFetch is a no-op.
func (n *NoopRecorder) IncFactFetch(outcome string) {}

// ObserveFactFetchDuration is a no-op.
func (n *NoopRecorder) ObserveFactFetchDuration(duration time.Duration) {}

// IncStatsEvent is a no-op.
func (n *NoopRecorder) IncStatsEvent(outcome string) {}
