// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Fact fetch outcomes.
const (
	FactOutcomeSuccess = "success"
	FactOutcomeFailed  = "failed"
)

// Rate limit statistics outcomes.
const (
	StatsOutcomeRecorded = "recorded"
	StatsOutcomeDropped  = "dropped"
	StatsOutcomeFailed   = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Rate limiting
	IncRateLimitDecision(route string, allowed bool)

	// External fact API
	IncFactFetch(outcome string) // outcome: "success" or "failed"
	ObserveFactFetchDuration(duration time.Duration)

	// Rate limit statistics sink
	IncStatsEvent(outcome string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
