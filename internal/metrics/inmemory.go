package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// RouteCounters holds rate-limit decisions for one route.
type RouteCounters struct {
	Allowed uint64
	Denied  uint64
}

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RateLimit map[string]RouteCounters

	FactFetchSuccess       uint64
	FactFetchFailed        uint64
	FactFetchDurationCount uint64
	FactFetchDurationTotal int64 // nanoseconds

	StatsRecorded uint64
	StatsDropped  uint64
	StatsFailed   uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	mu        sync.Mutex
	rateLimit map[string]RouteCounters

	factFetchSuccess       uint64
	factFetchFailed        uint64
	factFetchDurationCount uint64
	factFetchDurationTotal int64

	statsRecorded uint64
	statsDropped  uint64
	statsFailed   uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{rateLimit: make(map[string]RouteCounters)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	routes := make(map[string]RouteCounters, len(m.rateLimit))
	for k, v := range m.rateLimit {
		routes[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		RateLimit:              routes,
		FactFetchSuccess:       atomic.LoadUint64(&m.factFetchSuccess),
		FactFetchFailed:        atomic.LoadUint64(&m.factFetchFailed),
		FactFetchDurationCount: atomic.LoadUint64(&m.factFetchDurationCount),
		FactFetchDurationTotal: atomic.LoadInt64(&m.factFetchDurationTotal),
		StatsRecorded:          atomic.LoadUint64(&m.statsRecorded),
		StatsDropped:           atomic.LoadUint64(&m.statsDropped),
		StatsFailed:            atomic.LoadUint64(&m.statsFailed),
	}
}

// IncRateLimitDecision counts an allow or deny for route.
func (m *InMemoryRecorder) IncRateLimitDecision(route string, allowed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.rateLimit[route]
	if allowed {
		c.Allowed++
	} else {
		c.Denied++
	}
	m.rateLimit[route] = c
}

// IncFactFetch increments the counter for outcome. Unknown outcomes count as failures.
func (m *InMemoryRecorder) IncFactFetch(outcome string) {
	if outcome == FactOutcomeSuccess {
		atomic.AddUint64(&m.factFetchSuccess, 1)
		return
	}
	atomic.AddUint64(&m.factFetchFailed, 1)
}

// ObserveFactFetchDuration records the latency of one upstream call.
func (m *InMemoryRecorder) ObserveFactFetchDuration(duration time.Duration) {
	atomic.AddUint64(&m.factFetchDurationCount, 1)
	atomic.AddInt64(&m.factFetchDurationTotal, duration.Nanoseconds())
}

// IncStatsEvent counts the fate of one statistics event.
func (m *InMemoryRecorder) IncStatsEvent(outcome string) {
	switch outcome {
	case StatsOutcomeRecorded:
		atomic.AddUint64(&m.statsRecorded, 1)
	case StatsOutcomeDropped:
		atomic.AddUint64(&m.statsDropped, 1)
	default:
		atomic.AddUint64(&m.statsFailed, 1)
	}
}
