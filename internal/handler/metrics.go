package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/hngstage/profile-api/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	routes := make([]string, 0, len(snap.RateLimit))
	for route := range snap.RateLimit {
		routes = append(routes, route)
	}
	sort.Strings(routes)

	writeMetric(w, "# TYPE profile_api_ratelimit_decisions_total counter\n")
	for _, route := range routes {
		c := snap.RateLimit[route]
		writeMetric(w, "profile_api_ratelimit_decisions_total{route=%q,decision=\"allowed\"} %d\n", route, c.Allowed)
		writeMetric(w, "profile_api_ratelimit_decisions_total{route=%q,decision=\"denied\"} %d\n", route, c.Denied)
	}

	writeMetric(w, "# TYPE profile_api_fact_fetch_total counter\n")
	writeMetric(w, "profile_api_fact_fetch_total{status=\"success\"} %d\n", snap.FactFetchSuccess)
	writeMetric(w, "profile_api_fact_fetch_total{status=\"failed\"} %d\n", snap.FactFetchFailed)
	writeMetric(w, "profile_api_fact_fetch_duration_seconds_count %d\n", snap.FactFetchDurationCount)
	writeMetric(w, "profile_api_fact_fetch_duration_seconds_sum %.6f\n", float64(snap.FactFetchDurationTotal)/1e9)

	writeMetric(w, "# TYPE profile_api_ratelimit_stats_events_total counter\n")
	writeMetric(w, "profile_api_ratelimit_stats_events_total{status=\"recorded\"} %d\n", snap.StatsRecorded)
	writeMetric(w, "profile_api_ratelimit_stats_events_total{status=\"dropped\"} %d\n", snap.StatsDropped)
	writeMetric(w, "profile_api_ratelimit_stats_events_total{status=\"failed\"} %d\n", snap.StatsFailed)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
