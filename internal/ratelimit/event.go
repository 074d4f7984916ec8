package ratelimit

import (
	"context"
	"time"
)

// Event describes one rate limit decision.
type Event struct {
	Route   string
	Client  string
	Allowed bool
	At      time.Time
}

// EventRecorder persists decision statistics. Recording is best-effort;
// callers must not fail a request because Record returned an error.
type EventRecorder interface {
	Record(ctx context.Context, ev Event) error
}
