// Package ratelimit implements per-route, per-client fixed-window request quotas.
//
// State lives in process memory only. Each Limiter owns its counters, so
// separate instances never share quota.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLimitExceeded is reported for requests rejected by a Limiter.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Rule is a quota of Limit requests per Window. Limit <= 0 means unlimited.
type Rule struct {
	Limit  int
	Window time.Duration
}

// PerMinute returns a rule allowing n requests per minute.
func PerMinute(n int) Rule {
	return Rule{Limit: n, Window: time.Minute}
}

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	// DecidedAt is the limiter clock reading the decision was made at.
	DecidedAt time.Time
}

// Err returns ErrLimitExceeded for a rejected request and nil otherwise.
func (r Result) Err() error {
	if r.Allowed {
		return nil
	}
	return ErrLimitExceeded
}

type windowKey struct {
	route  string
	client string
}

type window struct {
	start time.Time
	end   time.Time
	count int
}

// Limiter counts requests per (route, client) in fixed windows.
type Limiter struct {
	mu           sync.Mutex
	windows      map[windowKey]*window
	now          func() time.Time
	cleanupEvery time.Duration
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithCleanupEvery sets the janitor interval.
func WithCleanupEvery(d time.Duration) Option {
	return func(l *Limiter) { l.cleanupEvery = d }
}

// New creates an empty Limiter.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		windows:      make(map[windowKey]*window),
		now:          time.Now,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow checks and consumes one request for client on route.
// The check and increment happen under one lock, so concurrent callers
// never admit more than rule.Limit requests per window.
func (l *Limiter) Allow(route, client string, rule Rule) Result {
	now := l.now()
	if rule.Limit <= 0 || rule.Window <= 0 {
		return Result{Allowed: true, DecidedAt: now}
	}

	key := windowKey{route: route, client: client}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.end) {
		w = &window{start: now, end: now.Add(rule.Window)}
		l.windows[key] = w
	}

	if w.count >= rule.Limit {
		return Result{
			Allowed:    false,
			Limit:      rule.Limit,
			Remaining:  0,
			ResetAt:    w.end,
			RetryAfter: w.end.Sub(now),
			DecidedAt:  now,
		}
	}

	w.count++
	return Result{
		Allowed:   true,
		Limit:     rule.Limit,
		Remaining: rule.Limit - w.count,
		ResetAt:   w.end,
		DecidedAt: now,
	}
}

// Cleanup removes windows that have already ended and returns how many were removed.
func (l *Limiter) Cleanup() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, w := range l.windows {
		if !now.Before(w.end) {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked windows.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// StartJanitor starts a goroutine that removes ended windows periodically.
// It stops when ctx is cancelled.
func (l *Limiter) StartJanitor(ctx context.Context) {
	if l.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(l.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}
