package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter_RejectsAfterLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		route string
		limit int
	}{
		{"root", "root", 10},
		{"profile", "profile", 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := newFakeClock()
			l := New(WithClock(clock.Now))
			rule := PerMinute(tt.limit)

			for i := 1; i <= tt.limit; i++ {
				res := l.Allow(tt.route, "10.0.0.1", rule)
				if !res.Allowed {
					t.Fatalf("request %d rejected, want allowed", i)
				}
				if res.Remaining != tt.limit-i {
					t.Errorf("request %d remaining = %d, want %d", i, res.Remaining, tt.limit-i)
				}
				clock.Advance(time.Second)
			}

			res := l.Allow(tt.route, "10.0.0.1", rule)
			if res.Allowed {
				t.Fatalf("request %d allowed, want rejected", tt.limit+1)
			}
			if !errors.Is(res.Err(), ErrLimitExceeded) {
				t.Errorf("Err() = %v, want ErrLimitExceeded", res.Err())
			}
			wantRetry := time.Minute - time.Duration(tt.limit)*time.Second
			if res.RetryAfter != wantRetry {
				t.Errorf("RetryAfter = %s, want %s", res.RetryAfter, wantRetry)
			}
		})
	}
}

func TestLimiter_WindowRollover(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := New(WithClock(clock.Now))
	rule := PerMinute(10)

	for i := 0; i < 10; i++ {
		l.Allow("root", "client", rule)
	}
	if l.Allow("root", "client", rule).Allowed {
		t.Fatal("11th request in window should be rejected")
	}

	clock.Advance(59 * time.Second)
	if l.Allow("root", "client", rule).Allowed {
		t.Fatal("request just before window end should be rejected")
	}

	clock.Advance(time.Second)
	res := l.Allow("root", "client", rule)
	if !res.Allowed {
		t.Fatal("first request of new window should be allowed")
	}
	if res.Remaining != 9 {
		t.Errorf("Remaining = %d, want 9", res.Remaining)
	}
}

func TestLimiter_DecidedAtUsesClock(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := New(WithClock(clock.Now))
	rule := PerMinute(1)

	if got := l.Allow("root", "client", rule).DecidedAt; !got.Equal(clock.Now()) {
		t.Errorf("allowed DecidedAt = %s, want %s", got, clock.Now())
	}

	clock.Advance(10 * time.Second)
	res := l.Allow("root", "client", rule)
	if res.Allowed {
		t.Fatal("second request should be rejected")
	}
	if !res.DecidedAt.Equal(clock.Now()) {
		t.Errorf("denied DecidedAt = %s, want %s", res.DecidedAt, clock.Now())
	}

	if got := l.Allow("root", "client", Rule{}).DecidedAt; !got.Equal(clock.Now()) {
		t.Errorf("unlimited DecidedAt = %s, want %s", got, clock.Now())
	}
}

func TestLimiter_IsolatesRoutesAndClients(t *testing.T) {
	t.Parallel()

	l := New(WithClock(newFakeClock().Now))
	rule := PerMinute(1)

	if !l.Allow("root", "a", rule).Allowed {
		t.Fatal("first request for (root, a) should be allowed")
	}
	if l.Allow("root", "a", rule).Allowed {
		t.Fatal("second request for (root, a) should be rejected")
	}
	if !l.Allow("profile", "a", rule).Allowed {
		t.Error("profile quota should be independent of root")
	}
	if !l.Allow("root", "b", rule).Allowed {
		t.Error("client b should have its own quota")
	}
}

func TestLimiter_SeparateInstancesDoNotShare(t *testing.T) {
	t.Parallel()

	rule := PerMinute(1)
	a, b := New(), New()

	a.Allow("root", "x", rule)
	if !b.Allow("root", "x", rule).Allowed {
		t.Error("limiters must not share counters")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	l := New()
	for i := 0; i < 100; i++ {
		if !l.Allow("root", "x", Rule{}).Allowed {
			t.Fatalf("request %d rejected by zero rule", i)
		}
	}
	if l.Len() != 0 {
		t.Errorf("unlimited rule should not track state, Len = %d", l.Len())
	}
}

func TestLimiter_ConcurrentBurst(t *testing.T) {
	t.Parallel()

	l := New()
	rule := PerMinute(5)

	var allowed, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("profile", "burst", rule).Allowed {
				atomic.AddInt64(&allowed, 1)
			} else {
				atomic.AddInt64(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != 5 {
		t.Errorf("allowed = %d, want exactly 5", allowed)
	}
	if rejected != 95 {
		t.Errorf("rejected = %d, want 95", rejected)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := New(WithClock(clock.Now))

	l.Allow("root", "a", PerMinute(10))
	clock.Advance(30 * time.Second)
	l.Allow("root", "b", PerMinute(10))

	clock.Advance(30 * time.Second)
	if removed := l.Cleanup(); removed != 1 {
		t.Errorf("Cleanup removed %d, want 1", removed)
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}

func TestLimiter_StartJanitor(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := New(WithClock(clock.Now), WithCleanupEvery(10*time.Millisecond))

	l.Allow("root", "a", PerMinute(1))
	clock.Advance(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.StartJanitor(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for l.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("janitor did not remove expired window")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
