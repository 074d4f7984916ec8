// Package analytics ships rate limit decisions to the statistics sink
// off the request path.
package analytics

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hngstage/profile-api/internal/metrics"
	"github.com/hngstage/profile-api/internal/ratelimit"
)

const (
	// DefaultQueueSize is the number of events buffered before new ones are dropped.
	DefaultQueueSize = 1024

	// PublishTimeout is the max time to wait for one sink write.
	PublishTimeout = 100 * time.Millisecond
)

// ErrQueueFull is returned when an event is dropped because the buffer is full.
var ErrQueueFull = errors.New("analytics queue full")

// ErrClosed is returned for events recorded after shutdown started.
var ErrClosed = errors.New("analytics publisher closed")

// Publisher buffers rate limit events and writes them to a sink from a
// single background worker. It implements ratelimit.EventRecorder.
type Publisher struct {
	sink    ratelimit.EventRecorder
	logger  *slog.Logger
	metrics metrics.Recorder
	timeout time.Duration

	queue chan ratelimit.Event

	started  bool
	draining bool
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithQueueSize sets the buffer size.
func WithQueueSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.queue = make(chan ratelimit.Event, n)
		}
	}
}

// WithPublishTimeout sets the per-event sink timeout.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewPublisher creates a new event publisher writing to sink.
func NewPublisher(sink ratelimit.EventRecorder, logger *slog.Logger, recorder metrics.Recorder, opts ...Option) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		sink:    sink,
		logger:  logger.With("component", "analytics.publisher"),
		metrics: recorder,
		timeout: PublishTimeout,
		queue:   make(chan ratelimit.Event, DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Record enqueues ev without blocking the caller.
// A full buffer drops the event and returns ErrQueueFull.
// The draining check and the send share the lock with Shutdown, so every
// accepted event is queued before the final flush.
func (p *Publisher) Record(ctx context.Context, ev ratelimit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.draining {
		p.metrics.IncStatsEvent(metrics.StatsOutcomeDropped)
		return ErrClosed
	}

	select {
	case p.queue <- ev:
		return nil
	default:
		p.metrics.IncStatsEvent(metrics.StatsOutcomeDropped)
		return ErrQueueFull
	}
}

// Pending returns the number of buffered events.
func (p *Publisher) Pending() int {
	return len(p.queue)
}

// publish writes one event to the sink under the publish timeout.
func (p *Publisher) publish(ctx context.Context, ev ratelimit.Event) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.sink.Record(ctx, ev); err != nil {
		p.logger.Warn("failed to publish rate limit event",
			"route", ev.Route,
			"error", err,
		)
		p.metrics.IncStatsEvent(metrics.StatsOutcomeFailed)
		return
	}
	p.metrics.IncStatsEvent(metrics.StatsOutcomeRecorded)
}
