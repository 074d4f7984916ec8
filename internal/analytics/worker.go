package analytics

import (
	"context"
	"errors"
)

// Run drains the queue into the sink. Blocks until ctx is cancelled or
// Shutdown is called; buffered events are flushed before returning.
func (p *Publisher) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return errors.New("publisher already started")
	}
	p.started = true
	p.done = make(chan struct{})
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	defer close(p.done)

	p.logger.Info("analytics publisher started")

	for {
		select {
		case <-ctx.Done():
			flushed := p.flush()
			p.logger.Info("analytics publisher stopping", "flushed", flushed)
			return nil
		case ev := <-p.queue:
			p.publish(ctx, ev)
		}
	}
}

// flush writes whatever is still buffered, using a fresh context since
// the run context is already cancelled.
func (p *Publisher) flush() int {
	n := 0
	for {
		select {
		case ev := <-p.queue:
			p.publish(context.Background(), ev)
			n++
		default:
			return n
		}
	}
}

// Shutdown stops accepting events and waits for the buffer to be flushed.
// It implements server.ShutdownFunc for integration with graceful shutdown.
func (p *Publisher) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.draining = true
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	p.logger.Info("analytics publisher shutdown initiated", "pending", p.Pending())

	if cancel != nil {
		cancel()
	}

	select {
	case <-done:
		p.logger.Info("analytics publisher shutdown complete")
		return nil
	case <-ctx.Done():
		p.logger.Warn("analytics publisher shutdown timed out")
		return ctx.Err()
	}
}
