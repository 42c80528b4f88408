package producers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// AsyncPublisher hands messages to a bounded ants pool so callers never wait on the broker.
// Publish only fails when the pool is saturated or closed; delivery errors are logged.
type AsyncPublisher struct {
	next    MessagePublisher
	pool    *ants.Pool
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewAsyncPublisher wraps next with a non-blocking pool of size workers.
// Each delivery gets its own timeout, detached from the caller's cancellation.
func NewAsyncPublisher(next MessagePublisher, size int, timeout time.Duration, logger *slog.Logger) (*AsyncPublisher, error) {
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher pool: %w", err)
	}
	return &AsyncPublisher{
		next:    next,
		pool:    pool,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (p *AsyncPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	detached := context.WithoutCancel(ctx)

	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()

		deliverCtx, cancel := context.WithTimeout(detached, p.timeout)
		defer cancel()

		if err := p.next.Publish(deliverCtx, key, value); err != nil {
			p.logger.Warn("Asynchronous publish failed", "key", key, "error", err)
		}
	})
	if err != nil {
		p.wg.Done()
		p.logger.Error("Failed to submit publish to worker pool", "key", key, "running_workers", p.pool.Running(), "error", err)
		return fmt.Errorf("failed to schedule publish: %w", err)
	}
	return nil
}

// Running returns the number of deliveries in flight
func (p *AsyncPublisher) Running() int {
	return p.pool.Running()
}

// Close waits for in-flight deliveries, releases the pool and closes the wrapped publisher
func (p *AsyncPublisher) Close() error {
	p.wg.Wait()
	p.logger.Info("Shutting down publisher pool")
	p.pool.Release()
	return p.next.Close()
}

// NopPublisher discards every message. Used when event publication is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func (NopPublisher) Close() error { return nil }
