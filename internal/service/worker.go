package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/docreview/docreview/internal/config"
	"github.com/docreview/docreview/internal/port/queue"
)

// WorkerPool consumes task identifiers from the queue and executes the
// review pipeline with bounded concurrency. Each task runs under its own
// deadline, detached from the delivery context so an HTTP disconnect or
// broker redelivery timeout cannot abort a pipeline mid-flight.
type WorkerPool struct {
	queue   queue.Queue
	reviews *ReviewService
	sem     *semaphore.Weighted
	workers int
	timeout time.Duration
}

// NewWorkerPool creates a pool sized by cfg.Workers.
func NewWorkerPool(q queue.Queue, reviews *ReviewService, cfg config.Pipeline) *WorkerPool {
	return &WorkerPool{
		queue:   q,
		reviews: reviews,
		sem:     semaphore.NewWeighted(int64(cfg.Workers)),
		workers: cfg.Workers,
		timeout: cfg.TaskTimeout,
	}
}

// Start subscribes the pool to the queue. The returned function cancels
// the subscription; in-flight tasks run to completion or timeout.
func (p *WorkerPool) Start(ctx context.Context) (func(), error) {
	cancel, err := p.queue.Subscribe(ctx, p.handle)
	if err != nil {
		return nil, fmt.Errorf("subscribe worker pool: %w", err)
	}
	slog.Info("worker pool started", "workers", p.workers)
	return cancel, nil
}

// handle acquires a worker slot and runs the pipeline asynchronously.
// Blocking on the semaphore here applies backpressure to the queue
// consumer instead of piling up goroutines.
func (p *WorkerPool) handle(ctx context.Context, taskID string) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire worker slot: %w", err)
	}

	go func() {
		defer p.sem.Release(1)

		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()

		p.reviews.Execute(runCtx, taskID)
	}()

	return nil
}
