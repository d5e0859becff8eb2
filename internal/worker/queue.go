package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 2

// DefaultQueueSize bounds how many jobs can wait for a worker.
const DefaultQueueSize = 64

// Pool dispatches queued job IDs to a fixed set of workers. Jobs run
// independently and in parallel across IDs; within one job stage execution
// stays sequential inside the Executor.
type Pool struct {
	executor *Executor
	jobs     chan string
	workers  int
	logger   *slog.Logger
}

// NewPool creates a worker pool. Non-positive sizes fall back to defaults.
func NewPool(executor *Executor, workers, queueSize int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		executor: executor,
		jobs:     make(chan string, queueSize),
		workers:  workers,
		logger:   logger,
	}
}

// Enqueue submits a job ID for execution. It fails fast when the queue is
// full rather than blocking the caller.
func (p *Pool) Enqueue(jobID string) error {
	select {
	case p.jobs <- jobID:
		return nil
	default:
		return fmt.Errorf("job queue full (%d pending)", cap(p.jobs))
	}
}

// Run processes jobs until ctx is cancelled. Job failures are recorded in
// the ledger by the Executor and do not stop the pool.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < p.workers; i++ {
		worker := i
		g.Go(func() error {
			p.logger.Debug("worker started", "worker", worker)
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case jobID := <-p.jobs:
					if err := p.executor.Execute(ctx, jobID); err != nil {
						p.logger.Error("job execution failed", "worker", worker, "job_id", jobID, "error", err)
					}
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
