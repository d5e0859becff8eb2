// Package worker executes queued analysis jobs: it owns the job lifecycle
// transitions, the retry policy, and cleanup of input files.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/jonathan/findoc-analyzer/internal/pipeline"
	"github.com/jonathan/findoc-analyzer/internal/store"
)

// PipelineRunner is the analysis entry point. *pipeline.Runner is the
// production implementation.
type PipelineRunner interface {
	Run(ctx context.Context, query, filePath string) (*pipeline.Result, error)
}

// RetryPolicy bounds re-execution of a failed job.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
}

// DefaultRetryPolicy matches the job contract: two retries, ten seconds
// apart.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 2, Delay: 10 * time.Second}

// Executor runs one job at a time through the pipeline and records the
// outcome in the ledger.
type Executor struct {
	jobs    store.Store
	outputs *store.OutputStore
	runner  PipelineRunner
	retry   RetryPolicy
	logger  *slog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates a job executor. A nil logger defaults to
// slog.Default.
func NewExecutor(jobs store.Store, outputs *store.OutputStore, runner PipelineRunner, retry RetryPolicy, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		jobs:    jobs,
		outputs: outputs,
		runner:  runner,
		retry:   retry,
		logger:  logger,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Execute runs the job to completion, failure, or retry exhaustion. It is
// safe to call again for a job that previously failed: the same input file
// is re-read and the result and error fields are overwritten.
func (e *Executor) Execute(ctx context.Context, jobID string) error {
	var lastErr error
	for attempt := 0; attempt <= e.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			e.logger.Info("retrying job", "job_id", jobID, "attempt", attempt+1, "delay", e.retry.Delay)
			if err := e.sleep(ctx, e.retry.Delay); err != nil {
				return err
			}
		}

		lastErr = e.attempt(ctx, jobID)
		if lastErr == nil {
			return nil
		}
		// The job record was deleted between enqueue and pickup. Nothing to
		// run, nothing to record.
		if errors.Is(lastErr, store.ErrNotFound) {
			e.logger.Warn("job record missing, skipping", "job_id", jobID)
			return nil
		}
		e.logger.Warn("job attempt failed", "job_id", jobID, "attempt", attempt+1, "error", lastErr)
	}

	e.logger.Error("job failed after retries", "job_id", jobID, "retries", e.retry.MaxRetries, "error", lastErr)
	return lastErr
}

// attempt performs one full pass: mark processing, run the pipeline, and
// record the outcome. On success the input file is removed; on failure it
// is kept so a retry can re-read it.
func (e *Executor) attempt(ctx context.Context, jobID string) error {
	job, err := e.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	// Persist the pickup before running so a crash mid-run is observable
	// as stuck-in-processing rather than silently lost.
	if err := e.jobs.SetProcessing(ctx, jobID); err != nil {
		return err
	}

	res, err := e.runner.Run(ctx, job.Query, job.FilePath)
	if err != nil {
		if setErr := e.jobs.SetFailed(ctx, jobID, err.Error()); setErr != nil {
			e.logger.Error("failed to record job failure", "job_id", jobID, "error", setErr)
		}
		return err
	}

	outputPath, err := e.outputs.Save(jobID, res.Final)
	if err != nil {
		if setErr := e.jobs.SetFailed(ctx, jobID, err.Error()); setErr != nil {
			e.logger.Error("failed to record job failure", "job_id", jobID, "error", setErr)
		}
		return err
	}

	if err := e.jobs.SetDone(ctx, jobID, res.Final, outputPath); err != nil {
		return err
	}

	if job.FilePath != "" {
		if err := os.Remove(job.FilePath); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("failed to remove input file", "job_id", jobID, "path", job.FilePath, "error", err)
		}
	}

	e.logger.Info("job completed", "job_id", jobID, "stages", len(res.Stages), "elapsed", res.Elapsed.Round(time.Millisecond))
	return nil
}
