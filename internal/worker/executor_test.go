package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/findoc-analyzer/internal/pipeline"
	"github.com/jonathan/findoc-analyzer/internal/store"
)

// scriptedRunner fails a fixed number of times before succeeding.
type scriptedRunner struct {
	mu        sync.Mutex
	failures  int
	calls     int
	lastQuery string
	lastPath  string
}

func (r *scriptedRunner) Run(_ context.Context, query, filePath string) (*pipeline.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.lastQuery = query
	r.lastPath = filePath
	if r.calls <= r.failures {
		return nil, errors.New("stage analyze: model unavailable")
	}
	return &pipeline.Result{
		Final:    "final analysis",
		Stages:   []pipeline.StageResult{{Stage: "verify", Output: "final analysis"}},
		Selected: []string{"verify"},
	}, nil
}

type fixture struct {
	jobs     *store.SQLiteStore
	outputs  *store.OutputStore
	runner   *scriptedRunner
	executor *Executor
}

func newFixture(t *testing.T, failures int, policy RetryPolicy) *fixture {
	t.Helper()

	jobs, err := store.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = jobs.Close() })

	outputs, err := store.NewOutputStore(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, err)

	runner := &scriptedRunner{failures: failures}
	executor := NewExecutor(jobs, outputs, runner, policy, nil)
	executor.sleep = func(context.Context, time.Duration) error { return nil }

	return &fixture{jobs: jobs, outputs: outputs, runner: runner, executor: executor}
}

func (f *fixture) createJob(t *testing.T, inputPath string) *store.Job {
	t.Helper()
	job := &store.Job{
		ID:       uuid.NewString(),
		Query:    "what are the risks?",
		Filename: "report.pdf",
		FilePath: inputPath,
	}
	require.NoError(t, f.jobs.CreateJob(context.Background(), job))
	return job
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
	return path
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t, 0, DefaultRetryPolicy)
	input := writeInput(t)
	job := f.createJob(t, input)

	require.NoError(t, f.executor.Execute(context.Background(), job.ID))

	got, err := f.jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusDone, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "final analysis", *got.Result)
	require.NotNil(t, got.OutputFile)

	// Artifact content equals the recorded result.
	text, err := f.outputs.Read(job.ID)
	require.NoError(t, err)
	assert.Equal(t, *got.Result, text)

	// Input file is cleaned up on success.
	_, err = os.Stat(input)
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, "what are the risks?", f.runner.lastQuery)
	assert.Equal(t, input, f.runner.lastPath)
}

func TestExecute_RetriesThenSucceeds(t *testing.T) {
	f := newFixture(t, 1, RetryPolicy{MaxRetries: 2, Delay: time.Millisecond})
	input := writeInput(t)
	job := f.createJob(t, input)

	require.NoError(t, f.executor.Execute(context.Background(), job.ID))
	assert.Equal(t, 2, f.runner.calls)

	got, err := f.jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusDone, got.Status)
	// The error from the first attempt is cleared on success.
	assert.Nil(t, got.Error)
}

func TestExecute_ExhaustsRetries(t *testing.T) {
	f := newFixture(t, 10, RetryPolicy{MaxRetries: 2, Delay: time.Millisecond})
	input := writeInput(t)
	job := f.createJob(t, input)

	err := f.executor.Execute(context.Background(), job.ID)
	require.Error(t, err)
	// 1 initial attempt + 2 retries.
	assert.Equal(t, 3, f.runner.calls)

	got, err := f.jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "stage analyze: model unavailable", *got.Error)

	// Input file survives failure so a later retry can re-read it.
	_, statErr := os.Stat(input)
	assert.NoError(t, statErr)
}

func TestExecute_MissingJobIsNoOp(t *testing.T) {
	f := newFixture(t, 0, RetryPolicy{MaxRetries: 2, Delay: time.Millisecond})

	// A job deleted between enqueue and pickup is skipped without retries
	// and without surfacing an error.
	err := f.executor.Execute(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Equal(t, 0, f.runner.calls)
}

func TestPool_ProcessesEnqueuedJobs(t *testing.T) {
	f := newFixture(t, 0, DefaultRetryPolicy)
	input := writeInput(t)
	job := f.createJob(t, input)

	pool := NewPool(f.executor, 2, 8, nil)
	require.NoError(t, pool.Enqueue(job.ID))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	require.Eventually(t, func() bool {
		got, err := f.jobs.GetJob(context.Background(), job.ID)
		return err == nil && got.Status == store.StatusDone
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestPool_EnqueueFailsWhenFull(t *testing.T) {
	f := newFixture(t, 0, DefaultRetryPolicy)
	pool := NewPool(f.executor, 1, 1, nil)

	require.NoError(t, pool.Enqueue("a"))
	err := pool.Enqueue("b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")
}
