package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/findoc-analyzer/internal/agents"
	"github.com/jonathan/findoc-analyzer/internal/config"
	"github.com/jonathan/findoc-analyzer/internal/document"
	"github.com/jonathan/findoc-analyzer/internal/llm"
	"github.com/jonathan/findoc-analyzer/internal/pipeline"
	"github.com/jonathan/findoc-analyzer/internal/store"
	"github.com/jonathan/findoc-analyzer/internal/worker"
)

// runtime bundles the wired components shared by the CLI subcommands.
type runtime struct {
	cfg        *config.Config
	client     llm.Client
	agentsExec *agents.Executor
	jobs       store.Store
	outputs    *store.OutputStore
	runner     *pipeline.Runner
	executor   *worker.Executor
	pool       *worker.Pool
}

// buildRuntime wires the full stack from configuration: LLM client,
// document reader, pipeline runner, job store, and worker pool.
func buildRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	logger := slog.Default()

	llmCfg := llm.ConfigFromEnv()
	if cfg.Provider != "" {
		llmCfg.Provider = llm.Provider(cfg.Provider)
	}
	if cfg.Model != "" {
		llmCfg.Model = cfg.Model
	}

	var manifest *pipeline.Manifest
	if cfg.ManifestPath != "" {
		var err error
		manifest, err = pipeline.LoadManifest(cfg.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
		if manifest.Model != "" {
			llmCfg.Model = manifest.Model
		}
	}

	client, err := llm.NewClient(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}

	reader := document.NewReader(document.Config{Pdftotext: cfg.Pdftotext})

	executor := agents.NewExecutor(client, reader.ReadTool, logger)
	if cfg.CallTimeoutSecs > 0 {
		executor.SetCallTimeout(time.Duration(cfg.CallTimeoutSecs) * time.Second)
	}
	executor.SetClientFactory(func(model string) (llm.Client, error) {
		return llm.NewClient(ctx, llmCfg.WithModel(model))
	})

	runner := pipeline.NewRunner(executor, manifest, logger)

	jobs, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("open job store: %w", err)
	}

	outputs, err := store.NewOutputStore(cfg.OutputDir)
	if err != nil {
		_ = jobs.Close()
		_ = client.Close()
		return nil, err
	}

	retry := worker.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		Delay:      time.Duration(cfg.RetryDelaySecs) * time.Second,
	}
	jobExecutor := worker.NewExecutor(jobs, outputs, runner, retry, logger)
	pool := worker.NewPool(jobExecutor, cfg.Workers, cfg.QueueSize, logger)

	return &runtime{
		cfg:        cfg,
		client:     client,
		agentsExec: executor,
		jobs:       jobs,
		outputs:    outputs,
		runner:     runner,
		executor:   jobExecutor,
		pool:       pool,
	}, nil
}

// close releases the runtime's resources.
func (rt *runtime) close() {
	if err := rt.jobs.Close(); err != nil {
		slog.Warn("closing job store", "error", err)
	}
	if err := rt.agentsExec.Close(); err != nil {
		slog.Warn("closing model clients", "error", err)
	}
	if err := rt.client.Close(); err != nil {
		slog.Warn("closing LLM client", "error", err)
	}
}
