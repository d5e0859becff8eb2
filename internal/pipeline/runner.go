package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jonathan/findoc-analyzer/internal/agents"
	"github.com/jonathan/findoc-analyzer/internal/prompts"
)

// StageExecutor runs one role against one assembled task prompt.
// *agents.Executor is the production implementation.
type StageExecutor interface {
	Execute(ctx context.Context, profile agents.Profile, query, taskPrompt, filePath string) (string, error)
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Stages holds every stage result in execution order.
	Stages []StageResult
	// Final is the last stage's output, the overall run result.
	Final string
	// Selected lists the stage names that ran.
	Selected []string
	// Elapsed is the wall clock duration of the run.
	Elapsed time.Duration
}

// Runner executes the selected stages in dependency order, threading each
// prerequisite's output into dependent stages' prompts.
type Runner struct {
	executor StageExecutor
	manifest *Manifest
	logger   *slog.Logger
}

// NewRunner creates a Runner. manifest may be nil; a nil logger defaults to
// slog.Default.
func NewRunner(executor StageExecutor, manifest *Manifest, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{executor: executor, manifest: manifest, logger: logger}
}

// Run selects and executes the stages for the query against the document at
// filePath. A missing document is a precondition failure: no stages execute.
// Selection uses the raw query; a blank query runs verification only, while
// prompt assembly falls back to DefaultQuery. Any stage failure aborts the
// run with no partial result.
func (r *Runner) Run(ctx context.Context, query, filePath string) (*Result, error) {
	start := time.Now()

	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document not found: %s", filePath)
		}
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}

	raw := strings.TrimSpace(query)
	selected := Select(raw)

	effective := raw
	if effective == "" {
		effective = DefaultQuery
	}

	r.logger.Info("pipeline run starting", "stages", selected, "file", filePath)

	ran := make(map[string]string, len(selected))
	result := &Result{Selected: selected}

	for _, name := range selected {
		stage := stages[name]

		prompt, err := r.assemblePrompt(stage, effective, filePath, ran)
		if err != nil {
			return nil, err
		}

		profile := r.profileFor(stage)

		stageStart := time.Now()
		output, err := r.executor.Execute(ctx, profile, effective, prompt, filePath)
		if err != nil {
			r.logger.Error("stage failed", "stage", name, "error", err)
			return nil, fmt.Errorf("stage %s: %w", name, err)
		}
		r.logger.Info("stage completed", "stage", name, "duration", time.Since(stageStart).Round(time.Millisecond))

		ran[name] = output
		result.Stages = append(result.Stages, StageResult{Stage: name, Output: output})
	}

	result.Final = result.Stages[len(result.Stages)-1].Output
	result.Elapsed = time.Since(start)
	r.logger.Info("pipeline run finished", "stages", len(result.Stages), "elapsed", result.Elapsed.Round(time.Millisecond))
	return result, nil
}

// assemblePrompt builds the stage's task prompt: the instruction template
// with query and file path substituted, followed by the outputs of the
// stage's prerequisites that actually ran.
func (r *Runner) assemblePrompt(stage Stage, query, filePath string, ran map[string]string) (string, error) {
	template := r.manifest.instructionFor(stage.Name)
	if template == "" {
		var err error
		template, err = prompts.Get("tasks.json", stage.Name)
		if err != nil {
			return "", fmt.Errorf("stage %s: %w", stage.Name, err)
		}
	}

	var b strings.Builder
	b.WriteString(prompts.Format(template, map[string]string{
		"Query":    query,
		"FilePath": filePath,
	}))

	if expected, err := prompts.Get("tasks.json", stage.Name+"-expected"); err == nil {
		b.WriteString("\n\nExpected output:\n")
		b.WriteString(expected)
	}

	for _, dep := range stage.Deps {
		output, ok := ran[dep]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("\n\n--- PRIOR FINDINGS (%s) ---\n", dep))
		b.WriteString(output)
		b.WriteString("\n--- END PRIOR FINDINGS ---")
	}

	return b.String(), nil
}

// profileFor applies any manifest limit and model overrides to the stage's
// role.
func (r *Runner) profileFor(stage Stage) agents.Profile {
	profile := stage.Profile
	if ov := r.manifest.overrideFor(stage.Name); ov != nil {
		if ov.MaxIterations > 0 {
			profile.MaxIterations = ov.MaxIterations
		}
		if ov.MaxRPM > 0 {
			profile.MaxRPM = ov.MaxRPM
		}
		if ov.Model != "" {
			profile.Model = ov.Model
		}
	}
	return profile
}
