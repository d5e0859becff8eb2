package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/findoc-analyzer/internal/llm"
)

// readDocumentMarker is the exact reply the model uses to request the
// document text.
const readDocumentMarker = "READ_DOCUMENT"

// DefaultCallTimeout bounds a single model call.
const DefaultCallTimeout = 120 * time.Second

// DocumentTool loads the text of the document at path. Failures are
// reported in-band as a string beginning with "Error: ".
type DocumentTool func(ctx context.Context, path string) string

// ClientFactory builds a client bound to a specific model, for roles that
// override the pipeline default.
type ClientFactory func(model string) (llm.Client, error)

// Executor runs one role against one task prompt, mediating the
// READ_DOCUMENT tool loop between the model and the document reader.
type Executor struct {
	client      llm.Client
	factory     ClientFactory
	readTool    DocumentTool
	callTimeout time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	clients  map[string]llm.Client

	logger *slog.Logger
}

// NewExecutor creates an Executor. A nil logger defaults to slog.Default.
func NewExecutor(client llm.Client, readTool DocumentTool, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		client:      client,
		readTool:    readTool,
		callTimeout: DefaultCallTimeout,
		limiters:    make(map[string]*rate.Limiter),
		clients:     make(map[string]llm.Client),
		logger:      logger,
	}
}

// SetCallTimeout overrides the per-call wall clock limit.
func (e *Executor) SetCallTimeout(d time.Duration) {
	if d > 0 {
		e.callTimeout = d
	}
}

// SetClientFactory enables per-role model overrides. Without a factory,
// roles carrying a Model fall back to the default client.
func (e *Executor) SetClientFactory(f ClientFactory) {
	e.factory = f
}

// clientFor resolves the client for a role, creating and caching one per
// overridden model.
func (e *Executor) clientFor(p Profile) (llm.Client, error) {
	if p.Model == "" || e.factory == nil {
		return e.client, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.clients[p.Model]; ok {
		return c, nil
	}
	c, err := e.factory(p.Model)
	if err != nil {
		return nil, fmt.Errorf("client for model %s: %w", p.Model, err)
	}
	e.clients[p.Model] = c
	return c, nil
}

// Close releases any clients created for model overrides. The default
// client is owned by the caller.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for model, c := range e.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close client for model %s: %w", model, err)
		}
	}
	e.clients = make(map[string]llm.Client)
	return firstErr
}

// limiterFor returns the shared rate limiter for a role, creating it on
// first use. Sharing per role means concurrent jobs respect the same cap.
func (e *Executor) limiterFor(p Profile) *rate.Limiter {
	e.mu.Lock()
	defer e.mu.Unlock()
	if lim, ok := e.limiters[p.Name]; ok {
		return lim
	}
	lim := p.Limiter()
	e.limiters[p.Name] = lim
	return lim
}

// Execute drives the role through the task prompt. The model may ask for
// the document text via the READ_DOCUMENT marker; each request consumes one
// iteration. Exceeding the role's iteration budget is an error.
func (e *Executor) Execute(ctx context.Context, profile Profile, query, taskPrompt, filePath string) (string, error) {
	limiter := e.limiterFor(profile)

	client, err := e.clientFor(profile)
	if err != nil {
		return "", err
	}

	var transcript strings.Builder
	transcript.WriteString(profile.Preamble(query))
	transcript.WriteString("\n")
	transcript.WriteString(taskPrompt)

	for iter := 1; iter <= profile.MaxIterations; iter++ {
		if err := limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait for %s: %w", profile.Name, err)
		}

		response, err := e.call(ctx, client, transcript.String())
		if err != nil {
			return "", fmt.Errorf("%s call %d: %w", profile.Name, iter, err)
		}

		if strings.TrimSpace(response) != readDocumentMarker {
			e.logger.Debug("role completed", "role", profile.Name, "iterations", iter)
			return response, nil
		}

		e.logger.Debug("role requested document", "role", profile.Name, "iteration", iter, "path", filePath)
		transcript.WriteString("\n\n--- DOCUMENT CONTENT ---\n")
		transcript.WriteString(e.readTool(ctx, filePath))
		transcript.WriteString("\n--- END DOCUMENT ---\n\nNow provide your answer.")
	}

	return "", fmt.Errorf("%s: iteration limit exceeded after %d calls", profile.Name, profile.MaxIterations)
}

func (e *Executor) call(ctx context.Context, client llm.Client, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return client.GenerateContent(callCtx, prompt)
}
