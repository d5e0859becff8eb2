// Package store persists job records and result artifacts. Two backends are
// provided: SQLite for single-node deployments and PostgreSQL for shared
// ones, selected by connection string.
package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Job statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// ErrNotFound is returned when no job exists for the given identifier.
var ErrNotFound = errors.New("job not found")

// Job is the durable record of one analysis request.
type Job struct {
	ID       string `json:"job_id"`
	Status   string `json:"status"`
	Query    string `json:"query"`
	Filename string `json:"filename"`
	// FilePath is where the uploaded input lives while the job is pending
	// or failed. Cleared semantics are owned by the worker, not the store.
	FilePath string `json:"-"`

	Result     *string `json:"result"`
	Error      *string `json:"error"`
	OutputFile *string `json:"output_file"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the job ledger. Implementations must be safe for concurrent use;
// writes to a single job come from the worker owning its current attempt,
// reads may happen at any time.
type Store interface {
	// CreateJob inserts a new pending job.
	CreateJob(ctx context.Context, job *Job) error
	// GetJob returns the job or ErrNotFound.
	GetJob(ctx context.Context, id string) (*Job, error)
	// ListJobs returns all jobs, newest first.
	ListJobs(ctx context.Context) ([]*Job, error)
	// SetProcessing marks the job as picked up.
	SetProcessing(ctx context.Context, id string) error
	// SetDone records the result and output artifact location.
	SetDone(ctx context.Context, id, result, outputFile string) error
	// SetFailed records the error message verbatim.
	SetFailed(ctx context.Context, id, errMsg string) error
	// DeleteJob removes the job record. Returns ErrNotFound if absent.
	DeleteJob(ctx context.Context, id string) error
	// Close releases the underlying connections.
	Close() error
}

// Open selects a backend from the connection string: postgres:// URLs get
// the PostgreSQL store, anything else is treated as a SQLite path.
func Open(ctx context.Context, dsn string) (Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, dsn)
}
