package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	query       TEXT NOT NULL DEFAULT '',
	filename    TEXT NOT NULL DEFAULT '',
	file_path   TEXT NOT NULL DEFAULT '',
	result      TEXT,
	error       TEXT,
	output_file TEXT,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs (created_at DESC);
`

// PostgresStore implements Store on a PostgreSQL connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres establishes a connection pool and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init postgres schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateJob inserts a new pending job.
func (s *PostgresStore) CreateJob(ctx context.Context, job *Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusPending
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, status, query, filename, file_path, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.Status, job.Query, job.Filename, job.FilePath, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob returns the job or ErrNotFound.
func (s *PostgresStore) GetJob(ctx context.Context, id string) (*Job, error) {
	var job Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, query, filename, file_path, result, error, output_file, created_at, updated_at
		 FROM jobs WHERE id = $1`, id,
	).Scan(&job.ID, &job.Status, &job.Query, &job.Filename, &job.FilePath,
		&job.Result, &job.Error, &job.OutputFile, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &job, nil
}

// ListJobs returns all jobs, newest first.
func (s *PostgresStore) ListJobs(ctx context.Context) ([]*Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, status, query, filename, file_path, result, error, output_file, created_at, updated_at
		 FROM jobs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.Status, &job.Query, &job.Filename, &job.FilePath,
			&job.Result, &job.Error, &job.OutputFile, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// SetProcessing marks the job as picked up.
func (s *PostgresStore) SetProcessing(ctx context.Context, id string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`,
		StatusProcessing, time.Now().UTC(), id)
}

// SetDone records the result and output artifact location.
func (s *PostgresStore) SetDone(ctx context.Context, id, result, outputFile string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET status = $1, result = $2, output_file = $3, error = NULL, updated_at = $4 WHERE id = $5`,
		StatusDone, result, outputFile, time.Now().UTC(), id)
}

// SetFailed records the error message verbatim.
func (s *PostgresStore) SetFailed(ctx context.Context, id, errMsg string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		StatusFailed, errMsg, time.Now().UTC(), id)
}

// DeleteJob removes the job record.
func (s *PostgresStore) DeleteJob(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) update(ctx context.Context, id, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
