package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is the job database used when no DSN is configured.
const DefaultSQLitePath = "findoc.db"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	query       TEXT NOT NULL DEFAULT '',
	filename    TEXT NOT NULL DEFAULT '',
	file_path   TEXT NOT NULL DEFAULT '',
	result      TEXT,
	error       TEXT,
	output_file TEXT,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs (created_at DESC);
`

// SQLiteStore implements Store on an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the job database at path. Use
// ":memory:" for an ephemeral store.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// The sqlite driver is single-writer; one connection avoids lock
	// contention errors under concurrent workers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateJob inserts a new pending job.
func (s *SQLiteStore) CreateJob(ctx context.Context, job *Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, query, filename, file_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Status, job.Query, job.Filename, job.FilePath, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob returns the job or ErrNotFound.
func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, query, filename, file_path, result, error, output_file, created_at, updated_at
		 FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

// ListJobs returns all jobs, newest first.
func (s *SQLiteStore) ListJobs(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, query, filename, file_path, result, error, output_file, created_at, updated_at
		 FROM jobs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// SetProcessing marks the job as picked up.
func (s *SQLiteStore) SetProcessing(ctx context.Context, id string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`,
		StatusProcessing, time.Now().UTC(), id)
}

// SetDone records the result and output artifact location. Any previous
// error from a failed attempt is cleared.
func (s *SQLiteStore) SetDone(ctx context.Context, id, result, outputFile string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET status = ?, result = ?, output_file = ?, error = NULL, updated_at = ? WHERE id = ?`,
		StatusDone, result, outputFile, time.Now().UTC(), id)
}

// SetFailed records the error message verbatim.
func (s *SQLiteStore) SetFailed(ctx context.Context, id, errMsg string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, errMsg, time.Now().UTC(), id)
}

// DeleteJob removes the job record.
func (s *SQLiteStore) DeleteJob(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var result, errMsg, outputFile sql.NullString
	err := row.Scan(&job.ID, &job.Status, &job.Query, &job.Filename, &job.FilePath,
		&result, &errMsg, &outputFile, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	if result.Valid {
		job.Result = &result.String
	}
	if errMsg.Valid {
		job.Error = &errMsg.String
	}
	if outputFile.Valid {
		job.OutputFile = &outputFile.String
	}
	return &job, nil
}
