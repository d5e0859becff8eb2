package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultOutputDir is where result artifacts are written.
const DefaultOutputDir = "outputs"

// OutputStore writes completed run results to per-job text files so they
// survive job deletion and can be fetched independently of the ledger.
type OutputStore struct {
	dir string
}

// NewOutputStore creates the output directory if needed.
func NewOutputStore(dir string) (*OutputStore, error) {
	if dir == "" {
		dir = DefaultOutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &OutputStore{dir: dir}, nil
}

// Save writes the result text for a job and returns the artifact path.
func (o *OutputStore) Save(jobID, result string) (string, error) {
	path := o.Path(jobID)
	if err := os.WriteFile(path, []byte(result), 0o644); err != nil {
		return "", fmt.Errorf("write output for job %s: %w", jobID, err)
	}
	return path, nil
}

// Read returns the stored result text for a job.
func (o *OutputStore) Read(jobID string) (string, error) {
	data, err := os.ReadFile(o.Path(jobID))
	if err != nil {
		return "", fmt.Errorf("read output for job %s: %w", jobID, err)
	}
	return string(data), nil
}

// Remove deletes the artifact if present.
func (o *OutputStore) Remove(jobID string) error {
	err := os.Remove(o.Path(jobID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove output for job %s: %w", jobID, err)
	}
	return nil
}

// Path returns the artifact location for a job.
func (o *OutputStore) Path(jobID string) string {
	return filepath.Join(o.dir, jobID+".txt")
}
