// Package document extracts text from financial PDF documents.
//
// Extraction shells out to pdftotext (poppler-utils) behind a small Runner
// interface so tests can stub the external command.
package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		slog.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		slog.Debug("exec ok",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// Config holds document extraction settings.
type Config struct {
	// Pdftotext is the binary name or path. Defaults to "pdftotext".
	Pdftotext string
}

// Reader extracts plain text from PDF files.
type Reader struct {
	cfg    Config
	runner Runner
}

// NewReader creates a Reader using the system pdftotext binary.
func NewReader(cfg Config) *Reader {
	return NewReaderWithRunner(cfg, execRunner{})
}

// NewReaderWithRunner creates a Reader with a custom command runner.
func NewReaderWithRunner(cfg Config, runner Runner) *Reader {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Reader{cfg: cfg, runner: runner}
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Extract returns the text content of the PDF at path. Runs of blank lines
// are collapsed so prompts stay compact.
func (r *Reader) Extract(ctx context.Context, path string) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := r.runner.Run(ctx, r.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed for %s: %w (stderr: %s)", filepath.Base(path), err, truncate(string(errb), 512))
	}

	text := strings.TrimSpace(blankRuns.ReplaceAllString(string(out), "\n\n"))
	if text == "" {
		return "", fmt.Errorf("no text extracted from %s", filepath.Base(path))
	}
	return text, nil
}

// ReadTool is the tool-facing wrapper around Extract. Instead of returning
// an error it returns a string beginning with "Error: " so the model sees
// the failure in-band and can react to it.
func (r *Reader) ReadTool(ctx context.Context, path string) string {
	text, err := r.Extract(ctx, path)
	if err != nil {
		return "Error: " + err.Error()
	}
	return text
}

func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("document path is empty")
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("unsupported document type %q, only PDF is supported", filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("document not found: %s", path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("document path %s is a directory", path)
	}
	return nil
}
