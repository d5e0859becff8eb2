// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/findoc-analyzer/internal/pipeline"
	"github.com/jonathan/findoc-analyzer/internal/store"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// previewLines bounds how much of a stage output is shown
	previewLines = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSelection outputs which stages were selected for a query.
func (p *Printer) PrintSelection(query string, stages []string) {
	var sb strings.Builder
	if query == "" {
		sb.WriteString("Query:   (none)\n")
	} else {
		sb.WriteString(fmt.Sprintf("Query:   %s\n", query))
	}
	sb.WriteString(fmt.Sprintf("Stages:  %s", strings.Join(stages, " → ")))
	p.printBox("STAGE SELECTION", sb.String())
}

// PrintStageResult outputs a preview of one completed stage.
func (p *Printer) PrintStageResult(res pipeline.StageResult) {
	lines := strings.Split(strings.TrimSpace(res.Output), "\n")
	shown := lines
	if len(shown) > previewLines {
		shown = shown[:previewLines]
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(shown, "\n"))
	if len(lines) > previewLines {
		sb.WriteString(fmt.Sprintf("\n... and %d more lines", len(lines)-previewLines))
	}
	p.printBox("STAGE: "+strings.ToUpper(res.Stage), sb.String())
}

// PrintRunResult outputs the overall run summary.
func (p *Printer) PrintRunResult(res *pipeline.Result) {
	if res == nil {
		return
	}
	for _, sr := range res.Stages {
		p.PrintStageResult(sr)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Stages run:  %d\n", len(res.Stages)))
	sb.WriteString(fmt.Sprintf("Elapsed:     %s", res.Elapsed.Round(10*time.Millisecond)))
	p.printBox("RUN COMPLETE", sb.String())
}

// PrintJob outputs one job record.
func (p *Printer) PrintJob(job *store.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:      %s\n", job.ID))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", job.Status))
	sb.WriteString(fmt.Sprintf("Query:    %s\n", job.Query))
	sb.WriteString(fmt.Sprintf("File:     %s\n", job.Filename))
	if job.OutputFile != nil {
		sb.WriteString(fmt.Sprintf("Output:   %s\n", *job.OutputFile))
	}
	if job.Error != nil {
		sb.WriteString(fmt.Sprintf("Error:    %s\n", *job.Error))
	}
	sb.WriteString(fmt.Sprintf("Created:  %s", job.CreatedAt.Format("2006-01-02 15:04:05")))
	p.printBox("JOB", sb.String())
}

// PrintJobList outputs a compact table of jobs.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintJobList(jobs []*store.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(p.out, "No jobs recorded.")
		return
	}

	fmt.Fprintf(p.out, "%-38s %-11s %-20s %s\n", "JOB ID", "STATUS", "CREATED", "FILE")
	for _, j := range jobs {
		fmt.Fprintf(p.out, "%-38s %-11s %-20s %s\n",
			j.ID, j.Status, j.CreatedAt.Format("2006-01-02 15:04:05"), j.Filename)
	}
}
