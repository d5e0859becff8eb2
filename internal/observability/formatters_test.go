package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/findoc-analyzer/internal/pipeline"
	"github.com/jonathan/findoc-analyzer/internal/store"
)

func TestPrintSelection(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSelection("what are the risks?", []string{"verify", "analyze", "assess-risk"})

	out := buf.String()
	assert.Contains(t, out, "STAGE SELECTION")
	assert.Contains(t, out, "what are the risks?")
	assert.Contains(t, out, "verify → analyze → assess-risk")
}

func TestPrintRunResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunResult(&pipeline.Result{
		Stages: []pipeline.StageResult{
			{Stage: "verify", Output: "yes, valid"},
			{Stage: "analyze", Output: "margins compressed"},
		},
		Final:   "margins compressed",
		Elapsed: 1234 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "STAGE: VERIFY")
	assert.Contains(t, out, "STAGE: ANALYZE")
	assert.Contains(t, out, "RUN COMPLETE")
	assert.Contains(t, out, "Stages run:  2")
}

func TestPrintRunResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRunResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintJob(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	errMsg := "stage analyze: model unavailable"
	p.PrintJob(&store.Job{
		ID:       "job-1",
		Status:   store.StatusFailed,
		Query:    "q",
		Filename: "a.pdf",
		Error:    &errMsg,
	})

	out := buf.String()
	assert.Contains(t, out, "job-1")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "model unavailable")
}

func TestPrintJobList_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobList(nil)
	assert.Contains(t, buf.String(), "No jobs recorded.")
}
