package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/findoc-analyzer/internal/llm"
)

func stubTool(text string) DocumentTool {
	return func(_ context.Context, _ string) string { return text }
}

// fastProfile removes the RPM cap so tests do not sleep.
func fastProfile(p Profile) Profile {
	p.MaxRPM = 0
	return p
}

func TestExecute_DirectAnswer(t *testing.T) {
	client := llm.NewMockClientWithResponses("The document is a valid 10-K filing.")
	exec := NewExecutor(client, stubTool("unused"), nil)

	out, err := exec.Execute(context.Background(), fastProfile(Verifier), "", "Verify the document.", "/tmp/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "The document is a valid 10-K filing.", out)
	require.Len(t, client.Calls, 1)
	assert.Contains(t, client.Calls[0], "Financial Document Verifier")
	assert.Contains(t, client.Calls[0], "Verify the document.")
}

func TestExecute_ReadDocumentLoop(t *testing.T) {
	client := llm.NewMockClientWithResponses(
		"READ_DOCUMENT",
		"Revenue grew 12% year over year.",
	)
	exec := NewExecutor(client, stubTool("Revenue: $112M (prior year $100M)"), nil)

	out, err := exec.Execute(context.Background(), fastProfile(Analyst), "summarize revenue", "Analyze the document.", "/tmp/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 12% year over year.", out)

	require.Len(t, client.Calls, 2)
	assert.Contains(t, client.Calls[1], "Revenue: $112M")
	assert.Contains(t, client.Calls[1], "--- DOCUMENT CONTENT ---")
}

func TestExecute_MarkerIsWhitespaceTolerant(t *testing.T) {
	client := llm.NewMockClientWithResponses("  READ_DOCUMENT\n", "done")
	exec := NewExecutor(client, stubTool("text"), nil)

	out, err := exec.Execute(context.Background(), fastProfile(Verifier), "", "task", "/tmp/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
}

func TestExecute_IterationLimitExceeded(t *testing.T) {
	// Always asks for the document, never answers.
	client := llm.NewMockClient()
	client.DefaultResponse = "READ_DOCUMENT"
	exec := NewExecutor(client, stubTool("text"), nil)

	profile := fastProfile(Verifier)
	_, err := exec.Execute(context.Background(), profile, "", "task", "/tmp/a.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iteration limit exceeded")
	assert.Len(t, client.Calls, profile.MaxIterations)
}

func TestExecute_ToolErrorIsVisibleToModel(t *testing.T) {
	client := llm.NewMockClientWithResponses("READ_DOCUMENT", "cannot analyze, document unreadable")
	exec := NewExecutor(client, stubTool("Error: document not found: /tmp/a.pdf"), nil)

	out, err := exec.Execute(context.Background(), fastProfile(Analyst), "q", "task", "/tmp/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "cannot analyze, document unreadable", out)
	assert.Contains(t, client.Calls[1], "Error: document not found")
}

func TestExecute_ClientError(t *testing.T) {
	client := llm.NewMockClient()
	client.Err = errors.New("quota exhausted")
	exec := NewExecutor(client, stubTool(""), nil)

	_, err := exec.Execute(context.Background(), fastProfile(Advisor), "", "task", "/tmp/a.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestExecute_ModelOverrideUsesFactoryClient(t *testing.T) {
	defaultClient := llm.NewMockClientWithResponses("from default")
	overrideClient := llm.NewMockClientWithResponses("from override", "from override again")

	factoryCalls := 0
	exec := NewExecutor(defaultClient, stubTool("unused"), nil)
	exec.SetClientFactory(func(model string) (llm.Client, error) {
		factoryCalls++
		assert.Equal(t, "gpt-5.2-pro", model)
		return overrideClient, nil
	})

	profile := fastProfile(Analyst)
	profile.Model = "gpt-5.2-pro"

	out, err := exec.Execute(context.Background(), profile, "q", "task", "/tmp/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "from override", out)
	assert.Empty(t, defaultClient.Calls)

	// The second run for the same model reuses the cached client.
	out, err = exec.Execute(context.Background(), profile, "q", "task", "/tmp/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "from override again", out)
	assert.Equal(t, 1, factoryCalls)
	assert.Len(t, overrideClient.Calls, 2)

	assert.NoError(t, exec.Close())
}

func TestExecute_ModelOverrideWithoutFactoryFallsBack(t *testing.T) {
	client := llm.NewMockClientWithResponses("from default")
	exec := NewExecutor(client, stubTool("unused"), nil)

	profile := fastProfile(Verifier)
	profile.Model = "gpt-5.2-pro"

	out, err := exec.Execute(context.Background(), profile, "", "task", "/tmp/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "from default", out)
	assert.Len(t, client.Calls, 1)
}

func TestExecute_FactoryErrorFailsRole(t *testing.T) {
	exec := NewExecutor(llm.NewMockClient(), stubTool("unused"), nil)
	exec.SetClientFactory(func(model string) (llm.Client, error) {
		return nil, errors.New("unknown deployment")
	})

	profile := fastProfile(Advisor)
	profile.Model = "bogus"

	_, err := exec.Execute(context.Background(), profile, "", "task", "/tmp/a.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown deployment")
}

func TestProfilePreamble_SubstitutesQuery(t *testing.T) {
	pre := Analyst.Preamble("what are the margins?")
	assert.Contains(t, pre, "Senior Financial Analyst")
	assert.Contains(t, pre, "what are the margins?")
	assert.False(t, strings.Contains(pre, "{{.Query}}"))
	assert.Contains(t, pre, "READ_DOCUMENT")
}

func TestProfileLimits(t *testing.T) {
	assert.Equal(t, 3, Verifier.MaxIterations)
	assert.Equal(t, 5, Verifier.MaxRPM)
	assert.Equal(t, 5, Analyst.MaxIterations)
	assert.Equal(t, 10, Analyst.MaxRPM)
	assert.Equal(t, 3, Advisor.MaxIterations)
	assert.Equal(t, 3, RiskAssessor.MaxIterations)
}
