package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv_AzurePrecedence(t *testing.T) {
	t.Setenv("AZURE_OPENAI_API_KEY", "azure-key")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg := ConfigFromEnv()
	assert.Equal(t, ProviderAzure, cfg.Provider)
	assert.Equal(t, "azure-key", cfg.APIKey)
	assert.Equal(t, "https://example.openai.azure.com", cfg.AzureEndpoint)
	assert.Equal(t, "gpt-5.2-chat", cfg.Model)
	assert.Equal(t, DefaultAzureAPIVersion, cfg.AzureAPIVersion)
}

func TestConfigFromEnv_FallsBackToGemini(t *testing.T) {
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg := ConfigFromEnv()
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-key", cfg.APIKey)
}

func TestWithModel(t *testing.T) {
	cfg := &Config{Provider: ProviderAzure, Model: "gpt-5.2-chat"}
	other := cfg.WithModel("gpt-5.2-pro")

	assert.Equal(t, "gpt-5.2-chat", cfg.Model)
	assert.Equal(t, "gpt-5.2-pro", other.Model)
	assert.Equal(t, cfg.Provider, other.Provider)
}

func TestNewClient_MockProvider(t *testing.T) {
	client, err := NewClient(context.Background(), &Config{Provider: ProviderMock})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	assert.Equal(t, "mock", client.Name())
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(&Config{Provider: ProviderOpenAI})
	require.Error(t, err)

	var apiErr *APICallError
	assert.ErrorAs(t, err, &apiErr)
}

func TestNewOpenAIClient_AzureRequiresEndpoint(t *testing.T) {
	_, err := NewOpenAIClient(&Config{Provider: ProviderAzure, APIKey: "k"})
	assert.Error(t, err)
}

func TestMockClient_ScriptedResponses(t *testing.T) {
	client := NewMockClientWithResponses("first", "second")

	ctx := context.Background()
	resp, err := client.GenerateContent(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "first", resp)

	resp, err = client.GenerateContent(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "second", resp)

	// Exhausted: falls back to default.
	resp, err = client.GenerateContent(ctx, "p3")
	require.NoError(t, err)
	assert.Equal(t, "mock response", resp)

	assert.Equal(t, []string{"p1", "p2", "p3"}, client.Calls)
}
