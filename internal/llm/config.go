// Package llm provides centralized LLM configuration and client abstractions.
// This package enables switching between providers without touching the
// pipeline code that consumes them.
package llm

import "os"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderAzure is Azure OpenAI (the default deployment target)
	ProviderAzure Provider = "azure"
	// ProviderOpenAI is the OpenAI platform
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
	// ProviderMock is a deterministic in-memory provider for tests
	ProviderMock Provider = "mock"
)

// Config holds the text-generation settings for one client instance.
// It is constructed explicitly and passed to NewClient; there is no hidden
// process-wide state, so callers needing different settings build distinct
// configs.
type Config struct {
	Provider    Provider
	Model       string
	APIKey      string
	Temperature float32

	// Azure-specific settings. Model doubles as the deployment name.
	AzureEndpoint   string
	AzureAPIVersion string
}

// DefaultAzureAPIVersion is used when no API version is configured.
const DefaultAzureAPIVersion = "2024-02-15-preview"

// DefaultConfig returns the default configuration: Azure OpenAI with
// credentials from the environment.
func DefaultConfig() *Config {
	return ConfigFromEnv()
}

// ConfigFromEnv builds a Config from conventional environment variables.
// Azure OpenAI takes precedence when its credentials are present; otherwise
// the first provider with an API key in the environment is chosen.
func ConfigFromEnv() *Config {
	if key := os.Getenv("AZURE_OPENAI_API_KEY"); key != "" {
		cfg := &Config{
			Provider:        ProviderAzure,
			APIKey:          key,
			AzureEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
			Model:           os.Getenv("AZURE_OPENAI_DEPLOYMENT"),
			AzureAPIVersion: os.Getenv("AZURE_OPENAI_API_VERSION"),
			Temperature:     1,
		}
		if cfg.Model == "" {
			cfg.Model = "gpt-5.2-chat"
		}
		if cfg.AzureAPIVersion == "" {
			cfg.AzureAPIVersion = DefaultAzureAPIVersion
		}
		return cfg
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return &Config{Provider: ProviderOpenAI, APIKey: key, Model: "gpt-5.2-instant", Temperature: 1}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return &Config{Provider: ProviderGemini, APIKey: key, Model: "gemini-2.5-flash", Temperature: 1}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return &Config{Provider: ProviderAnthropic, APIKey: key, Model: "claude-sonnet-4-20250514", Temperature: 1}
	}
	return &Config{Provider: ProviderAzure, Temperature: 1, Model: "gpt-5.2-chat", AzureAPIVersion: DefaultAzureAPIVersion}
}

// WithModel returns a copy of the config with a different model.
func (c *Config) WithModel(model string) *Config {
	out := *c
	out.Model = model
	return &out
}
