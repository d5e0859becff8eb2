package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client for Claude models.
type AnthropicClient struct {
	client anthropic.Client
	config *Config
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(config *Config) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, &APICallError{Provider: "anthropic", Message: "API key is required"}
	}

	client := anthropic.NewClient(option.WithAPIKey(config.APIKey))
	return &AnthropicClient{client: client, config: config}, nil
}

// Name returns the provider identifier.
func (c *AnthropicClient) Name() string {
	return string(ProviderAnthropic)
}

// GenerateContent sends a prompt to Claude and returns the response text.
func (c *AnthropicClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.config.Model),
		MaxTokens:   4096,
		Temperature: anthropic.Float(float64(c.config.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &APICallError{Provider: "anthropic", Message: "message creation failed", Cause: err}
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return content, nil
}

// Close releases resources held by the client.
func (c *AnthropicClient) Close() error {
	return nil
}
