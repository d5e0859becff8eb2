package llm

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client for OpenAI and Azure OpenAI deployments.
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a client for the OpenAI platform or an Azure
// OpenAI deployment, depending on config.Provider.
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, &APICallError{Provider: string(config.Provider), Message: "API key is required"}
	}

	var opts []option.RequestOption
	if config.Provider == ProviderAzure {
		if config.AzureEndpoint == "" {
			return nil, &APICallError{Provider: "azure", Message: "endpoint is required"}
		}
		apiVersion := config.AzureAPIVersion
		if apiVersion == "" {
			apiVersion = DefaultAzureAPIVersion
		}
		opts = append(opts,
			azure.WithEndpoint(config.AzureEndpoint, apiVersion),
			azure.WithAPIKey(config.APIKey),
		)
	} else {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}

	return &OpenAIClient{client: openai.NewClient(opts...), config: config}, nil
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return string(c.config.Provider)
}

// GenerateContent sends a prompt and returns the response text. For Azure
// the configured model is the deployment name.
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(c.config.Temperature)),
	})
	if err != nil {
		return "", &APICallError{Provider: c.Name(), Message: "chat completion failed", Cause: err}
	}

	if len(resp.Choices) == 0 {
		return "", &APICallError{Provider: c.Name(), Message: "no choices in response"}
	}

	return resp.Choices[0].Message.Content, nil
}

// Close releases resources held by the client.
func (c *OpenAIClient) Close() error {
	return nil
}
