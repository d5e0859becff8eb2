package llm

import (
	"context"
	"sync"
)

// MockClient returns deterministic responses for local runs and tests.
// Responses are consumed in order; once exhausted the default response is
// returned. Every prompt is recorded in Calls.
type MockClient struct {
	mu sync.Mutex

	Responses       []string
	DefaultResponse string
	Err             error

	Calls []string
	next  int
}

// NewMockClient creates a mock client with a default response.
func NewMockClient() *MockClient {
	return &MockClient{DefaultResponse: "mock response"}
}

// NewMockClientWithResponses creates a mock client that replies with the
// given responses in order.
func NewMockClientWithResponses(responses ...string) *MockClient {
	return &MockClient{Responses: responses, DefaultResponse: "mock response"}
}

// Name returns the provider identifier.
func (c *MockClient) Name() string {
	return string(ProviderMock)
}

// GenerateContent records the prompt and returns the next scripted response.
func (c *MockClient) GenerateContent(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, prompt)
	if c.Err != nil {
		return "", c.Err
	}
	if c.next < len(c.Responses) {
		resp := c.Responses[c.next]
		c.next++
		return resp, nil
	}
	return c.DefaultResponse, nil
}

// Close is a no-op for the mock client.
func (c *MockClient) Close() error {
	return nil
}
