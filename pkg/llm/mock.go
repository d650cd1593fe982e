package llm

import (
	"context"
)

// MockClient is a configurable mock for testing reasoning-dependent code.
// Set AskFunc to control behavior; every prompt is recorded for
// verification.
type MockClient struct {
	// AskFunc is called when Ask is invoked. If nil, returns "" and nil.
	AskFunc func(ctx context.Context, prompt string) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification.
	AskCalls int
	Prompts  []string
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Model: "mock-model",
	}
}

// Ask implements Client.
func (m *MockClient) Ask(ctx context.Context, prompt string) (string, error) {
	m.AskCalls++
	m.Prompts = append(m.Prompts, prompt)
	if m.AskFunc != nil {
		return m.AskFunc(ctx, prompt)
	}
	return "", nil
}

// GetModel implements Client.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Reset clears call tracking.
func (m *MockClient) Reset() {
	m.AskCalls = 0
	m.Prompts = nil
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
