// Package llm provides the reasoning capability behind schema discovery
// and column classification: single-turn prompts against an OpenAI- or
// Anthropic-backed model, with JSON extraction helpers for structured
// advisories.
package llm

import (
	"context"
)

// Client is the single-turn reasoning interface the engine depends on.
// Conversation framing is the caller's responsibility; every Ask is
// stateless from the client's point of view.
//
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Ask sends one prompt and returns the model's text response.
	Ask(ctx context.Context, prompt string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}
