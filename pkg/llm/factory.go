package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Config holds the settings for building a reasoning client.
type Config struct {
	Provider  string // "openai" (default) or "anthropic"
	BaseURL   string // optional OpenAI-compatible endpoint override
	Model     string
	APIKey    string
	MaxTokens int
}

// New builds a Client for the configured provider, wrapped with the
// default circuit breaker and retry policy.
func New(cfg *Config, logger *zap.Logger) (Client, error) {
	var (
		base Client
		err  error
	)

	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		base, err = NewOpenAIClient(cfg, logger)
	case "anthropic":
		base, err = NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	return NewResilientClient(base, NewCircuitBreaker(0, 0), DefaultRetryConfig(), logger), nil
}
