package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/retry"
)

// ResilientClient wraps a Client with a circuit breaker and bounded
// retries. A single discovery run can issue dozens of reasoning calls;
// when the provider is down the breaker fails the remaining calls fast
// instead of letting each one wait out its own timeout.
type ResilientClient struct {
	inner    Client
	breaker  *CircuitBreaker
	retryCfg *retry.Config
	logger   *zap.Logger
}

// DefaultRetryConfig is the retry policy applied to provider calls:
// two retries with backoff, transient errors only.
func DefaultRetryConfig() *retry.Config {
	return &retry.Config{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// NewResilientClient wraps inner with the given breaker and retry policy.
// A nil breaker or retryCfg selects the defaults.
func NewResilientClient(inner Client, breaker *CircuitBreaker, retryCfg *retry.Config, logger *zap.Logger) *ResilientClient {
	if breaker == nil {
		breaker = NewCircuitBreaker(0, 0)
	}
	if retryCfg == nil {
		retryCfg = DefaultRetryConfig()
	}
	return &ResilientClient{
		inner:    inner,
		breaker:  breaker,
		retryCfg: retryCfg,
		logger:   logger.Named("llm"),
	}
}

// Ask implements Client. Permanent failures (auth, unknown model) pass
// through without retry; transient ones are retried per the policy and
// recorded against the breaker.
func (c *ResilientClient) Ask(ctx context.Context, prompt string) (string, error) {
	if ok, err := c.breaker.Allow(); !ok {
		c.logger.Warn("request rejected by circuit breaker",
			zap.String("state", c.breaker.State().String()))
		return "", err
	}

	var content string
	err := retry.DoIfRetryable(ctx, c.retryCfg, func() error {
		var askErr error
		content, askErr = c.inner.Ask(ctx, prompt)
		return askErr
	})
	if err != nil {
		c.breaker.RecordFailure()
		return "", err
	}

	c.breaker.RecordSuccess()
	return content, nil
}

// GetModel implements Client.
func (c *ResilientClient) GetModel() string {
	return c.inner.GetModel()
}

// Ensure ResilientClient implements Client at compile time.
var _ Client = (*ResilientClient)(nil)
