package llmadapter

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 500 * time.Millisecond
	defaultRetryMaxTotal = 30 * time.Second
	retryJitter          = 50 * time.Millisecond
)

// RetryConfig bounds transport-level retries of a single model call.
type RetryConfig struct {
	MaxRetries  int
	Backoff     time.Duration
	MaxDuration time.Duration
}

// RetryClient retries transient provider failures with exponential backoff.
// Permanent failures return immediately.
type RetryClient struct {
	next LLMClient
	cfg  RetryConfig
}

func NewRetryClient(next LLMClient, cfg RetryConfig) *RetryClient {
	if cfg.MaxRetries < 0 || cfg.MaxRetries > 100 {
		cfg.MaxRetries = defaultRetryAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultRetryBackoff
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = defaultRetryMaxTotal
	}
	return &RetryClient{next: next, cfg: cfg}
}

func (c *RetryClient) backoff() retry.Backoff {
	b := retry.NewExponential(c.cfg.Backoff)
	b = retry.WithJitter(retryJitter, b)
	b = retry.WithMaxDuration(c.cfg.MaxDuration, b)
	return retry.WithMaxRetries(uint64(c.cfg.MaxRetries), b) // #nosec G115 -- bounded above
}

func (c *RetryClient) GenerateContent(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	var response *LLMResponse
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		var callErr error
		response, callErr = c.next.GenerateContent(ctx, req)
		if callErr != nil {
			if IsRetryable(callErr) {
				return retry.RetryableError(callErr)
			}
			return callErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (c *RetryClient) Close() error {
	return c.next.Close()
}
