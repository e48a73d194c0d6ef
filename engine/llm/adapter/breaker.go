package llmadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/goresilience"
	"github.com/slok/goresilience/circuitbreaker"
)

// BreakerConfig configures the circuit breaker around provider calls.
type BreakerConfig struct {
	ErrorPercent int
	MinRequests  int
	OpenWait     time.Duration
}

// BreakerClient fails fast once the provider keeps erroring.
type BreakerClient struct {
	next   LLMClient
	runner goresilience.Runner
}

func NewBreakerClient(next LLMClient, cfg BreakerConfig) *BreakerClient {
	if cfg.ErrorPercent <= 0 {
		cfg.ErrorPercent = 50
	}
	if cfg.MinRequests <= 0 {
		cfg.MinRequests = 10
	}
	if cfg.OpenWait <= 0 {
		cfg.OpenWait = 5 * time.Second
	}
	runner := goresilience.RunnerChain(
		circuitbreaker.NewMiddleware(circuitbreaker.Config{
			ErrorPercentThresholdToOpen:        cfg.ErrorPercent,
			MinimumRequestToOpen:               cfg.MinRequests,
			SuccessfulRequiredOnHalfOpen:       1,
			WaitDurationInOpenState:            cfg.OpenWait,
			MetricsSlidingWindowBucketQuantity: 10,
			MetricsBucketDuration:              time.Second,
		}),
	)
	return &BreakerClient{next: next, runner: runner}
}

func (c *BreakerClient) GenerateContent(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	var response *LLMResponse
	err := c.runner.Run(ctx, func(ctx context.Context) (runErr error) {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("panic recovered: %v", r)
			}
		}()
		var callErr error
		response, callErr = c.next.GenerateContent(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (c *BreakerClient) Close() error {
	return c.next.Close()
}
