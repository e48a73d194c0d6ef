package ratelimit

import (
	"fmt"
	"time"

	"github.com/compozy/hybridqa/pkg/config"
	"github.com/ulule/limiter/v3"
)

// Config limits requests per client IP.
type Config struct {
	Limit  int64
	Period time.Duration
	Prefix string
	// ExcludedPaths are matched exactly against the request path.
	ExcludedPaths []string
}

func DefaultConfig() *Config {
	return &Config{
		Limit:         60,
		Period:        time.Minute,
		Prefix:        "hybridqa:ratelimit:",
		ExcludedPaths: []string{"/api/v1/health", "/metrics"},
	}
}

// FromAppConfig reads server.rate_limit; a zero limit disables limiting.
func FromAppConfig(cfg *config.RateLimitConfig, excluded ...string) *Config {
	out := DefaultConfig()
	out.Limit = cfg.Limit
	if cfg.Period > 0 {
		out.Period = cfg.Period
	}
	if len(excluded) > 0 {
		out.ExcludedPaths = excluded
	}
	return out
}

func (c *Config) Enabled() bool {
	return c.Limit > 0
}

func (c *Config) Rate() limiter.Rate {
	return limiter.Rate{Period: c.Period, Limit: c.Limit}
}

func (c *Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	if c.Enabled() && c.Period <= 0 {
		return fmt.Errorf("rate limit period must be positive")
	}
	return nil
}
