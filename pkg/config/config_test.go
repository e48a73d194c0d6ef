package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Default(t *testing.T) {
	t.Run("Should return valid default configuration", func(t *testing.T) {
		cfg := Default()

		require.NotNil(t, cfg)
		assert.Equal(t, "ollama", cfg.LLM.Provider)
		assert.Equal(t, 0.0, cfg.LLM.Temperature)
		assert.Equal(t, 1000, cfg.LLM.MaxTokens)
		assert.Equal(t, 30*time.Second, cfg.LLM.MaxRetryDuration)
		assert.False(t, cfg.LLM.Breaker.Enabled)
		assert.Equal(t, "data/northwind.sqlite", cfg.Dataset.Path)
		assert.Equal(t, "docs", cfg.Corpus.Dir)
		assert.Equal(t, "*.md", cfg.Corpus.Pattern)
		assert.Equal(t, 2, cfg.Agent.MaxRetries)
		assert.Equal(t, 3, cfg.Agent.TopK)
		assert.Equal(t, "info", cfg.Runtime.LogLevel)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, int64(60), cfg.Server.RateLimit.Limit)
		assert.True(t, cfg.Server.Metrics.Enabled)
		assert.Equal(t, "/metrics", cfg.Server.Metrics.Path)
		assert.Empty(t, cfg.Batch.Input)

		require.NoError(t, NewService().Validate(cfg))
	})
}

func TestService_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "Should reject an unknown provider",
			mutate:  func(c *Config) { c.LLM.Provider = "bedrock" },
			wantErr: "Provider",
		},
		{
			name:    "Should reject a malformed corpus pattern",
			mutate:  func(c *Config) { c.Corpus.Pattern = "[*.md" },
			wantErr: "Pattern",
		},
		{
			name:    "Should accept a recursive corpus pattern",
			mutate:  func(c *Config) { c.Corpus.Pattern = "**/*.md" },
			wantErr: "",
		},
		{
			name:    "Should reject an unknown chunking strategy",
			mutate:  func(c *Config) { c.Corpus.Strategy = "sentence" },
			wantErr: "Strategy",
		},
		{
			name: "Should reject an overlap as large as the chunk",
			mutate: func(c *Config) {
				c.Corpus.Strategy = "recursive"
				c.Corpus.ChunkOverlap = c.Corpus.ChunkSize
			},
			wantErr: "chunk_overlap",
		},
		{
			name:    "Should reject a metrics path without a leading slash",
			mutate:  func(c *Config) { c.Server.Metrics.Path = "metrics" },
			wantErr: "Path",
		},
		{
			name:    "Should require a period for a rate limit",
			mutate:  func(c *Config) { c.Server.RateLimit.Period = 0 },
			wantErr: "rate_limit.period",
		},
		{
			name:    "Should reject a top_k of zero",
			mutate:  func(c *Config) { c.Agent.TopK = 0 },
			wantErr: "TopK",
		},
		{
			name: "Should accept a hosted provider with a key",
			mutate: func(c *Config) {
				c.LLM.Provider = "anthropic"
				c.LLM.APIKey = SensitiveString("sk-ant-test")
			},
			wantErr: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := NewService().Validate(cfg)

			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
