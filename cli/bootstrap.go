package cli

import (
	"context"
	"fmt"

	"github.com/compozy/hybridqa/engine/dataset"
	"github.com/compozy/hybridqa/engine/infra/sqlite"
	"github.com/compozy/hybridqa/engine/knowledge/chunk"
	"github.com/compozy/hybridqa/engine/knowledge/ingest"
	llmadapter "github.com/compozy/hybridqa/engine/llm/adapter"
	"github.com/compozy/hybridqa/engine/llm/task"
	"github.com/compozy/hybridqa/engine/qa"
	"github.com/compozy/hybridqa/pkg/config"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/spf13/afero"
)

// buildEngine assembles the answering engine from configuration. The
// returned cleanup releases the model client and the database.
func buildEngine(ctx context.Context, cfg *config.Config) (*qa.Engine, func(), error) {
	log := logger.FromContext(ctx)
	client, err := newLLMClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{client.Close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("Failed to release resource", "error", err)
			}
		}
	}
	runner, err := task.NewRunner(client, llmadapter.CallOptions{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   int32(cfg.LLM.MaxTokens),
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create task runner: %w", err)
	}
	ds, err := dataset.Open(ctx, &sqlite.Config{
		Path:        cfg.Dataset.Path,
		CreateViews: cfg.Dataset.CreateViews,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to open dataset %s: %w", cfg.Dataset.Path, err)
	}
	closers = append(closers, ds.Close)
	searcher, err := ingest.Build(ctx, afero.NewOsFs(), ingest.Options{
		Dir:     cfg.Corpus.Dir,
		Pattern: cfg.Corpus.Pattern,
		Chunking: chunk.Settings{
			Strategy: cfg.Corpus.Strategy,
			Size:     cfg.Corpus.ChunkSize,
			Overlap:  cfg.Corpus.ChunkOverlap,
		},
		CacheSize: cfg.Corpus.CacheSize,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to index corpus %s: %w", cfg.Corpus.Dir, err)
	}
	engine, err := qa.New(qa.Options{
		Runner:     runner,
		Dataset:    ds,
		Searcher:   searcher,
		TopK:       cfg.Agent.TopK,
		MaxRetries: cfg.Agent.MaxRetries,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	log.Info("Engine ready",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"dataset", cfg.Dataset.Path,
		"corpus", cfg.Corpus.Dir,
	)
	return engine, cleanup, nil
}

func newLLMClient(cfg *config.Config) (llmadapter.LLMClient, error) {
	provider := &llmadapter.ProviderConfig{
		Provider:    llmadapter.ProviderName(cfg.LLM.Provider),
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey.Value(),
		APIURL:      cfg.LLM.APIURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   int32(cfg.LLM.MaxTokens),
	}
	client, err := llmadapter.NewClient(provider, clientOptions(&cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.LLM.Provider, err)
	}
	return client, nil
}

func clientOptions(cfg *config.LLMConfig) llmadapter.ClientOptions {
	opts := llmadapter.ClientOptions{
		Retry: llmadapter.RetryConfig{
			MaxRetries:  cfg.MaxRetries,
			Backoff:     cfg.RetryBackoff,
			MaxDuration: cfg.MaxRetryDuration,
		},
		CacheSize: cfg.CacheSize,
	}
	if cfg.Breaker.Enabled {
		opts.Breaker = &llmadapter.BreakerConfig{
			ErrorPercent: cfg.Breaker.ErrorPercent,
			MinRequests:  cfg.Breaker.MinRequests,
			OpenWait:     cfg.Breaker.OpenWait,
		}
	}
	return opts
}
