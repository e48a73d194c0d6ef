package llmadapter

import "fmt"

// ClientOptions selects the decorators stacked on top of the provider adapter.
type ClientOptions struct {
	Retry     RetryConfig
	Breaker   *BreakerConfig
	CacheSize int
}

// NewClient builds the provider adapter and layers cache, retry and breaker on it.
// Calls flow cache -> retry -> breaker -> provider.
func NewClient(provider *ProviderConfig, opts ClientOptions) (LLMClient, error) {
	base, err := NewLangChainAdapter(provider)
	if err != nil {
		return nil, err
	}
	return Decorate(base, opts)
}

// Decorate wraps an existing client with the configured decorators.
func Decorate(base LLMClient, opts ClientOptions) (LLMClient, error) {
	if base == nil {
		return nil, fmt.Errorf("base client is required")
	}
	client := base
	if opts.Breaker != nil {
		client = NewBreakerClient(client, *opts.Breaker)
	}
	client = NewRetryClient(client, opts.Retry)
	if opts.CacheSize > 0 {
		cached, err := NewCachedClient(client, opts.CacheSize)
		if err != nil {
			return nil, err
		}
		client = cached
	}
	return client, nil
}
