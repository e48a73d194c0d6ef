package llmadapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
)

// CachedClient memoizes responses to identical requests. Decoding is
// deterministic at temperature zero, so a repeated prompt yields the same reply.
type CachedClient struct {
	next  LLMClient
	cache *ristretto.Cache[string, *LLMResponse]
}

func NewCachedClient(next LLMClient, size int) (*CachedClient, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive")
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, *LLMResponse]{
		NumCounters:        int64(size) * 10,
		MaxCost:            int64(size),
		BufferItems:        64,
		// Cost counts entries, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}
	return &CachedClient{next: next, cache: cache}, nil
}

func requestKey(req *LLMRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%g\x00%d\x00%t\x00%s\x00",
		req.SystemPrompt,
		req.Options.Temperature,
		req.Options.MaxTokens,
		req.Options.UseJSONMode,
		strings.Join(req.Options.StopWords, "\x01"),
	)
	for _, m := range req.Messages {
		fmt.Fprintf(h, "%s\x00%s\x00", m.Role, m.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachedClient) GenerateContent(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	if req == nil || req.Options.Temperature != 0 {
		return c.next.GenerateContent(ctx, req)
	}
	key := requestKey(req)
	if resp, ok := c.cache.Get(key); ok {
		return resp, nil
	}
	resp, err := c.next.GenerateContent(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, resp, 1)
	c.cache.Wait()
	return resp, nil
}

func (c *CachedClient) Close() error {
	c.cache.Close()
	return c.next.Close()
}
