package llmadapter

import (
	"context"
	"sync"
)

// ResponderFunc produces a reply for one request.
type ResponderFunc func(ctx context.Context, req *LLMRequest) (*LLMResponse, error)

// ScriptedClient is a deterministic LLMClient driven by a responder function.
// It records every request it receives.
type ScriptedClient struct {
	mu        sync.Mutex
	responder ResponderFunc
	requests  []*LLMRequest
}

func NewScriptedClient(responder ResponderFunc) *ScriptedClient {
	return &ScriptedClient{responder: responder}
}

// NewStaticClient always answers with content.
func NewStaticClient(content string) *ScriptedClient {
	return NewScriptedClient(func(_ context.Context, _ *LLMRequest) (*LLMResponse, error) {
		return &LLMResponse{Content: content}, nil
	})
}

// NewFailingClient always fails with err.
func NewFailingClient(err error) *ScriptedClient {
	return NewScriptedClient(func(_ context.Context, _ *LLMRequest) (*LLMResponse, error) {
		return nil, err
	})
}

func (c *ScriptedClient) GenerateContent(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	responder := c.responder
	c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return responder(ctx, req)
}

// Requests returns the requests seen so far.
func (c *ScriptedClient) Requests() []*LLMRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*LLMRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func (c *ScriptedClient) Close() error {
	return nil
}
