package task

import (
	"context"
	"fmt"

	"github.com/compozy/hybridqa/engine/core"
	llmadapter "github.com/compozy/hybridqa/engine/llm/adapter"
	"github.com/compozy/hybridqa/pkg/logger"
)

// Runner executes task definitions against a model client.
type Runner struct {
	client   llmadapter.LLMClient
	options  llmadapter.CallOptions
	renderer *Renderer
}

// NewRunner binds a client and the call options every task shares.
func NewRunner(client llmadapter.LLMClient, options llmadapter.CallOptions) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Runner{client: client, options: options, renderer: renderer}, nil
}

// Run renders the task, calls the model once and parses the reply.
func (r *Runner) Run(ctx context.Context, def *Definition, inputs map[string]string) (Result, error) {
	req, err := r.renderer.Request(def, inputs)
	if err != nil {
		return nil, err
	}
	req.Options = r.options
	resp, err := r.client.GenerateContent(ctx, req)
	if err != nil {
		return nil, core.NewError(err, core.ErrCodeLLMRequest, map[string]any{"task": def.Name})
	}
	log := logger.FromContext(ctx)
	if resp.Usage != nil {
		log.Debug("Task completed", "task", def.Name, "tokens", resp.Usage.TotalTokens)
	} else {
		log.Debug("Task completed", "task", def.Name)
	}
	return ParseReply(def, resp.Content)
}
