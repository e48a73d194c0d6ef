package llmadapter

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// LangChainAdapter adapts a langchaingo model to LLMClient.
type LangChainAdapter struct {
	model    llms.Model
	provider ProviderConfig
}

// NewLangChainAdapter creates the provider model and wraps it.
func NewLangChainAdapter(config *ProviderConfig) (*LangChainAdapter, error) {
	model, err := CreateLLMFactory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM model: %w", err)
	}
	return &LangChainAdapter{model: model, provider: *config}, nil
}

// NewLangChainAdapterWithModel wraps an already constructed model.
func NewLangChainAdapterWithModel(model llms.Model, config ProviderConfig) *LangChainAdapter {
	return &LangChainAdapter{model: model, provider: config}
}

func (a *LangChainAdapter) GenerateContent(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	resp, err := a.model.GenerateContent(ctx, a.convertMessages(req), a.buildCallOptions(req)...)
	if err != nil {
		if llmErr := NewErrorParser(string(a.provider.Provider)).ParseError(err); llmErr != nil {
			return nil, llmErr
		}
		return nil, fmt.Errorf("langchain GenerateContent failed: %w", err)
	}
	return a.convertResponse(resp)
}

func (a *LangChainAdapter) convertMessages(req *LLMRequest) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		messages = append(messages, llms.TextParts(a.mapMessageRole(msg.Role), msg.Content))
	}
	return messages
}

func (a *LangChainAdapter) mapMessageRole(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

func (a *LangChainAdapter) buildCallOptions(req *LLMRequest) []llms.CallOption {
	var options []llms.CallOption
	// Zero is meaningful here: answers assume greedy decoding.
	options = append(options, llms.WithTemperature(req.Options.Temperature))
	if req.Options.MaxTokens > 0 {
		options = append(options, llms.WithMaxTokens(int(req.Options.MaxTokens)))
	}
	if len(req.Options.StopWords) > 0 {
		options = append(options, llms.WithStopWords(req.Options.StopWords))
	}
	if req.Options.UseJSONMode {
		options = append(options, llms.WithJSONMode())
	}
	return options
}

func (a *LangChainAdapter) convertResponse(resp *llms.ContentResponse) (*LLMResponse, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}
	choice := resp.Choices[0]
	out := &LLMResponse{Content: choice.Content}
	if info := choice.GenerationInfo; info != nil {
		out.Usage = usageFromInfo(info)
	}
	return out, nil
}

// usageFromInfo reads the token counters providers report in GenerationInfo.
func usageFromInfo(info map[string]any) *Usage {
	prompt := intFromInfo(info, "PromptTokens", "prompt_tokens")
	completion := intFromInfo(info, "CompletionTokens", "completion_tokens")
	total := intFromInfo(info, "TotalTokens", "total_tokens")
	if prompt == 0 && completion == 0 && total == 0 {
		return nil
	}
	if total == 0 {
		total = prompt + completion
	}
	return &Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: total}
}

func intFromInfo(info map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

func (a *LangChainAdapter) Close() error {
	return nil
}
