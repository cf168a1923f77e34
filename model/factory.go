package model

import "context"

// ModelOptions carries the per-node overrides an llm node may supply;
// Model nil means "use the graph's/registry's default model for this key".
type ModelOptions struct {
	Model       *string
	Temperature *float64
	MaxTokens   *int
}

// LLMFactory builds a ChatModel for a given set of overrides. Providers map
// provider-specific credentials behind this uniform interface; an unknown
// or unsupported model name should produce an error the caller can surface
// as MODEL_NOT_SUPPORTED.
type LLMFactory interface {
	Build(ctx context.Context, opts ModelOptions) (ChatModel, error)
}

// LLMFactoryFunc adapts a plain function to LLMFactory.
type LLMFactoryFunc func(ctx context.Context, opts ModelOptions) (ChatModel, error)

func (f LLMFactoryFunc) Build(ctx context.Context, opts ModelOptions) (ChatModel, error) {
	return f(ctx, opts)
}
