package main

import (
	"context"
	"fmt"
	"os"

	"github.com/xyzen-dev/agentgraph/model"
)

// buildLLMFactory wires a model.LLMFactory for the given provider. An
// unrecognized provider (or "mock") defaults to model.MockChatModel so
// `run` works offline without API credentials.
func buildLLMFactory(provider, modelName string) model.LLMFactory {
	return model.LLMFactoryFunc(func(ctx context.Context, opts model.ModelOptions) (model.ChatModel, error) {
		name := modelName
		if opts.Model != nil && *opts.Model != "" {
			name = *opts.Model
		}
		switch provider {
		case "anthropic":
			key := os.Getenv("ANTHROPIC_API_KEY")
			if key == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for --provider anthropic")
			}
			maxTokens := 4096
			if opts.MaxTokens != nil {
				maxTokens = *opts.MaxTokens
			}
			return model.NewAnthropicChatModel(key, name, maxTokens), nil
		case "openai":
			key := os.Getenv("OPENAI_API_KEY")
			if key == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY is required for --provider openai")
			}
			return model.NewOpenAIChatModel(key, name), nil
		case "google":
			key := os.Getenv("GOOGLE_API_KEY")
			if key == "" {
				return nil, fmt.Errorf("GOOGLE_API_KEY is required for --provider google")
			}
			return model.NewGoogleChatModel(key, name), nil
		default:
			return &model.MockChatModel{}, nil
		}
	})
}
