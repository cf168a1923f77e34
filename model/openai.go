package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIChatModel implements ChatModel against OpenAI's chat completions
// API, retrying transient failures (timeouts, 5xx, rate limits) with linear
// backoff.
type OpenAIChatModel struct {
	apiKey     string
	modelName  string
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIChatModel builds an OpenAIChatModel. An empty modelName defaults
// to "gpt-4o".
func NewOpenAIChatModel(apiKey, modelName string) *OpenAIChatModel {
	if modelName == "" {
		modelName = "gpt-4o"
	}
	return &OpenAIChatModel{apiKey: apiKey, modelName: modelName, maxRetries: 3, retryDelay: time.Second}
}

func (m *OpenAIChatModel) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (ChatOut, error) {
	if err := ctx.Err(); err != nil {
		return ChatOut{}, err
	}

	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		out, err := m.complete(ctx, messages, tools)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isTransientOpenAIError(err) || attempt >= m.maxRetries {
			break
		}

		select {
		case <-time.After(m.retryDelay * time.Duration(attempt+1)):
		case <-ctx.Done():
			return ChatOut{}, ctx.Err()
		}
	}
	return ChatOut{}, fmt.Errorf("openai: failed after %d retries: %w", m.maxRetries, lastErr)
}

func (m *OpenAIChatModel) complete(ctx context.Context, messages []Message, tools []ToolSpec) (ChatOut, error) {
	if m.apiKey == "" {
		return ChatOut{}, errors.New("openai API key is required")
	}

	client := openaisdk.NewClient(option.WithAPIKey(m.apiKey))
	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(m.modelName),
		Messages: openaiMessages(messages),
	}
	if len(tools) > 0 {
		params.Tools = openaiTools(tools)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return ChatOut{}, fmt.Errorf("openai API error: %w", err)
	}
	return openaiChatOut(resp), nil
}

func isTransientOpenAIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "network", "connection", "temporary", "rate limit", "503", "502", "500"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func openaiMessages(messages []Message) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out[i] = openaisdk.SystemMessage(msg.Content)
		case RoleAssistant:
			out[i] = openaisdk.AssistantMessage(msg.Content)
		default:
			out[i] = openaisdk.UserMessage(msg.Content)
		}
	}
	return out
}

func openaiTools(tools []ToolSpec) []openaisdk.ChatCompletionToolParam {
	out := make([]openaisdk.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		out[i] = openaisdk.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openaisdk.String(t.Description),
				Parameters:  shared.FunctionParameters(t.Schema),
			},
		}
	}
	return out
}

func openaiChatOut(resp *openaisdk.ChatCompletion) ChatOut {
	var out ChatOut
	if len(resp.Choices) == 0 {
		return out
	}
	msg := resp.Choices[0].Message
	out.Text = msg.Content
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{Name: tc.Function.Name, Input: parseToolArguments(tc.Function.Arguments)})
	}
	return out
}

func parseToolArguments(jsonArgs string) map[string]interface{} {
	if jsonArgs == "" {
		return nil
	}
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(jsonArgs), &result); err != nil {
		return map[string]interface{}{"_raw": jsonArgs}
	}
	return result
}
