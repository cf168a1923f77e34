package model

import (
	"context"
	"errors"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicChatModel implements ChatModel against Anthropic's Messages API.
// System messages are extracted and sent via the API's separate system
// parameter rather than as a conversation turn.
type AnthropicChatModel struct {
	apiKey    string
	modelName string
	maxTokens int
}

// NewAnthropicChatModel builds an AnthropicChatModel. An empty modelName
// defaults to the latest Sonnet tier; maxTokens defaults to 4096 when <= 0.
func NewAnthropicChatModel(apiKey, modelName string, maxTokens int) *AnthropicChatModel {
	if modelName == "" {
		modelName = "claude-sonnet-4-5-20250929"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicChatModel{apiKey: apiKey, modelName: modelName, maxTokens: maxTokens}
}

func (m *AnthropicChatModel) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (ChatOut, error) {
	if err := ctx.Err(); err != nil {
		return ChatOut{}, err
	}
	if m.apiKey == "" {
		return ChatOut{}, errors.New("anthropic API key is required")
	}

	systemPrompt, conversation := extractSystemPrompt(messages)

	client := anthropicsdk.NewClient(option.WithAPIKey(m.apiKey))
	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(m.modelName),
		Messages:  anthropicMessages(conversation),
		MaxTokens: int64(m.maxTokens),
	}
	if systemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: systemPrompt}}
	}
	if len(tools) > 0 {
		params.Tools = anthropicTools(tools)
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return ChatOut{}, fmt.Errorf("anthropic: %w", err)
	}
	return anthropicChatOut(resp), nil
}

func extractSystemPrompt(messages []Message) (string, []Message) {
	var system string
	var rest []Message
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content
			continue
		}
		rest = append(rest, msg)
	}
	return system, rest
}

func anthropicMessages(messages []Message) []anthropicsdk.MessageParam {
	out := make([]anthropicsdk.MessageParam, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleAssistant:
			out[i] = anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(msg.Content))
		default:
			out[i] = anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(msg.Content))
		}
	}
	return out
}

func anthropicTools(tools []ToolSpec) []anthropicsdk.ToolUnionParam {
	out := make([]anthropicsdk.ToolUnionParam, len(tools))
	for i, t := range tools {
		var properties any
		var required []string
		if t.Schema != nil {
			if props, ok := t.Schema["properties"]; ok {
				properties = props
			}
			if req, ok := t.Schema["required"].([]string); ok {
				required = req
			} else if req, ok := t.Schema["required"].([]interface{}); ok {
				for _, v := range req {
					if s, ok := v.(string); ok {
						required = append(required, s)
					}
				}
			}
		}
		out[i] = anthropicsdk.ToolUnionParam{
			OfTool: &anthropicsdk.ToolParam{
				Name:        t.Name,
				Description: anthropicsdk.String(t.Description),
				InputSchema: anthropicsdk.ToolInputSchemaParam{Properties: properties, Required: required},
			},
		}
	}
	return out
}

func anthropicChatOut(resp *anthropicsdk.Message) ChatOut {
	var out ChatOut
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropicsdk.TextBlock:
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += b.Text
		case anthropicsdk.ToolUseBlock:
			input, _ := b.Input.(map[string]interface{})
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: b.Name, Input: input})
		}
	}
	return out
}
