package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleChatModel implements ChatModel against Google's Gemini API. Safety
// filter blocks surface as a *SafetyFilterError so callers can distinguish
// them from transport failures with errors.As.
type GoogleChatModel struct {
	apiKey    string
	modelName string
}

// NewGoogleChatModel builds a GoogleChatModel. An empty modelName defaults
// to "gemini-2.5-flash".
func NewGoogleChatModel(apiKey, modelName string) *GoogleChatModel {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &GoogleChatModel{apiKey: apiKey, modelName: modelName}
}

func (m *GoogleChatModel) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (ChatOut, error) {
	if err := ctx.Err(); err != nil {
		return ChatOut{}, err
	}
	if m.apiKey == "" {
		return ChatOut{}, errors.New("google API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(m.apiKey))
	if err != nil {
		return ChatOut{}, fmt.Errorf("google: failed to create client: %w", err)
	}
	defer client.Close()

	genModel := client.GenerativeModel(m.modelName)
	if len(tools) > 0 {
		genModel.Tools = googleTools(tools)
	}

	resp, err := genModel.GenerateContent(ctx, googleParts(messages)...)
	if err != nil {
		return ChatOut{}, fmt.Errorf("google API error: %w", err)
	}
	return googleChatOut(resp)
}

func googleParts(messages []Message) []genai.Part {
	var parts []genai.Part
	for _, msg := range messages {
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
	}
	return parts
}

func googleTools(tools []ToolSpec) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		declarations[i] = &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  googleSchema(t.Schema),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// googleSchema converts the top-level properties/required fields of a JSON
// schema into genai's schema shape. Nested object/array schemas aren't
// walked recursively; only the top level of ToolSpec.Schema is converted.
func googleSchema(schema map[string]interface{}) *genai.Schema {
	if schema == nil {
		return nil
	}
	result := &genai.Schema{Type: genai.TypeObject}

	if props, ok := schema["properties"].(map[string]interface{}); ok {
		properties := make(map[string]*genai.Schema, len(props))
		for key, val := range props {
			propMap, ok := val.(map[string]interface{})
			if !ok {
				continue
			}
			propSchema := &genai.Schema{}
			if typeStr, ok := propMap["type"].(string); ok {
				propSchema.Type = googleType(typeStr)
			}
			if desc, ok := propMap["description"].(string); ok {
				propSchema.Description = desc
			}
			properties[key] = propSchema
		}
		result.Properties = properties
	}

	if required, ok := schema["required"].([]string); ok {
		result.Required = required
	} else if required, ok := schema["required"].([]interface{}); ok {
		for _, v := range required {
			if s, ok := v.(string); ok {
				result.Required = append(result.Required, s)
			}
		}
	}
	return result
}

func googleType(typeStr string) genai.Type {
	switch typeStr {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

func googleChatOut(resp *genai.GenerateContentResponse) (ChatOut, error) {
	var out ChatOut
	if len(resp.Candidates) == 0 {
		return out, nil
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return ChatOut{}, newSafetyFilterError(candidate)
	}
	if candidate.Content == nil {
		return out, nil
	}
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += string(p)
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: p.Name, Input: p.Args})
		}
	}
	return out, nil
}

func newSafetyFilterError(candidate *genai.Candidate) *SafetyFilterError {
	category := "unspecified"
	for _, rating := range candidate.SafetyRatings {
		if rating.Blocked {
			category = rating.Category.String()
			break
		}
	}
	return &SafetyFilterError{reason: candidate.FinishReason.String(), category: category}
}

// SafetyFilterError represents a Gemini safety filter block. Check for it
// with errors.As to distinguish a content block from a transport error.
type SafetyFilterError struct {
	reason   string
	category string
}

func (e *SafetyFilterError) Error() string { return "content blocked by safety filter: " + e.category }
func (e *SafetyFilterError) Category() string { return e.category }
func (e *SafetyFilterError) Reason() string   { return e.reason }
