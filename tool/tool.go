// Package tool provides the Tool contract used by tool nodes, plus a few
// reference implementations (HTTP-backed, mock).
package tool

import "context"

// Tool is an executable action an LLM (or a tool node directly) can invoke.
// Name must match the tool name the compiler resolves a tool node or
// tool_filter entry against; it is never inferred from the Go type.
type Tool interface {
	// Name is the tool's registry key, e.g. "search_web".
	Name() string

	// Call executes the tool. input keys/shape match the tool's advertised
	// schema. Implementations should check ctx before expensive work.
	Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error)
}
