// Package ir defines the canonical v3 GraphConfig data model: the typed
// intermediate representation every raw payload is parsed or upgraded into
// before canonicalization, validation, and compilation.
package ir

// NodeKind discriminates the four executable node variants.
type NodeKind string

const (
	NodeLLM       NodeKind = "llm"
	NodeTool      NodeKind = "tool"
	NodeTransform NodeKind = "transform"
	NodeComponent NodeKind = "component"
)

// Node is a tagged variant over the four node kinds. Exactly one of the
// *Config fields is populated, matching Kind; the compiler switches on Kind
// and never inspects more than one config.
type Node struct {
	ID          string
	Name        string
	Description string
	Reads       []string
	Writes      []string

	Kind NodeKind

	LLM       *LLMNodeConfig
	Tool      *ToolNodeConfig
	Transform *TransformNodeConfig
	Component *ComponentNodeConfig
}

// LLMNodeConfig configures an llm node.
type LLMNodeConfig struct {
	PromptTemplate      string
	OutputKey           string
	ModelOverride       *string
	TemperatureOverride *float64
	MaxTokens           *int
	ToolsEnabled        bool
	ToolFilter          []string
	MaxIterations       int
	MessageKey          *string
}

// DefaultLLMNodeConfig mirrors the original schema's field defaults.
func DefaultLLMNodeConfig() LLMNodeConfig {
	return LLMNodeConfig{
		OutputKey:     "response",
		ToolsEnabled:  true,
		MaxIterations: 10,
	}
}

// ToolNodeConfig configures a tool node.
type ToolNodeConfig struct {
	ExecuteAll     bool
	ToolFilter     []string
	OutputKey      string
	TimeoutSeconds int
}

// DefaultToolNodeConfig mirrors the original schema's field defaults.
func DefaultToolNodeConfig() ToolNodeConfig {
	return ToolNodeConfig{
		ExecuteAll:     true,
		OutputKey:      "tool_results",
		TimeoutSeconds: 60,
	}
}

// TransformNodeConfig configures a transform node.
type TransformNodeConfig struct {
	Template  string
	OutputKey string
	InputKeys []string
}

// ComponentRef names a registered component and a SemVer constraint on its
// version ("*" matches any registered version).
type ComponentRef struct {
	Key     string
	Version string
}

// DefaultComponentRef returns the wildcard-version zero value.
func DefaultComponentRef() ComponentRef {
	return ComponentRef{Version: "*"}
}

// ComponentNodeConfig configures a component node.
type ComponentNodeConfig struct {
	ComponentRef    ComponentRef
	ConfigOverrides map[string]any
}
