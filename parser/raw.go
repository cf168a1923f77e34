package parser

import "encoding/json"

// The raw* types mirror the wire shape field-for-field. Decoding them with
// DisallowUnknownFields gives closed-world validation for free on every
// struct-shaped field; kind-specific node config and edge guards are decoded
// a second time from captured json.RawMessage once their discriminator tag
// is known.

type rawGraphConfig struct {
	SchemaVersion string          `json:"schema_version"`
	Key           string          `json:"key"`
	Revision      *int            `json:"revision"`
	Graph         rawGraphIR      `json:"graph"`
	State         *rawStateConfig `json:"state"`
	Deps          *rawDeps        `json:"deps"`
	Limits        *rawLimits      `json:"limits"`
	Metadata      *rawMetadata    `json:"metadata"`
	UI            map[string]any  `json:"ui"`
}

type rawGraphIR struct {
	Nodes       []rawNode `json:"nodes"`
	Edges       []rawEdge `json:"edges"`
	Entrypoints []string  `json:"entrypoints"`
}

type rawNode struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Reads       []string        `json:"reads"`
	Writes      []string        `json:"writes"`
	Kind        string          `json:"kind"`
	Config      json.RawMessage `json:"config"`
}

type rawLLMConfig struct {
	PromptTemplate      string   `json:"prompt_template"`
	OutputKey           *string  `json:"output_key"`
	ModelOverride       *string  `json:"model_override"`
	TemperatureOverride *float64 `json:"temperature_override"`
	MaxTokens           *int     `json:"max_tokens"`
	ToolsEnabled        *bool    `json:"tools_enabled"`
	ToolFilter          []string `json:"tool_filter"`
	MaxIterations       *int     `json:"max_iterations"`
	MessageKey          *string  `json:"message_key"`
}

type rawToolConfig struct {
	ExecuteAll     *bool    `json:"execute_all"`
	ToolFilter     []string `json:"tool_filter"`
	OutputKey      *string  `json:"output_key"`
	TimeoutSeconds *int     `json:"timeout_seconds"`
}

type rawTransformConfig struct {
	Template  string   `json:"template"`
	OutputKey string   `json:"output_key"`
	InputKeys []string `json:"input_keys"`
}

type rawComponentRef struct {
	Key     string  `json:"key"`
	Version *string `json:"version"`
}

type rawComponentConfig struct {
	ComponentRef    rawComponentRef `json:"component_ref"`
	ConfigOverrides map[string]any  `json:"config_overrides"`
}

type rawEdge struct {
	FromNode string          `json:"from_node"`
	ToNode   string          `json:"to_node"`
	When     json.RawMessage `json:"when"`
	Priority int             `json:"priority"`
	Label    *string         `json:"label"`
}

type rawPredicate struct {
	StatePath string  `json:"state_path"`
	Operator  string  `json:"operator"`
	Value     any     `json:"value"`
}

type rawFieldSchema struct {
	Type        string  `json:"type"`
	Description *string `json:"description"`
	Default     any     `json:"default"`
}

type rawStateConfig struct {
	Schema   map[string]rawFieldSchema `json:"schema"`
	Reducers map[string]string         `json:"reducers"`
}

type rawLimits struct {
	MaxTimeS       *int `json:"max_time_s"`
	MaxSteps       *int `json:"max_steps"`
	MaxConcurrency *int `json:"max_concurrency"`
}

type rawModelDep struct {
	Key      string  `json:"key"`
	Provider *string `json:"provider"`
	Version  *string `json:"version"`
}

type rawPromptDep struct {
	Key     string  `json:"key"`
	Version *string `json:"version"`
}

type rawComponentDep struct {
	Key     string  `json:"key"`
	Version *string `json:"version"`
}

type rawDeps struct {
	Models     []rawModelDep     `json:"models"`
	Tools      []string          `json:"tools"`
	Prompts    []rawPromptDep    `json:"prompts"`
	Components []rawComponentDep `json:"components"`
}

type rawMetadata struct {
	DisplayName  *string  `json:"display_name"`
	Description  *string  `json:"description"`
	Tags         []string `json:"tags"`
	AgentVersion *string  `json:"agent_version"`
}
