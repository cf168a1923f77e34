package legacy

import "encoding/json"

// rawV2* mirror the v2 wire shape for lenient decoding: unlike the v3
// parser, legacy payloads are not closed-world — old deployments carry
// extra metadata keys nobody ever finished removing.

type rawV2Config struct {
	Version                 string                      `json:"version"`
	Nodes                   []rawV2Node                 `json:"nodes"`
	Edges                   []rawV2Edge                 `json:"edges"`
	EntryPoint              string                      `json:"entry_point"`
	CustomStateFields       map[string]rawV2FieldSchema `json:"custom_state_fields"`
	Metadata                map[string]any              `json:"metadata"`
	MaxExecutionTimeSeconds *int                        `json:"max_execution_time_seconds"`
	PromptConfig            map[string]any              `json:"prompt_config"`
	ToolConfig              *rawV2ToolFilterConfig      `json:"tool_config"`
}

type rawV2ToolFilterConfig struct {
	ToolFilter []string `json:"tool_filter"`
}

type rawV2Node struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Type            string                 `json:"type"`
	Description     *string                `json:"description"`
	Position        *rawV2Position         `json:"position"`
	LLMConfig       *rawV2LLMConfig        `json:"llm_config"`
	ToolConfig      *rawV2ToolConfig       `json:"tool_config"`
	TransformConfig *rawV2TransformConfig  `json:"transform_config"`
	ComponentConfig *rawV2ComponentConfig  `json:"component_config"`
}

type rawV2Position struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type rawV2LLMConfig struct {
	PromptTemplate      string   `json:"prompt_template"`
	OutputKey           string   `json:"output_key"`
	ModelOverride       *string  `json:"model_override"`
	TemperatureOverride *float64 `json:"temperature_override"`
	MaxTokens           *int     `json:"max_tokens"`
	ToolsEnabled        *bool    `json:"tools_enabled"`
	ToolFilter          []string `json:"tool_filter"`
	MaxIterations       *int     `json:"max_iterations"`
	MessageKey          *string  `json:"message_key"`
}

type rawV2ToolConfig struct {
	ExecuteAll     *bool    `json:"execute_all"`
	ToolFilter     []string `json:"tool_filter"`
	OutputKey      string   `json:"output_key"`
	TimeoutSeconds *int     `json:"timeout_seconds"`
}

type rawV2TransformConfig struct {
	Template  string   `json:"template"`
	OutputKey string   `json:"output_key"`
	InputKeys []string `json:"input_keys"`
}

type rawV2ComponentRef struct {
	Key     string `json:"key"`
	Version string `json:"version"`
}

type rawV2ComponentConfig struct {
	ComponentRef    rawV2ComponentRef `json:"component_ref"`
	ConfigOverrides map[string]any    `json:"config_overrides"`
}

type rawV2Edge struct {
	FromNode  string          `json:"from_node"`
	ToNode    string          `json:"to_node"`
	Condition json.RawMessage `json:"condition"`
	Priority  int             `json:"priority"`
	Label     *string         `json:"label"`
}

type rawV2FieldSchema struct {
	Type        string  `json:"type"`
	Description *string `json:"description"`
	Default     any     `json:"default"`
	Reducer     string  `json:"reducer"`
}

// ParseV2 lenient-decodes a v2 payload (or a v1 payload, which is shaped
// closely enough to v2 that the same decoder handles both) into the typed
// GraphConfig.
func ParseV2(data []byte) (*GraphConfig, error) {
	var raw rawV2Config
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return fromRaw(raw)
}

func fromRaw(raw rawV2Config) (*GraphConfig, error) {
	cfg := &GraphConfig{
		Version:                 raw.Version,
		EntryPoint:              raw.EntryPoint,
		Metadata:                raw.Metadata,
		MaxExecutionTimeSeconds: raw.MaxExecutionTimeSeconds,
		PromptConfig:            raw.PromptConfig,
	}
	if cfg.Metadata == nil {
		cfg.Metadata = map[string]any{}
	}
	if raw.ToolConfig != nil {
		cfg.ToolConfig = &ToolFilterConfig{ToolFilter: raw.ToolConfig.ToolFilter}
	}

	cfg.CustomStateFields = map[string]StateFieldSchema{}
	for key, f := range raw.CustomStateFields {
		cfg.CustomStateFields[key] = StateFieldSchema{
			Type:        f.Type,
			Description: f.Description,
			Default:     f.Default,
			Reducer:     ReducerType(f.Reducer),
		}
	}

	for _, n := range raw.Nodes {
		node, err := nodeFromRaw(n)
		if err != nil {
			return nil, err
		}
		cfg.Nodes = append(cfg.Nodes, node)
	}

	for _, e := range raw.Edges {
		edge, err := edgeFromRaw(e)
		if err != nil {
			return nil, err
		}
		cfg.Edges = append(cfg.Edges, edge)
	}

	return cfg, nil
}

func nodeFromRaw(n rawV2Node) (GraphNodeConfig, error) {
	node := GraphNodeConfig{
		ID:          n.ID,
		Name:        n.Name,
		Type:        NodeType(n.Type),
		Description: n.Description,
	}
	if n.Position != nil && n.Position.X != nil && n.Position.Y != nil {
		node.Position = &Position{X: *n.Position.X, Y: *n.Position.Y}
	}
	if n.LLMConfig != nil {
		node.LLMConfig = &LLMNodeConfig{
			PromptTemplate:      n.LLMConfig.PromptTemplate,
			OutputKey:           n.LLMConfig.OutputKey,
			ModelOverride:       n.LLMConfig.ModelOverride,
			TemperatureOverride: n.LLMConfig.TemperatureOverride,
			MaxTokens:           n.LLMConfig.MaxTokens,
			ToolsEnabled:        n.LLMConfig.ToolsEnabled != nil && *n.LLMConfig.ToolsEnabled,
			ToolFilter:          n.LLMConfig.ToolFilter,
			MessageKey:          n.LLMConfig.MessageKey,
		}
		if n.LLMConfig.MaxIterations != nil {
			node.LLMConfig.MaxIterations = *n.LLMConfig.MaxIterations
		}
	}
	if n.ToolConfig != nil {
		tc := &ToolNodeConfig{
			ToolFilter: n.ToolConfig.ToolFilter,
			OutputKey:  n.ToolConfig.OutputKey,
		}
		if n.ToolConfig.ExecuteAll != nil {
			tc.ExecuteAll = *n.ToolConfig.ExecuteAll
		}
		if n.ToolConfig.TimeoutSeconds != nil {
			tc.TimeoutSeconds = *n.ToolConfig.TimeoutSeconds
		}
		node.ToolConfig = tc
	}
	if n.TransformConfig != nil {
		node.TransformConfig = &TransformNodeConfig{
			Template:  n.TransformConfig.Template,
			OutputKey: n.TransformConfig.OutputKey,
			InputKeys: n.TransformConfig.InputKeys,
		}
	}
	if n.ComponentConfig != nil {
		node.ComponentConfig = &ComponentNodeConfig{
			ComponentRef: ComponentRef{
				Key:     n.ComponentConfig.ComponentRef.Key,
				Version: n.ComponentConfig.ComponentRef.Version,
			},
			ConfigOverrides: n.ComponentConfig.ConfigOverrides,
		}
	}
	return node, nil
}

func edgeFromRaw(e rawV2Edge) (GraphEdgeConfig, error) {
	edge := GraphEdgeConfig{
		FromNode: e.FromNode,
		ToNode:   e.ToNode,
		Priority: e.Priority,
		Label:    e.Label,
	}
	cond, err := conditionFromRaw(e.Condition)
	if err != nil {
		return GraphEdgeConfig{}, err
	}
	edge.Condition = cond
	return edge, nil
}

func conditionFromRaw(raw json.RawMessage) (*Condition, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return &Condition{Builtin: ConditionType(asString)}, nil
	}
	var custom struct {
		StateKey string `json:"state_key"`
		Operator string `json:"operator"`
		Value    any    `json:"value"`
	}
	if err := json.Unmarshal(raw, &custom); err != nil {
		return nil, err
	}
	return &Condition{Custom: &CustomCondition{
		StateKey: custom.StateKey,
		Operator: ConditionOperator(custom.Operator),
		Value:    custom.Value,
	}}, nil
}
