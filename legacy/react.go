package legacy

// CreateReactConfig synthesizes the default ReAct v2 graph used whenever an
// agent has no stored config: a single LLM node that loops through a tool
// node until it stops requesting tool calls.
func CreateReactConfig(prompt string) *GraphConfig {
	toolsEnabled := true
	maxIterations := 10

	return &GraphConfig{
		Version: "2.0",
		Nodes: []GraphNodeConfig{
			{
				ID:   "agent",
				Name: "agent",
				Type: NodeTypeLLM,
				LLMConfig: &LLMNodeConfig{
					PromptTemplate: prompt,
					OutputKey:      "response",
					ToolsEnabled:   toolsEnabled,
					MaxIterations:  maxIterations,
				},
			},
			{
				ID:   "tools",
				Name: "tools",
				Type: NodeTypeTool,
				ToolConfig: &ToolNodeConfig{
					ExecuteAll:     true,
					OutputKey:      "tool_results",
					TimeoutSeconds: 60,
				},
			},
		},
		Edges: []GraphEdgeConfig{
			{FromNode: "START", ToNode: "agent"},
			{FromNode: "agent", ToNode: "tools", Condition: &Condition{Builtin: ConditionHasToolCalls}},
			{FromNode: "agent", ToNode: "END", Condition: &Condition{Builtin: ConditionNoToolCalls}},
			{FromNode: "tools", ToNode: "agent"},
		},
		EntryPoint:        "agent",
		CustomStateFields: map[string]StateFieldSchema{},
		Metadata:          map[string]any{"key": "react"},
	}
}
