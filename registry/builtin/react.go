package builtin

import (
	"github.com/xyzen-dev/agentgraph/compile"
	"github.com/xyzen-dev/agentgraph/ir"
)

// ReAct returns the built-in "react" component: a two-node agent/tools loop
// identical in shape to legacy.CreateReactConfig, expressed directly as v3
// IR so it can be registered and resolved like any other component.
func ReAct() compile.Component {
	return staticComponent{
		metadata: compile.ComponentMetadata{
			Key:     "react",
			Version: "1.0.0",
		},
		build: ReactGraphConfig,
	}
}

// ReactGraphConfig builds the default react agent/tools loop as a
// standalone top-level GraphConfig — the "no stored config" fallback
// agentfactory.Resolve uses, and the same shape the "react" component key
// resolves to.
func ReactGraphConfig() ir.GraphConfig {
	llmCfg := ir.DefaultLLMNodeConfig()
	llmCfg.PromptTemplate = "You are a helpful assistant. Use tools when they help answer the question."

	toolCfg := ir.DefaultToolNodeConfig()

	return ir.GraphConfig{
		SchemaVersion: ir.SchemaVersion,
		Key:           "react",
		Revision:      ir.DefaultRevision,
		Graph: ir.GraphIR{
			Entrypoints: []string{"agent"},
			Nodes: []ir.Node{
				{ID: "agent", Name: "Agent", Kind: ir.NodeLLM, Reads: []string{"messages"}, Writes: []string{"messages", "response"}, LLM: &llmCfg},
				{ID: "tools", Name: "Tools", Kind: ir.NodeTool, Reads: []string{"messages"}, Writes: []string{"messages", "tool_results"}, Tool: &toolCfg},
			},
			Edges: []ir.Edge{
				{FromNode: "agent", ToNode: "tools", When: ir.Guard{Kind: ir.GuardBuiltin, Builtin: ir.HasToolCalls}, Priority: 1},
				{FromNode: "agent", ToNode: ir.End, When: ir.Guard{Kind: ir.GuardBuiltin, Builtin: ir.NoToolCalls}, Priority: 0},
				{FromNode: "tools", ToNode: "agent"},
			},
		},
		State: ir.StateContract{
			Reducers: map[string]ir.ReducerKind{ir.MessagesPath: ir.ReducerAddMessages},
		},
		Limits: ir.DefaultLimits(),
		Metadata: &ir.GraphMetadata{
			DisplayName: "ReAct Agent",
			Description: "Single agent with a tool-execution loop",
			Tags:        []string{"react", "builtin"},
		},
	}
}
