package builtin

import (
	"github.com/xyzen-dev/agentgraph/compile"
	"github.com/xyzen-dev/agentgraph/ir"
)

// DeepResearch returns the four components create_deep_research_config
// wires together by key: "deep_research:clarify", "deep_research:brief",
// "deep_research:supervisor", "deep_research:final_report". Each is a small
// standalone sub-graph; the phase ordering and routing between them lives in
// whatever parent graph references them by key, not inside these components
// themselves.
func DeepResearch() []compile.Component {
	return []compile.Component{
		deepResearchClarify(),
		deepResearchBrief(),
		deepResearchSupervisor(),
		deepResearchFinalReport(),
	}
}

// deepResearchClarify decides whether the user's request needs a
// clarifying question before research begins. Its llm node writes the
// clarifying question text (or an empty string) to need_clarification;
// truthy/falsy on that single field is enough for the parent graph's
// routing, since a non-empty question IS the signal to ask it. A second
// field, skip_research, always resolves to empty/falsy here: the original
// system derives it from a richer turn-classification step this retrieval
// pack doesn't include the source for (see DESIGN.md).
func deepResearchClarify() compile.Component {
	ask := ir.DefaultLLMNodeConfig()
	ask.OutputKey = "need_clarification"
	ask.PromptTemplate = "If the user's request is ambiguous, respond with a single clarifying question. " +
		"If it is clear enough to research, respond with an empty string."
	ask.ToolsEnabled = false

	finalize := ir.TransformNodeConfig{
		Template:  "",
		OutputKey: "skip_research",
		InputKeys: []string{"need_clarification"},
	}

	return staticComponent{
		metadata: compile.ComponentMetadata{Key: "deep_research:clarify", Version: "2.0.0"},
		build: func() ir.GraphConfig {
			return ir.GraphConfig{
				SchemaVersion: ir.SchemaVersion,
				Key:           "deep_research_clarify",
				Revision:      ir.DefaultRevision,
				Graph: ir.GraphIR{
					Entrypoints: []string{"ask"},
					Nodes: []ir.Node{
						{ID: "ask", Name: "Ask Clarification", Kind: ir.NodeLLM, Reads: []string{"messages"}, Writes: []string{"messages", "need_clarification"}, LLM: &ask},
						{ID: "finalize", Name: "Finalize", Kind: ir.NodeTransform, Reads: []string{"need_clarification"}, Writes: []string{"skip_research"}, Transform: &finalize},
					},
					Edges: []ir.Edge{
						{FromNode: "ask", ToNode: "finalize"},
						{FromNode: "finalize", ToNode: ir.End},
					},
				},
				Limits: ir.DefaultLimits(),
				Metadata: &ir.GraphMetadata{
					DisplayName: "Clarify with User",
					Description: "Analyze query and determine if clarification is needed",
				},
			}
		},
	}
}

func deepResearchBrief() compile.Component {
	brief := ir.DefaultLLMNodeConfig()
	brief.OutputKey = "research_brief"
	brief.ToolsEnabled = false
	brief.PromptTemplate = "Transform the user's messages into a structured research brief."

	return staticComponent{
		metadata: compile.ComponentMetadata{Key: "deep_research:brief", Version: "2.0.0"},
		build: func() ir.GraphConfig {
			return ir.GraphConfig{
				SchemaVersion: ir.SchemaVersion,
				Key:           "deep_research_brief",
				Revision:      ir.DefaultRevision,
				Graph: ir.GraphIR{
					Entrypoints: []string{"brief"},
					Nodes: []ir.Node{
						{ID: "brief", Name: "Write Research Brief", Kind: ir.NodeLLM, Reads: []string{"messages"}, Writes: []string{"research_brief"}, LLM: &brief},
					},
					Edges: []ir.Edge{
						{FromNode: "brief", ToNode: ir.End},
					},
				},
				Limits: ir.DefaultLimits(),
				Metadata: &ir.GraphMetadata{
					DisplayName: "Write Research Brief",
					Description: "Transform user messages into structured research brief",
				},
			}
		},
	}
}

// deepResearchSupervisor coordinates research by delegating to tools (the
// sub-researcher dispatch in the original system); it reuses the same
// agent/tool-loop shape as the ReAct component since "delegate to workers,
// loop until done" is the same control pattern.
func deepResearchSupervisor() compile.Component {
	agent := ir.DefaultLLMNodeConfig()
	agent.OutputKey = "notes"
	agent.PromptTemplate = "Coordinate research by delegating to sub-researcher tools. " +
		"Summarize findings into notes once research is sufficient."

	toolCfg := ir.DefaultToolNodeConfig()
	toolCfg.OutputKey = "notes"

	return staticComponent{
		metadata: compile.ComponentMetadata{Key: "deep_research:supervisor", Version: "2.0.0"},
		build: func() ir.GraphConfig {
			return ir.GraphConfig{
				SchemaVersion: ir.SchemaVersion,
				Key:           "deep_research_supervisor",
				Revision:      ir.DefaultRevision,
				Graph: ir.GraphIR{
					Entrypoints: []string{"supervisor_agent"},
					Nodes: []ir.Node{
						{ID: "supervisor_agent", Name: "Supervisor Agent", Kind: ir.NodeLLM, Reads: []string{"messages", "research_brief", "notes"}, Writes: []string{"messages", "notes"}, LLM: &agent},
						{ID: "supervisor_tools", Name: "Sub-researcher Tools", Kind: ir.NodeTool, Reads: []string{"messages"}, Writes: []string{"messages", "notes"}, Tool: &toolCfg},
					},
					Edges: []ir.Edge{
						{FromNode: "supervisor_agent", ToNode: "supervisor_tools", When: ir.Guard{Kind: ir.GuardBuiltin, Builtin: ir.HasToolCalls}, Priority: 1},
						{FromNode: "supervisor_agent", ToNode: ir.End, When: ir.Guard{Kind: ir.GuardBuiltin, Builtin: ir.NoToolCalls}, Priority: 0},
						{FromNode: "supervisor_tools", ToNode: "supervisor_agent"},
					},
				},
				State: ir.StateContract{
					Reducers: map[string]ir.ReducerKind{ir.MessagesPath: ir.ReducerAddMessages},
				},
				Limits: ir.Limits{MaxTimeS: 600, MaxSteps: 256, MaxConcurrency: 12},
				Metadata: &ir.GraphMetadata{
					DisplayName: "Research Supervisor",
					Description: "Coordinate research by delegating to sub-researchers",
				},
			}
		},
	}
}

func deepResearchFinalReport() compile.Component {
	report := ir.DefaultLLMNodeConfig()
	report.OutputKey = "final_report"
	report.ToolsEnabled = false
	report.PromptTemplate = "Synthesize the research brief and collected notes into a comprehensive final report."

	return staticComponent{
		metadata: compile.ComponentMetadata{Key: "deep_research:final_report", Version: "2.0.0"},
		build: func() ir.GraphConfig {
			return ir.GraphConfig{
				SchemaVersion: ir.SchemaVersion,
				Key:           "deep_research_final_report",
				Revision:      ir.DefaultRevision,
				Graph: ir.GraphIR{
					Entrypoints: []string{"final_report"},
					Nodes: []ir.Node{
						{ID: "final_report", Name: "Final Report", Kind: ir.NodeLLM, Reads: []string{"messages", "research_brief", "notes"}, Writes: []string{"messages", "final_report"}, LLM: &report},
					},
					Edges: []ir.Edge{
						{FromNode: "final_report", ToNode: ir.End},
					},
				},
				State: ir.StateContract{
					Reducers: map[string]ir.ReducerKind{ir.MessagesPath: ir.ReducerAddMessages},
				},
				Limits: ir.DefaultLimits(),
				Metadata: &ir.GraphMetadata{
					DisplayName: "Final Report",
					Description: "Synthesize research findings into comprehensive report",
				},
			}
		},
	}
}
