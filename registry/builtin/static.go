// Package builtin provides the components ensure_registered loads on first
// call: the ReAct agent and the four deep-research phases, each grounded on
// the original system's agents/builtin and agents/components/deep_research
// packages.
package builtin

import (
	"github.com/xyzen-dev/agentgraph/compile"
	"github.com/xyzen-dev/agentgraph/ir"
	"github.com/xyzen-dev/agentgraph/model"
	"github.com/xyzen-dev/agentgraph/tool"
)

// staticComponent wraps a fixed ir.GraphConfig as a compile.Component. None
// of the built-in components reference other components, so BuildGraph
// never needs a ComponentResolver or GraphRunner of its own.
type staticComponent struct {
	metadata compile.ComponentMetadata
	build    func() ir.GraphConfig
}

func (c staticComponent) Metadata() compile.ComponentMetadata {
	return c.metadata
}

func (c staticComponent) BuildGraph(llmFactory model.LLMFactory, tools []tool.Tool, configOverrides map[string]any) (*compile.CompiledGraph, error) {
	toolMap := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		toolMap[t.Name()] = t
	}

	cfg := c.build()
	applyConfigOverrides(&cfg, configOverrides)

	return compile.Compile(cfg, compile.Options{
		LLMFactory: llmFactory,
		Tools:      toolMap,
	})
}

// applyConfigOverrides records overrides under UI["config_overrides"] and
// applies the recognized keys before compilation: max_iterations sets every
// llm node's MaxIterations, max_concurrent_units sets Limits.MaxConcurrency.
// Other keys are ignored.
func applyConfigOverrides(cfg *ir.GraphConfig, overrides map[string]any) {
	if len(overrides) == 0 {
		return
	}
	if cfg.Metadata == nil {
		cfg.Metadata = &ir.GraphMetadata{}
	}
	if cfg.UI == nil {
		cfg.UI = map[string]any{}
	}
	cfg.UI["config_overrides"] = overrides

	if maxIter, ok := overrides["max_iterations"]; ok {
		if n, ok := asInt(maxIter); ok {
			for i := range cfg.Graph.Nodes {
				if cfg.Graph.Nodes[i].Kind == ir.NodeLLM {
					cfg.Graph.Nodes[i].LLM.MaxIterations = n
				}
			}
		}
	}
	if maxConcurrency, ok := overrides["max_concurrent_units"]; ok {
		if n, ok := asInt(maxConcurrency); ok {
			cfg.Limits.MaxConcurrency = n
		}
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
