// Package agentfactory resolves which GraphConfig to run for a session
// (stored config, or the default "react" builtin) and layers a
// caller-supplied system prompt into every node that carries one, without
// mutating the caller's stored config.
package agentfactory

import (
	"github.com/xyzen-dev/agentgraph/ir"
	"github.com/xyzen-dev/agentgraph/registry/builtin"
)

// DefaultBuiltinKey is the agent used when a session has no stored config.
const DefaultBuiltinKey = "react"

// Resolve returns the GraphConfig to compile for a session: stored if
// non-nil, otherwise the default react builtin. The returned config is a
// shallow copy of *stored: its edges, state maps and metadata are shared
// with *stored, and so are its nodes when systemPrompt is empty.
func Resolve(stored *ir.GraphConfig, systemPrompt string) ir.GraphConfig {
	var cfg ir.GraphConfig
	if stored != nil {
		cfg = *stored
	} else {
		cfg = builtin.ReactGraphConfig()
	}

	if systemPrompt == "" {
		return cfg
	}
	return InjectSystemPrompt(cfg, systemPrompt)
}

// InjectSystemPrompt returns a copy of cfg with systemPrompt layered into
// every llm node's prompt_template and every component node's
// config_overrides.system_prompt, each via mergeLayeredPrompt so a node's
// own prompt survives underneath the caller's. cfg itself is never
// mutated — a forked agent's stored config must come back out exactly as
// it went in on the next call.
func InjectSystemPrompt(cfg ir.GraphConfig, systemPrompt string) ir.GraphConfig {
	out := cfg
	out.Graph.Nodes = make([]ir.Node, len(cfg.Graph.Nodes))

	for i, node := range cfg.Graph.Nodes {
		out.Graph.Nodes[i] = injectNode(node, systemPrompt)
	}
	return out
}

func injectNode(node ir.Node, systemPrompt string) ir.Node {
	switch node.Kind {
	case ir.NodeLLM:
		llmCopy := *node.LLM
		llmCopy.PromptTemplate = mergeLayeredPrompt(systemPrompt, llmCopy.PromptTemplate)
		node.LLM = &llmCopy

	case ir.NodeComponent:
		compCopy := *node.Component
		overrides := make(map[string]any, len(compCopy.ConfigOverrides)+1)
		for k, v := range compCopy.ConfigOverrides {
			overrides[k] = v
		}
		existing, _ := overrides["system_prompt"].(string)
		overrides["system_prompt"] = mergeLayeredPrompt(systemPrompt, existing)
		compCopy.ConfigOverrides = overrides
		node.Component = &compCopy
	}
	return node
}
