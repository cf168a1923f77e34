package compile

import (
	"github.com/xyzen-dev/agentgraph/model"
	"github.com/xyzen-dev/agentgraph/tool"
)

// ComponentMetadata describes a registered component without exposing its
// build function. ConfigSchemaJSON, when non-nil, is a JSON Schema the
// compiler validates a component node's config_overrides against before
// calling BuildGraph; nil means overrides are accepted unvalidated.
type ComponentMetadata struct {
	Key                  string
	Version              string
	RequiredCapabilities []string
	ConfigSchemaJSON     map[string]any
}

// Component is a registered, versioned sub-graph. BuildGraph is called once
// per compiling node with the tool list already filtered to the
// component's required capabilities and config_overrides validated.
type Component interface {
	Metadata() ComponentMetadata
	BuildGraph(llmFactory model.LLMFactory, tools []tool.Tool, configOverrides map[string]any) (*CompiledGraph, error)
}

// ComponentResolver resolves a component key against a SemVer constraint.
// registry.Registry implements this; compile never imports registry
// directly to avoid a cycle (registry returns *compile.CompiledGraph from
// component builds, so the dependency only runs one way).
type ComponentResolver interface {
	Resolve(key, versionConstraint string) (Component, error)
}
