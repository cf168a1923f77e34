package ir

// SchemaVersion is the only schema_version this package accepts after
// parsing/upgrading. Raw v1/v2 payloads go through legacy/upgrader first.
const SchemaVersion = "3.0"

// ModelDependencyRef, PromptDependencyRef and ComponentDependencyRef record
// a graph's declared external dependencies. They are descriptive only: the
// compiler resolves nodes against the live registries regardless of what a
// graph declares here, but a resolver may use these to pre-warm or to
// validate availability before a run starts.
type ModelDependencyRef struct {
	Key      string
	Provider string
	Version  string
}

type PromptDependencyRef struct {
	Key     string
	Version string
}

type ComponentDependencyRef struct {
	Key     string
	Version string
}

// DefaultComponentDependencyRef mirrors the original schema's default version.
func DefaultComponentDependencyRef() ComponentDependencyRef {
	return ComponentDependencyRef{Version: "*"}
}

// GraphDeps lists the external resources a graph expects to be available.
type GraphDeps struct {
	Models     []ModelDependencyRef
	Tools      []string
	Prompts    []PromptDependencyRef
	Components []ComponentDependencyRef
}

// GraphMetadata is descriptive information carried alongside a graph;
// nothing in the compiler or runtime reads it.
type GraphMetadata struct {
	DisplayName string
	Description string
	Tags        []string
	AgentVersion string
}

// GraphIR is the node/edge/entrypoint shape of a graph, independent of its
// envelope (key, revision, limits, state contract).
type GraphIR struct {
	Nodes       []Node
	Edges       []Edge
	Entrypoints []string
}

// GraphConfig is the canonical v3 representation of a stored or submitted
// graph. Every raw payload — whether already v3 or upgraded from v1/v2 —
// ends up as a GraphConfig before canonicalization and validation run.
type GraphConfig struct {
	SchemaVersion string
	Key           string
	Revision      int

	Graph GraphIR
	State StateContract
	Deps  *GraphDeps
	Limits   Limits
	Metadata *GraphMetadata

	// UI carries editor layout/position data. The compiler and runtime never
	// read it, and canonical hashing leaves it out.
	UI map[string]any
}

// DefaultRevision is the revision assigned to a graph's first version.
const DefaultRevision = 1
