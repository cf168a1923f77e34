package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xyzen-dev/agentgraph/ir"
)

var closedNodeKinds = map[string]ir.NodeKind{
	"llm":       ir.NodeLLM,
	"tool":      ir.NodeTool,
	"transform": ir.NodeTransform,
	"component": ir.NodeComponent,
}

var closedOperators = map[string]ir.PredicateOperator{
	"eq":     ir.OpEquals,
	"neq":    ir.OpNotEquals,
	"truthy": ir.OpTruthy,
	"falsy":  ir.OpFalsy,
}

var closedBuiltinConditions = map[string]ir.BuiltinCondition{
	"has_tool_calls": ir.HasToolCalls,
	"no_tool_calls":  ir.NoToolCalls,
}

var closedFieldTypes = map[string]ir.StateFieldType{
	"string": ir.TypeString,
	"int":    ir.TypeInt,
	"float":  ir.TypeFloat,
	"bool":   ir.TypeBool,
	"list":   ir.TypeList,
	"dict":   ir.TypeDict,
	"any":    ir.TypeAny,
}

var closedReducers = map[string]ir.ReducerKind{
	"replace":      ir.ReducerReplace,
	"add_messages": ir.ReducerAddMessages,
}

// strictDecode unmarshals data into v, rejecting any field not present on v
// or any of its nested struct fields.
func strictDecode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Parse decodes a raw v3 GraphConfig payload. Callers holding v1/v2 payloads
// must run them through the upgrader package first; Parse itself never
// guesses at a legacy shape.
func Parse(data []byte) (*ir.GraphConfig, error) {
	var raw rawGraphConfig
	if err := strictDecode(data, &raw); err != nil {
		return nil, errAt("$", "malformed or unrecognized field: %v", err)
	}

	if raw.SchemaVersion != ir.SchemaVersion {
		return nil, errAt("schema_version", "expected %q, got %q", ir.SchemaVersion, raw.SchemaVersion)
	}
	if raw.Key == "" {
		return nil, errAt("key", "must not be empty")
	}
	revision := ir.DefaultRevision
	if raw.Revision != nil {
		if *raw.Revision < 1 {
			return nil, errAt("revision", "must be a positive integer")
		}
		revision = *raw.Revision
	}

	graphIR, err := parseGraphIR(raw.Graph)
	if err != nil {
		return nil, err
	}

	state, err := parseStateConfig(raw.State)
	if err != nil {
		return nil, err
	}

	limits, err := parseLimits(raw.Limits)
	if err != nil {
		return nil, err
	}

	deps, err := parseDeps(raw.Deps)
	if err != nil {
		return nil, err
	}

	metadata := parseMetadata(raw.Metadata)

	return &ir.GraphConfig{
		SchemaVersion: raw.SchemaVersion,
		Key:           raw.Key,
		Revision:      revision,
		Graph:         graphIR,
		State:         state,
		Deps:          deps,
		Limits:        limits,
		Metadata:      metadata,
		UI:            raw.UI,
	}, nil
}

func parseGraphIR(raw rawGraphIR) (ir.GraphIR, error) {
	if len(raw.Nodes) == 0 {
		return ir.GraphIR{}, errAt("graph.nodes", "must not be empty")
	}
	if len(raw.Entrypoints) == 0 {
		return ir.GraphIR{}, errAt("graph.entrypoints", "must not be empty")
	}
	seenEntry := map[string]bool{}
	for i, e := range raw.Entrypoints {
		if seenEntry[e] {
			return ir.GraphIR{}, errAt(fmt.Sprintf("graph.entrypoints[%d]", i), "duplicate entrypoint %q", e)
		}
		seenEntry[e] = true
	}

	nodes := make([]ir.Node, 0, len(raw.Nodes))
	for i, rn := range raw.Nodes {
		n, err := parseNode(rn, fmt.Sprintf("graph.nodes[%d]", i))
		if err != nil {
			return ir.GraphIR{}, err
		}
		nodes = append(nodes, n)
	}

	edges := make([]ir.Edge, 0, len(raw.Edges))
	for i, re := range raw.Edges {
		e, err := parseEdge(re, fmt.Sprintf("graph.edges[%d]", i))
		if err != nil {
			return ir.GraphIR{}, err
		}
		edges = append(edges, e)
	}

	return ir.GraphIR{Nodes: nodes, Edges: edges, Entrypoints: raw.Entrypoints}, nil
}

func parseNode(rn rawNode, path string) (ir.Node, error) {
	if rn.ID == "" {
		return ir.Node{}, errAt(path+".id", "must not be empty")
	}
	if rn.Name == "" {
		return ir.Node{}, errAt(path+".name", "must not be empty")
	}
	kind, ok := closedNodeKinds[rn.Kind]
	if !ok {
		return ir.Node{}, errAt(path+".kind", "unrecognized node kind %q", rn.Kind)
	}

	n := ir.Node{
		ID:     rn.ID,
		Name:   rn.Name,
		Reads:  rn.Reads,
		Writes: rn.Writes,
		Kind:   kind,
	}
	if rn.Description != nil {
		n.Description = *rn.Description
	}

	switch kind {
	case ir.NodeLLM:
		cfg := ir.DefaultLLMNodeConfig()
		var rc rawLLMConfig
		if len(rn.Config) > 0 {
			if err := strictDecode(rn.Config, &rc); err != nil {
				return ir.Node{}, errAt(path+".config", "%v", err)
			}
		}
		cfg.PromptTemplate = rc.PromptTemplate
		if rc.OutputKey != nil {
			cfg.OutputKey = *rc.OutputKey
		}
		cfg.ModelOverride = rc.ModelOverride
		cfg.TemperatureOverride = rc.TemperatureOverride
		cfg.MaxTokens = rc.MaxTokens
		if rc.ToolsEnabled != nil {
			cfg.ToolsEnabled = *rc.ToolsEnabled
		}
		cfg.ToolFilter = rc.ToolFilter
		if rc.MaxIterations != nil {
			if *rc.MaxIterations < 1 {
				return ir.Node{}, errAt(path+".config.max_iterations", "must be >= 1")
			}
			cfg.MaxIterations = *rc.MaxIterations
		}
		cfg.MessageKey = rc.MessageKey
		n.LLM = &cfg

	case ir.NodeTool:
		cfg := ir.DefaultToolNodeConfig()
		var rc rawToolConfig
		if len(rn.Config) > 0 {
			if err := strictDecode(rn.Config, &rc); err != nil {
				return ir.Node{}, errAt(path+".config", "%v", err)
			}
		}
		if rc.ExecuteAll != nil {
			cfg.ExecuteAll = *rc.ExecuteAll
		}
		cfg.ToolFilter = rc.ToolFilter
		if rc.OutputKey != nil {
			cfg.OutputKey = *rc.OutputKey
		}
		if rc.TimeoutSeconds != nil {
			if *rc.TimeoutSeconds < 1 || *rc.TimeoutSeconds > 600 {
				return ir.Node{}, errAt(path+".config.timeout_seconds", "must be in [1, 600]")
			}
			cfg.TimeoutSeconds = *rc.TimeoutSeconds
		}
		n.Tool = &cfg

	case ir.NodeTransform:
		if len(rn.Config) == 0 {
			return ir.Node{}, errAt(path+".config", "transform node requires config")
		}
		var rc rawTransformConfig
		if err := strictDecode(rn.Config, &rc); err != nil {
			return ir.Node{}, errAt(path+".config", "%v", err)
		}
		if rc.Template == "" {
			return ir.Node{}, errAt(path+".config.template", "must not be empty")
		}
		if rc.OutputKey == "" {
			return ir.Node{}, errAt(path+".config.output_key", "must not be empty")
		}
		n.Transform = &ir.TransformNodeConfig{
			Template:  rc.Template,
			OutputKey: rc.OutputKey,
			InputKeys: rc.InputKeys,
		}

	case ir.NodeComponent:
		if len(rn.Config) == 0 {
			return ir.Node{}, errAt(path+".config", "component node requires config")
		}
		var rc rawComponentConfig
		if err := strictDecode(rn.Config, &rc); err != nil {
			return ir.Node{}, errAt(path+".config", "%v", err)
		}
		if rc.ComponentRef.Key == "" {
			return ir.Node{}, errAt(path+".config.component_ref.key", "must not be empty")
		}
		ref := ir.DefaultComponentRef()
		ref.Key = rc.ComponentRef.Key
		if rc.ComponentRef.Version != nil {
			ref.Version = *rc.ComponentRef.Version
		}
		overrides := rc.ConfigOverrides
		if overrides == nil {
			overrides = map[string]any{}
		}
		n.Component = &ir.ComponentNodeConfig{
			ComponentRef:    ref,
			ConfigOverrides: overrides,
		}
	}

	return n, nil
}

func parseEdge(re rawEdge, path string) (ir.Edge, error) {
	if re.FromNode == "" {
		return ir.Edge{}, errAt(path+".from_node", "must not be empty")
	}
	if re.ToNode == "" {
		return ir.Edge{}, errAt(path+".to_node", "must not be empty")
	}
	if re.FromNode == ir.Start {
		return ir.Edge{}, errAt(path+".from_node", "START is not a valid edge source; use graph.entrypoints")
	}
	if re.ToNode == ir.Start {
		return ir.Edge{}, errAt(path+".to_node", "START is not a valid edge target")
	}

	guard, err := parseGuard(re.When, path+".when")
	if err != nil {
		return ir.Edge{}, err
	}

	e := ir.Edge{
		FromNode: re.FromNode,
		ToNode:   re.ToNode,
		When:     guard,
		Priority: re.Priority,
	}
	if re.Label != nil {
		e.Label = *re.Label
	}
	return e, nil
}

func parseGuard(raw json.RawMessage, path string) (ir.Guard, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return ir.Guard{Kind: ir.GuardAbsent}, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		cond, ok := closedBuiltinConditions[asString]
		if !ok {
			return ir.Guard{}, errAt(path, "unrecognized built-in condition %q", asString)
		}
		return ir.Guard{Kind: ir.GuardBuiltin, Builtin: cond}, nil
	}

	var rp rawPredicate
	if err := strictDecode(raw, &rp); err != nil {
		return ir.Guard{}, errAt(path, "must be a built-in condition string or a predicate object: %v", err)
	}
	if rp.StatePath == "" {
		return ir.Guard{}, errAt(path+".state_path", "must not be empty")
	}
	op, ok := closedOperators[rp.Operator]
	if !ok {
		return ir.Guard{}, errAt(path+".operator", "unrecognized operator %q", rp.Operator)
	}
	return ir.Guard{
		Kind: ir.GuardPredicate,
		Predicate: ir.Predicate{
			StatePath: rp.StatePath,
			Operator:  op,
			Value:     rp.Value,
		},
	}, nil
}

func parseStateConfig(raw *rawStateConfig) (ir.StateContract, error) {
	contract := ir.StateContract{
		Schema:   map[string]ir.StateFieldSchema{},
		Reducers: map[string]ir.ReducerKind{},
	}
	if raw == nil {
		return contract, nil
	}
	for path, fs := range raw.Schema {
		ft, ok := closedFieldTypes[fs.Type]
		if !ok {
			return ir.StateContract{}, errAt(fmt.Sprintf("state.schema.%s.type", path), "unrecognized type %q", fs.Type)
		}
		entry := ir.StateFieldSchema{Type: ft, Default: fs.Default}
		if fs.Description != nil {
			entry.Description = *fs.Description
		}
		contract.Schema[path] = entry
	}
	for path, r := range raw.Reducers {
		rk, ok := closedReducers[r]
		if !ok {
			return ir.StateContract{}, errAt(fmt.Sprintf("state.reducers.%s", path), "unrecognized reducer %q", r)
		}
		contract.Reducers[path] = rk
	}
	return contract, nil
}

func parseLimits(raw *rawLimits) (ir.Limits, error) {
	limits := ir.DefaultLimits()
	if raw == nil {
		return limits, nil
	}
	if raw.MaxTimeS != nil {
		if *raw.MaxTimeS < ir.MinMaxTimeS || *raw.MaxTimeS > ir.MaxMaxTimeS {
			return ir.Limits{}, errAt("limits.max_time_s", "must be in [%d, %d]", ir.MinMaxTimeS, ir.MaxMaxTimeS)
		}
		limits.MaxTimeS = *raw.MaxTimeS
	}
	if raw.MaxSteps != nil {
		if *raw.MaxSteps < ir.MinMaxSteps || *raw.MaxSteps > ir.MaxMaxSteps {
			return ir.Limits{}, errAt("limits.max_steps", "must be in [%d, %d]", ir.MinMaxSteps, ir.MaxMaxSteps)
		}
		limits.MaxSteps = *raw.MaxSteps
	}
	if raw.MaxConcurrency != nil {
		if *raw.MaxConcurrency < ir.MinMaxConcurrency || *raw.MaxConcurrency > ir.MaxMaxConcurrency {
			return ir.Limits{}, errAt("limits.max_concurrency", "must be in [%d, %d]", ir.MinMaxConcurrency, ir.MaxMaxConcurrency)
		}
		limits.MaxConcurrency = *raw.MaxConcurrency
	}
	return limits, nil
}

func parseDeps(raw *rawDeps) (*ir.GraphDeps, error) {
	if raw == nil {
		return nil, nil
	}
	deps := &ir.GraphDeps{Tools: raw.Tools}
	for _, m := range raw.Models {
		if m.Key == "" {
			return nil, errAt("deps.models[].key", "must not be empty")
		}
		ref := ir.ModelDependencyRef{Key: m.Key}
		if m.Provider != nil {
			ref.Provider = *m.Provider
		}
		if m.Version != nil {
			ref.Version = *m.Version
		}
		deps.Models = append(deps.Models, ref)
	}
	for _, p := range raw.Prompts {
		if p.Key == "" {
			return nil, errAt("deps.prompts[].key", "must not be empty")
		}
		ref := ir.PromptDependencyRef{Key: p.Key}
		if p.Version != nil {
			ref.Version = *p.Version
		}
		deps.Prompts = append(deps.Prompts, ref)
	}
	for _, c := range raw.Components {
		if c.Key == "" {
			return nil, errAt("deps.components[].key", "must not be empty")
		}
		ref := ir.DefaultComponentDependencyRef()
		ref.Key = c.Key
		if c.Version != nil {
			ref.Version = *c.Version
		}
		deps.Components = append(deps.Components, ref)
	}
	return deps, nil
}

func parseMetadata(raw *rawMetadata) *ir.GraphMetadata {
	if raw == nil {
		return nil
	}
	m := &ir.GraphMetadata{Tags: raw.Tags}
	if raw.DisplayName != nil {
		m.DisplayName = *raw.DisplayName
	}
	if raw.Description != nil {
		m.Description = *raw.Description
	}
	if raw.AgentVersion != nil {
		m.AgentVersion = *raw.AgentVersion
	}
	return m
}
