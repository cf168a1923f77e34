package upgrader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xyzen-dev/agentgraph/ir"
	"github.com/xyzen-dev/agentgraph/legacy"
)

// convertV2ToV3 ports the v2->v3 node/edge/state/deps/metadata shaping the
// upgrader performs, collecting warnings and failing fast on the handful of
// conditions no safe default exists for (duplicate ids, a transform/
// component node missing its config, a custom condition with no state key).
func convertV2ToV3(v2 *legacy.GraphConfig, sourceVersion string, preWarnings []Warning) (*ir.GraphConfig, []Warning, error) {
	warnings := append([]Warning{}, preWarnings...)

	nodeIDs := map[string]bool{}
	nodes := make([]ir.Node, 0, len(v2.Nodes))
	for i, n := range v2.Nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" {
			id = fmt.Sprintf("node_%d", i+1)
			warnings = append(warnings, Warning{
				Code: "MISSING_NODE_ID_DEFAULTED", Path: fmt.Sprintf("nodes[%d].id", i),
				Message: fmt.Sprintf("node id missing; defaulted to %q", id),
			})
		}
		if nodeIDs[id] {
			return nil, warnings, fail("DUPLICATE_NODE_ID", fmt.Sprintf("nodes[%d].id", i),
				"duplicate node id %q cannot be auto-migrated", id)
		}
		nodeIDs[id] = true

		node, err := convertNode(n, id, i, &warnings)
		if err != nil {
			return nil, warnings, err
		}
		nodes = append(nodes, node)
	}
	if len(nodes) == 0 {
		return nil, warnings, fail("EMPTY_GRAPH", "nodes", "v2 graph has no executable nodes after conversion")
	}

	entrypoints := deriveEntrypoints(v2, nodeIDs, &warnings)

	edges, err := convertEdges(v2.Edges, nodeIDs, &warnings)
	if err != nil {
		return nil, warnings, err
	}
	if len(edges) == 0 {
		warnings = append(warnings, Warning{
			Code: "NO_EDGES_DEFAULTED_TO_END", Path: "edges",
			Message: fmt.Sprintf("no valid edges after conversion; added %q -> END", entrypoints[0]),
		})
		edges = []ir.Edge{{FromNode: entrypoints[0], ToNode: ir.End}}
	}

	metadata := extractMetadata(v2)
	limits := extractLimits(v2)
	deps := extractDeps(v2)
	ui := buildUIPayload(v2, sourceVersion, warnings)

	cfg := &ir.GraphConfig{
		SchemaVersion: ir.SchemaVersion,
		Key:           deriveKey(v2),
		Revision:      deriveRevision(v2),
		Graph: ir.GraphIR{
			Nodes:       nodes,
			Edges:       edges,
			Entrypoints: entrypoints,
		},
		State:    convertState(v2),
		Limits:   limits,
		Deps:     deps,
		Metadata: metadata,
		UI:       ui,
	}
	return cfg, warnings, nil
}

func convertNode(n legacy.GraphNodeConfig, id string, index int, warnings *[]Warning) (ir.Node, error) {
	name := n.Name
	if name == "" {
		name = id
	}
	node := ir.Node{ID: id, Name: name}
	if n.Description != nil {
		node.Description = *n.Description
	}

	switch n.Type {
	case legacy.NodeTypeLLM:
		node.Kind = ir.NodeLLM
		cfg := ir.DefaultLLMNodeConfig()
		if n.LLMConfig == nil {
			*warnings = append(*warnings, Warning{
				Code: "MISSING_LLM_CONFIG_DEFAULTED", Path: fmt.Sprintf("nodes[%d].llm_config", index),
				Message: "LLM node missing llm_config; default runtime values were applied",
			})
		} else {
			cfg.PromptTemplate = n.LLMConfig.PromptTemplate
			if n.LLMConfig.OutputKey != "" {
				cfg.OutputKey = n.LLMConfig.OutputKey
			}
			cfg.ModelOverride = n.LLMConfig.ModelOverride
			cfg.TemperatureOverride = n.LLMConfig.TemperatureOverride
			cfg.MaxTokens = n.LLMConfig.MaxTokens
			cfg.ToolsEnabled = n.LLMConfig.ToolsEnabled
			cfg.ToolFilter = n.LLMConfig.ToolFilter
			if n.LLMConfig.MaxIterations > 0 {
				cfg.MaxIterations = n.LLMConfig.MaxIterations
			}
			cfg.MessageKey = n.LLMConfig.MessageKey
		}
		node.LLM = &cfg
		node.Reads = []string{ir.MessagesPath}
		node.Writes = []string{ir.MessagesPath, cfg.OutputKey}

	case legacy.NodeTypeTool:
		node.Kind = ir.NodeTool
		cfg := ir.DefaultToolNodeConfig()
		if n.ToolConfig == nil {
			*warnings = append(*warnings, Warning{
				Code: "MISSING_TOOL_CONFIG_DEFAULTED", Path: fmt.Sprintf("nodes[%d].tool_config", index),
				Message: "tool node missing tool_config; default runtime values were applied",
			})
		} else {
			cfg.ExecuteAll = n.ToolConfig.ExecuteAll
			cfg.ToolFilter = n.ToolConfig.ToolFilter
			if n.ToolConfig.OutputKey != "" {
				cfg.OutputKey = n.ToolConfig.OutputKey
			}
			if n.ToolConfig.TimeoutSeconds > 0 {
				cfg.TimeoutSeconds = n.ToolConfig.TimeoutSeconds
			}
		}
		node.Tool = &cfg
		node.Reads = []string{ir.MessagesPath}
		node.Writes = []string{cfg.OutputKey}

	case legacy.NodeTypeTransform:
		if n.TransformConfig == nil {
			return ir.Node{}, fail("MISSING_TRANSFORM_CONFIG", fmt.Sprintf("nodes[%d].transform_config", index),
				"transform node missing transform_config")
		}
		node.Kind = ir.NodeTransform
		node.Transform = &ir.TransformNodeConfig{
			Template:  n.TransformConfig.Template,
			OutputKey: n.TransformConfig.OutputKey,
			InputKeys: n.TransformConfig.InputKeys,
		}
		node.Reads = n.TransformConfig.InputKeys
		node.Writes = []string{n.TransformConfig.OutputKey}

	default:
		if n.ComponentConfig == nil {
			return ir.Node{}, fail("MISSING_COMPONENT_CONFIG", fmt.Sprintf("nodes[%d].component_config", index),
				"component node missing component_config")
		}
		node.Kind = ir.NodeComponent
		node.Component = &ir.ComponentNodeConfig{
			ComponentRef: ir.ComponentRef{
				Key:     n.ComponentConfig.ComponentRef.Key,
				Version: n.ComponentConfig.ComponentRef.Version,
			},
			ConfigOverrides: n.ComponentConfig.ConfigOverrides,
		}
	}

	return node, nil
}

func deriveEntrypoints(v2 *legacy.GraphConfig, nodeIDs map[string]bool, warnings *[]Warning) []string {
	if v2.EntryPoint != "" && nodeIDs[v2.EntryPoint] {
		return []string{v2.EntryPoint}
	}
	if v2.EntryPoint != "" && !nodeIDs[v2.EntryPoint] {
		*warnings = append(*warnings, Warning{
			Code: "INVALID_ENTRYPOINT_FALLBACK", Path: "entry_point",
			Message: fmt.Sprintf("entry_point %q does not exist; deriving entrypoint from edges", v2.EntryPoint),
		})
	}

	var startTargets []string
	seen := map[string]bool{}
	for _, e := range v2.Edges {
		if e.FromNode == "START" && nodeIDs[e.ToNode] && !seen[e.ToNode] {
			startTargets = append(startTargets, e.ToNode)
			seen[e.ToNode] = true
		}
	}
	if len(startTargets) > 0 {
		if len(startTargets) > 1 {
			*warnings = append(*warnings, Warning{
				Code: "MULTIPLE_START_TARGETS_PICK_FIRST", Path: "edges",
				Message: fmt.Sprintf("multiple START targets found %v; selected %q", startTargets, startTargets[0]),
			})
		}
		return []string{startTargets[0]}
	}

	def := v2.Nodes[0].ID
	if def == "" {
		def = "node_1"
	}
	*warnings = append(*warnings, Warning{
		Code: "MISSING_ENTRYPOINT_FALLBACK", Path: "entry_point",
		Message: fmt.Sprintf("no entrypoint found; defaulted to first node %q", def),
	})
	return []string{def}
}

func convertEdges(edges []legacy.GraphEdgeConfig, nodeIDs map[string]bool, warnings *[]Warning) ([]ir.Edge, error) {
	var converted []ir.Edge
	for i, e := range edges {
		path := fmt.Sprintf("edges[%d]", i)
		if e.FromNode == "START" {
			continue
		}
		if e.FromNode == "END" {
			*warnings = append(*warnings, Warning{Code: "EDGE_FROM_END_DROPPED", Path: path,
				Message: "dropped edge with END as source"})
			continue
		}
		if e.ToNode == "START" {
			*warnings = append(*warnings, Warning{Code: "EDGE_TO_START_DROPPED", Path: path,
				Message: "dropped edge with START as target"})
			continue
		}
		if !nodeIDs[e.FromNode] {
			*warnings = append(*warnings, Warning{Code: "EDGE_SOURCE_MISSING_DROPPED", Path: path + ".from_node",
				Message: fmt.Sprintf("dropped edge from unknown node %q", e.FromNode)})
			continue
		}
		if e.ToNode != "END" && !nodeIDs[e.ToNode] {
			*warnings = append(*warnings, Warning{Code: "EDGE_TARGET_MISSING_DROPPED", Path: path + ".to_node",
				Message: fmt.Sprintf("dropped edge to unknown node %q", e.ToNode)})
			continue
		}

		guard := ir.Guard{Kind: ir.GuardAbsent}
		if e.Condition != nil && (e.Condition.Builtin != "" || e.Condition.Custom != nil) {
			if e.Condition.Builtin == legacy.ConditionHasToolCalls {
				guard = ir.Guard{Kind: ir.GuardBuiltin, Builtin: ir.HasToolCalls}
			} else if e.Condition.Builtin == legacy.ConditionNoToolCalls {
				guard = ir.Guard{Kind: ir.GuardBuiltin, Builtin: ir.NoToolCalls}
			} else if e.Condition.Custom != nil {
				if e.Condition.Custom.StateKey == "" {
					return nil, fail("MISSING_PREDICATE_STATE_KEY", path+".condition.state_key",
						"custom condition state_key is required for predicate migration")
				}
				guard = ir.Guard{Kind: ir.GuardPredicate, Predicate: ir.Predicate{
					StatePath: e.Condition.Custom.StateKey,
					Operator:  ir.PredicateOperator(e.Condition.Custom.Operator),
					Value:     e.Condition.Custom.Value,
				}}
			}
		}

		ed := ir.Edge{FromNode: e.FromNode, ToNode: e.ToNode, When: guard, Priority: e.Priority}
		if e.Label != nil {
			ed.Label = *e.Label
		}
		converted = append(converted, ed)
	}
	return converted, nil
}

func convertState(v2 *legacy.GraphConfig) ir.StateContract {
	contract := ir.StateContract{Schema: map[string]ir.StateFieldSchema{}, Reducers: map[string]ir.ReducerKind{}}
	for key, f := range v2.CustomStateFields {
		entry := ir.StateFieldSchema{Type: ir.StateFieldType(f.Type), Default: f.Default}
		if f.Description != nil {
			entry.Description = *f.Description
		}
		contract.Schema[key] = entry
		reducer := f.Reducer
		if reducer == "" {
			reducer = legacy.ReducerReplace
		}
		contract.Reducers[key] = ir.ReducerKind(reducer)
	}
	return contract
}

func extractLimits(v2 *legacy.GraphConfig) ir.Limits {
	limits := ir.DefaultLimits()
	if v2.MaxExecutionTimeSeconds != nil && *v2.MaxExecutionTimeSeconds > 0 {
		limits.MaxTimeS = *v2.MaxExecutionTimeSeconds
	}
	if rawLimits, ok := v2.Metadata["limits"].(map[string]any); ok {
		if v, ok := asInt(rawLimits["max_steps"]); ok {
			limits.MaxSteps = v
		}
		if v, ok := asInt(rawLimits["max_concurrency"]); ok {
			limits.MaxConcurrency = v
		}
	}
	return limits
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

func extractDeps(v2 *legacy.GraphConfig) *ir.GraphDeps {
	toolSet := map[string]bool{}
	if v2.ToolConfig != nil {
		for _, t := range v2.ToolConfig.ToolFilter {
			if t != "" {
				toolSet[t] = true
			}
		}
	}
	modelSet := map[string]bool{}
	type compKey struct{ key, version string }
	compSet := map[compKey]bool{}
	for _, n := range v2.Nodes {
		if n.LLMConfig != nil && n.LLMConfig.ModelOverride != nil && *n.LLMConfig.ModelOverride != "" {
			modelSet[*n.LLMConfig.ModelOverride] = true
		}
		if n.ComponentConfig != nil {
			compSet[compKey{n.ComponentConfig.ComponentRef.Key, n.ComponentConfig.ComponentRef.Version}] = true
		}
	}

	if len(toolSet) == 0 && len(modelSet) == 0 && len(compSet) == 0 {
		return nil
	}

	deps := &ir.GraphDeps{}
	for t := range toolSet {
		deps.Tools = append(deps.Tools, t)
	}
	sort.Strings(deps.Tools)
	for m := range modelSet {
		deps.Models = append(deps.Models, ir.ModelDependencyRef{Key: m})
	}
	sort.Slice(deps.Models, func(i, j int) bool { return deps.Models[i].Key < deps.Models[j].Key })
	for c := range compSet {
		deps.Components = append(deps.Components, ir.ComponentDependencyRef{Key: c.key, Version: c.version})
	}
	sort.Slice(deps.Components, func(i, j int) bool {
		if deps.Components[i].Key != deps.Components[j].Key {
			return deps.Components[i].Key < deps.Components[j].Key
		}
		return deps.Components[i].Version < deps.Components[j].Version
	})
	return deps
}

func extractMetadata(v2 *legacy.GraphConfig) *ir.GraphMetadata {
	raw := v2.Metadata
	displayName, _ := raw["display_name"].(string)
	description, _ := raw["description"].(string)
	agentVersion, _ := raw["agent_version"].(string)
	if agentVersion == "" {
		agentVersion, _ = raw["version"].(string)
	}
	var tags []string
	if rawTags, ok := raw["tags"].([]any); ok {
		for _, t := range rawTags {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
	}

	if displayName == "" && description == "" && agentVersion == "" && len(tags) == 0 {
		return nil
	}
	return &ir.GraphMetadata{
		DisplayName:  displayName,
		Description:  description,
		Tags:         tags,
		AgentVersion: agentVersion,
	}
}

func deriveKey(v2 *legacy.GraphConfig) string {
	candidates := []string{"key", "builtin_key", "system_agent_key", "display_name", "pattern"}
	for _, c := range candidates {
		if s, ok := v2.Metadata[c].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return "migrated_graph"
}

func deriveRevision(v2 *legacy.GraphConfig) int {
	if v, ok := asInt(v2.Metadata["revision"]); ok && v >= 1 {
		return v
	}
	return ir.DefaultRevision
}

func buildUIPayload(v2 *legacy.GraphConfig, sourceVersion string, warnings []Warning) map[string]any {
	positions := map[string]any{}
	for _, n := range v2.Nodes {
		if n.Position != nil {
			positions[n.ID] = map[string]any{"x": n.Position.X, "y": n.Position.Y}
		}
	}

	codes := make([]string, len(warnings))
	for i, w := range warnings {
		codes[i] = w.Code
	}

	ui := map[string]any{
		"migration": map[string]any{
			"from_version": sourceVersion,
			"warning_codes": codes,
		},
	}
	if len(positions) > 0 {
		ui["positions"] = positions
	}
	return ui
}
