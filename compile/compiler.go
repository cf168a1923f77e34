package compile

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/xyzen-dev/agentgraph/canon"
	"github.com/xyzen-dev/agentgraph/ir"
	"github.com/xyzen-dev/agentgraph/model"
	"github.com/xyzen-dev/agentgraph/tool"
	"github.com/xyzen-dev/agentgraph/validate"
)

// ResolutionError is returned when a node references a tool, model, or
// component the compiler cannot resolve.
type ResolutionError struct {
	NodeID  string
	Message string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("node %q: %s", e.NodeID, e.Message)
}

// Options bundles the collaborators Compile binds node steps against.
type Options struct {
	LLMFactory model.LLMFactory
	Tools      map[string]tool.Tool
	Components ComponentResolver
	// Runner lets component nodes delegate to their compiled sub-graph.
	// Required only when the graph has component nodes.
	Runner GraphRunner
}

// Compile canonicalizes and validates cfg, then lowers it into a
// CompiledGraph. Compile refuses an invalid graph rather than producing a
// partially-usable one.
func Compile(cfg ir.GraphConfig, opts Options) (*CompiledGraph, error) {
	canonical := canon.Canonicalize(cfg)
	if err := validate.EnsureValid(canonical); err != nil {
		return nil, err
	}

	g := &CompiledGraph{
		Steps:             map[string]StepFunc{},
		Routers:           map[string]RouteFunc{},
		State:             canonical.State,
		Limits:            canonical.Limits,
		Entrypoint:        canonical.Graph.Entrypoints[0],
		NodeComponentKeys: map[string]string{},
	}

	edgesByNode := map[string][]ir.Edge{}
	for _, e := range canonical.Graph.Edges {
		edgesByNode[e.FromNode] = append(edgesByNode[e.FromNode], e)
	}

	for _, node := range canonical.Graph.Nodes {
		step, err := buildStep(node, opts, g)
		if err != nil {
			return nil, err
		}
		g.Steps[node.ID] = step
		g.Routers[node.ID] = buildRouter(edgesByNode[node.ID])

		if node.Kind == ir.NodeComponent {
			g.NodeComponentKeys[node.ID] = node.Component.ComponentRef.Key
		}
	}

	return g, nil
}

func buildStep(node ir.Node, opts Options, g *CompiledGraph) (StepFunc, error) {
	switch node.Kind {
	case ir.NodeLLM:
		return buildLLMStep(node, opts)
	case ir.NodeTool:
		return buildToolStep(node, opts)
	case ir.NodeTransform:
		return buildTransformStep(node)
	case ir.NodeComponent:
		return buildComponentStep(node, opts)
	default:
		return nil, &ResolutionError{NodeID: node.ID, Message: fmt.Sprintf("unsupported node kind %q", node.Kind)}
	}
}

func buildLLMStep(node ir.Node, opts Options) (StepFunc, error) {
	cfg := node.LLM
	if opts.LLMFactory == nil {
		return nil, &ResolutionError{NodeID: node.ID, Message: "no LLMFactory configured"}
	}

	var toolSpecs []model.ToolSpec
	var filtered []tool.Tool
	if cfg.ToolsEnabled {
		filtered = filterTools(opts.Tools, cfg.ToolFilter)
		for _, t := range filtered {
			toolSpecs = append(toolSpecs, model.ToolSpec{Name: t.Name()})
		}
	}

	return func(ctx context.Context, state ir.State) (ir.Patch, error) {
		messages := renderLLMMessages(cfg.PromptTemplate, state)

		chatModel, err := opts.LLMFactory.Build(ctx, model.ModelOptions{
			Model:       cfg.ModelOverride,
			Temperature: cfg.TemperatureOverride,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			return nil, &ResolutionError{NodeID: node.ID, Message: err.Error()}
		}

		out, err := chatModel.Chat(ctx, messages, toolSpecs)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", node.ID, err)
		}

		reply := ir.Message{Role: model.RoleAssistant, Content: out.Text}
		for _, tc := range out.ToolCalls {
			reply.ToolCalls = append(reply.ToolCalls, ir.ToolCall{Name: tc.Name, Input: tc.Input})
		}

		return ir.Patch{
			cfg.OutputKey:  out.Text,
			ir.MessagesPath: []ir.Message{reply},
		}, nil
	}, nil
}

func renderLLMMessages(promptTemplate string, state ir.State) []model.Message {
	var out []model.Message
	if promptTemplate != "" {
		out = append(out, model.Message{Role: model.RoleSystem, Content: promptTemplate})
	}
	if existing, ok := state[ir.MessagesPath].([]ir.Message); ok {
		for _, m := range existing {
			out = append(out, model.Message{Role: m.Role, Content: m.Content})
		}
	}
	return out
}

func buildToolStep(node ir.Node, opts Options) (StepFunc, error) {
	cfg := node.Tool
	filtered := filterTools(opts.Tools, cfg.ToolFilter)
	byName := make(map[string]tool.Tool, len(filtered))
	for _, t := range filtered {
		byName[t.Name()] = t
	}

	return func(ctx context.Context, state ir.State) (ir.Patch, error) {
		calls := latestToolCalls(state)
		if len(calls) == 0 {
			return ir.Patch{}, nil
		}

		toolCtx, cancel := contextWithTimeout(ctx, cfg.TimeoutSeconds)
		defer cancel()

		results := map[string]any{}
		var replies []ir.Message
		for _, call := range calls {
			t, ok := byName[call.Name]
			if !ok {
				if !cfg.ExecuteAll {
					continue
				}
				return nil, &ResolutionError{NodeID: node.ID, Message: fmt.Sprintf("unknown tool %q", call.Name)}
			}
			out, err := t.Call(toolCtx, call.Input)
			if err != nil {
				return nil, fmt.Errorf("node %q: tool %q: %w", node.ID, call.Name, err)
			}
			results[call.Name] = out
			replies = append(replies, ir.Message{Role: model.RoleUser, Content: fmt.Sprintf("%v", out)})
		}

		return ir.Patch{
			cfg.OutputKey:  results,
			ir.MessagesPath: replies,
		}, nil
	}, nil
}

func latestToolCalls(state ir.State) []ir.ToolCall {
	msgs, ok := state[ir.MessagesPath].([]ir.Message)
	if !ok || len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1].ToolCalls
}

func buildTransformStep(node ir.Node) (StepFunc, error) {
	cfg := node.Transform
	tmpl, err := compileTemplate(node.ID, cfg.Template)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, state ir.State) (ir.Patch, error) {
		projection := map[string]any{}
		for _, k := range cfg.InputKeys {
			projection[k] = state[k]
		}
		rendered, err := renderTemplate(tmpl, projection)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", node.ID, err)
		}
		return ir.Patch{cfg.OutputKey: rendered}, nil
	}, nil
}

func buildComponentStep(node ir.Node, opts Options) (StepFunc, error) {
	cfg := node.Component
	if opts.Components == nil {
		return nil, &ResolutionError{NodeID: node.ID, Message: "no component registry configured"}
	}
	component, err := opts.Components.Resolve(cfg.ComponentRef.Key, cfg.ComponentRef.Version)
	if err != nil {
		return nil, &ResolutionError{NodeID: node.ID, Message: err.Error()}
	}

	if schema := component.Metadata().ConfigSchemaJSON; schema != nil {
		if err := validateConfigOverrides(schema, cfg.ConfigOverrides); err != nil {
			return nil, &ResolutionError{NodeID: node.ID, Message: fmt.Sprintf("config_overrides: %s", err)}
		}
	}

	filtered := filterByCapabilities(opts.Tools, component.Metadata().RequiredCapabilities)
	sub, err := component.BuildGraph(opts.LLMFactory, filtered, cfg.ConfigOverrides)
	if err != nil {
		return nil, &ResolutionError{NodeID: node.ID, Message: err.Error()}
	}
	if opts.Runner == nil {
		return nil, &ResolutionError{NodeID: node.ID, Message: "no GraphRunner configured for component delegation"}
	}
	runner := opts.Runner

	return func(ctx context.Context, state ir.State) (ir.Patch, error) {
		final, err := runner.Run(ctx, sub, state.Clone())
		if err != nil {
			return nil, fmt.Errorf("node %q: component %q: %w", node.ID, cfg.ComponentRef.Key, err)
		}
		patch := ir.Patch{}
		for k, v := range final {
			patch[k] = v
		}
		return patch, nil
	}, nil
}

func buildRouter(edges []ir.Edge) RouteFunc {
	return func(state ir.State) (string, bool) {
		for _, e := range edges {
			if guardMatches(e.When, state) {
				return e.ToNode, true
			}
		}
		return "", false
	}
}

func guardMatches(guard ir.Guard, state ir.State) bool {
	switch guard.Kind {
	case ir.GuardAbsent, "":
		return true
	case ir.GuardBuiltin:
		calls := latestToolCalls(state)
		if guard.Builtin == ir.HasToolCalls {
			return len(calls) > 0
		}
		return len(calls) == 0
	case ir.GuardPredicate:
		return evalPredicate(guard.Predicate, state)
	default:
		return false
	}
}

func evalPredicate(p ir.Predicate, state ir.State) bool {
	value := state[p.StatePath]
	switch p.Operator {
	case ir.OpEquals:
		return fmt.Sprintf("%v", value) == fmt.Sprintf("%v", p.Value)
	case ir.OpNotEquals:
		return fmt.Sprintf("%v", value) != fmt.Sprintf("%v", p.Value)
	case ir.OpTruthy:
		return isTruthy(value)
	case ir.OpFalsy:
		return !isTruthy(value)
	default:
		return false
	}
}

func isTruthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

func filterTools(all map[string]tool.Tool, patterns []string) []tool.Tool {
	if len(patterns) == 0 {
		out := make([]tool.Tool, 0, len(all))
		for _, t := range all {
			out = append(out, t)
		}
		return out
	}
	var out []tool.Tool
	for name, t := range all {
		for _, pattern := range patterns {
			if matched, _ := doublestar.Match(pattern, name); matched {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func filterByCapabilities(all map[string]tool.Tool, required []string) []tool.Tool {
	if len(required) == 0 {
		return nil
	}
	return filterTools(all, required)
}
