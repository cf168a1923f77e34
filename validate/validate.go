// Package validate runs structural checks over a canonicalized GraphConfig:
// reachability, cycle/limit interaction, edge determinism, and predicate
// well-formedness. It never mutates its input.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xyzen-dev/agentgraph/ir"
)

// Error is one structured validation failure.
type Error struct {
	Code    string
	Path    string
	Message string
}

func (e Error) String() string {
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Path, e.Message)
}

// ValidationError wraps the full set of errors from a failed EnsureValid
// call into a single diagnostic for callers that only want a throw/no-throw
// signal.
type ValidationError struct {
	Errors []Error
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		parts[i] = ve.String()
	}
	return "invalid graph configuration: " + strings.Join(parts, "; ")
}

// EnsureValid returns a *ValidationError if cfg fails any structural check,
// or nil if cfg is safe to compile.
func EnsureValid(cfg ir.GraphConfig) error {
	errs := Validate(cfg)
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

var builtinStatePaths = map[string]bool{
	ir.MessagesPath:         true,
	ir.ExecutionContextPath: true,
}

// Validate returns every structural error found in cfg. An empty result
// means cfg is safe to compile. Checks accumulate; a single call may surface
// many errors at once (the sole exception is EMPTY_GRAPH, which is fatal
// enough that later checks over empty adjacency would be meaningless).
func Validate(cfg ir.GraphConfig) []Error {
	var errs []Error

	nodes := cfg.Graph.Nodes
	edges := cfg.Graph.Edges
	entrypoints := cfg.Graph.Entrypoints

	if len(nodes) == 0 {
		return []Error{{Code: "EMPTY_GRAPH", Path: "graph.nodes", Message: "graph must contain at least one node"}}
	}

	nodeIDs := make(map[string]bool, len(nodes))
	seen := map[string]bool{}
	var duplicates []string
	for _, n := range nodes {
		if seen[n.ID] {
			duplicates = append(duplicates, n.ID)
		}
		seen[n.ID] = true
		nodeIDs[n.ID] = true
	}
	if len(duplicates) > 0 {
		errs = append(errs, Error{
			Code: "DUPLICATE_NODE_ID", Path: "graph.nodes",
			Message: fmt.Sprintf("node ids must be unique, duplicates: %s", strings.Join(duplicates, ", ")),
		})
	}

	if len(entrypoints) != 1 {
		errs = append(errs, Error{
			Code: "MULTIPLE_ENTRYPOINTS_UNSUPPORTED", Path: "graph.entrypoints",
			Message: "current runtime requires exactly one entrypoint",
		})
	}
	for i, ep := range entrypoints {
		if !nodeIDs[ep] {
			errs = append(errs, Error{
				Code: "ENTRYPOINT_NOT_FOUND", Path: fmt.Sprintf("graph.entrypoints[%d]", i),
				Message: fmt.Sprintf("entrypoint %q does not exist in graph.nodes", ep),
			})
		}
	}

	statePaths := map[string]bool{}
	for p := range cfg.State.Schema {
		statePaths[p] = true
	}
	for p := range builtinStatePaths {
		statePaths[p] = true
	}

	edgesBySource := map[string][]int{}
	for i, e := range edges {
		path := fmt.Sprintf("graph.edges[%d]", i)
		edgesBySource[e.FromNode] = append(edgesBySource[e.FromNode], i)

		switch e.FromNode {
		case ir.Start:
			errs = append(errs, Error{Code: "EDGE_FROM_START_FORBIDDEN", Path: path + ".from_node",
				Message: "uses graph.entrypoints[]; START edges are not allowed"})
		case ir.End:
			errs = append(errs, Error{Code: "EDGE_FROM_END_FORBIDDEN", Path: path + ".from_node",
				Message: "END cannot be used as an edge source"})
		default:
			if !nodeIDs[e.FromNode] {
				errs = append(errs, Error{Code: "EDGE_SOURCE_NOT_FOUND", Path: path + ".from_node",
					Message: fmt.Sprintf("edge source %q does not exist", e.FromNode)})
			}
		}

		switch {
		case e.ToNode == ir.Start:
			errs = append(errs, Error{Code: "EDGE_TO_START_FORBIDDEN", Path: path + ".to_node",
				Message: "START cannot be used as an edge target"})
		case e.ToNode != ir.End && !nodeIDs[e.ToNode]:
			errs = append(errs, Error{Code: "EDGE_TARGET_NOT_FOUND", Path: path + ".to_node",
				Message: fmt.Sprintf("edge target %q does not exist", e.ToNode)})
		}

		if e.When.Kind == ir.GuardPredicate && !statePaths[e.When.Predicate.StatePath] {
			errs = append(errs, Error{Code: "PREDICATE_STATE_PATH_MISSING", Path: path + ".when.state_path",
				Message: fmt.Sprintf("predicate state_path %q is missing in state.schema and is not a built-in state path", e.When.Predicate.StatePath)})
		}
	}

	for source, idxs := range edgesBySource {
		var defaultIdxs, hasToolIdxs, noToolIdxs, predicateIdxs []int
		for _, idx := range idxs {
			switch edges[idx].When.Kind {
			case ir.GuardAbsent:
				defaultIdxs = append(defaultIdxs, idx)
			case ir.GuardBuiltin:
				if edges[idx].When.Builtin == ir.HasToolCalls {
					hasToolIdxs = append(hasToolIdxs, idx)
				} else {
					noToolIdxs = append(noToolIdxs, idx)
				}
			case ir.GuardPredicate:
				predicateIdxs = append(predicateIdxs, idx)
			}
		}
		if len(defaultIdxs) > 1 {
			errs = append(errs, Error{Code: "MULTIPLE_DEFAULT_EDGES", Path: fmt.Sprintf("graph.edges[%d].when", defaultIdxs[1]),
				Message: fmt.Sprintf("node %q has more than one unconditional edge", source)})
		}
		if len(hasToolIdxs) > 1 {
			errs = append(errs, Error{Code: "DUPLICATE_HAS_TOOL_CALLS_EDGE", Path: fmt.Sprintf("graph.edges[%d].when", hasToolIdxs[1]),
				Message: fmt.Sprintf("node %q has duplicate has_tool_calls edges", source)})
		}
		if len(noToolIdxs) > 1 {
			errs = append(errs, Error{Code: "DUPLICATE_NO_TOOL_CALLS_EDGE", Path: fmt.Sprintf("graph.edges[%d].when", noToolIdxs[1]),
				Message: fmt.Sprintf("node %q has duplicate no_tool_calls edges", source)})
		}
		if (len(hasToolIdxs) > 0 || len(noToolIdxs) > 0) && len(predicateIdxs) > 0 {
			errs = append(errs, Error{Code: "MIXED_BUILTIN_AND_CUSTOM_ROUTING", Path: fmt.Sprintf("graph.edges[%d].when", predicateIdxs[0]),
				Message: fmt.Sprintf("node %q mixes built-in tool routing and custom predicates", source)})
		}
	}

	adjacency := buildAdjacency(edges, nodeIDs)
	reachable := reachableFrom(entrypoints, adjacency)
	var unreachable []string
	for id := range nodeIDs {
		if !reachable[id] {
			unreachable = append(unreachable, id)
		}
	}
	if len(unreachable) > 0 {
		errs = append(errs, Error{Code: "UNREACHABLE_NODE", Path: "graph.nodes",
			Message: fmt.Sprintf("unreachable nodes from entrypoints: %s", strings.Join(sortedCopy(unreachable), ", "))})
	}

	if !endReachable(entrypoints, edges) {
		errs = append(errs, Error{Code: "END_UNREACHABLE", Path: "graph.edges",
			Message: "no execution path from entrypoints can reach END"})
	}

	if hasCycle(adjacency) && cfg.Limits.MaxSteps <= 0 && cfg.Limits.MaxTimeS <= 0 {
		errs = append(errs, Error{Code: "CYCLE_LIMITS_REQUIRED", Path: "limits",
			Message: "graphs with cycles require max_steps or max_time_s limits"})
	}

	return errs
}

func buildAdjacency(edges []ir.Edge, nodeIDs map[string]bool) map[string]map[string]bool {
	adj := make(map[string]map[string]bool, len(nodeIDs))
	for id := range nodeIDs {
		adj[id] = map[string]bool{}
	}
	for _, e := range edges {
		if nodeIDs[e.FromNode] && nodeIDs[e.ToNode] {
			adj[e.FromNode][e.ToNode] = true
		}
	}
	return adj
}

func reachableFrom(entrypoints []string, adjacency map[string]map[string]bool) map[string]bool {
	visited := map[string]bool{}
	queue := append([]string(nil), entrypoints...)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if visited[node] {
			continue
		}
		visited[node] = true
		for next := range adjacency[node] {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	return visited
}

func endReachable(entrypoints []string, edges []ir.Edge) bool {
	outgoing := map[string][]ir.Edge{}
	for _, e := range edges {
		outgoing[e.FromNode] = append(outgoing[e.FromNode], e)
	}
	visited := map[string]bool{}
	queue := append([]string(nil), entrypoints...)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if visited[node] {
			continue
		}
		visited[node] = true
		for _, e := range outgoing[node] {
			if e.ToNode == ir.End {
				return true
			}
			if !visited[e.ToNode] {
				queue = append(queue, e.ToNode)
			}
		}
	}
	return false
}

// hasCycle runs a three-color DFS over adjacency.
func hasCycle(adjacency map[string]map[string]bool) bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(adjacency))
	for id := range adjacency {
		color[id] = white
	}

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for next := range adjacency[node] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[node] = black
		return false
	}

	for id, c := range color {
		if c == white && visit(id) {
			return true
		}
	}
	return false
}

func sortedCopy(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}
