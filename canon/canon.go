// Package canon produces the unique stable form of a GraphConfig: the basis
// for content-addressed equality used by marketplace snapshot diffs and by
// the upgrader's round-trip check.
package canon

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xyzen-dev/agentgraph/ir"
)

// Canonicalize returns a copy of cfg with nodes, edges, and entrypoints in
// their stable sort order. It never mutates cfg.
func Canonicalize(cfg ir.GraphConfig) ir.GraphConfig {
	out := cfg

	nodes := append([]ir.Node(nil), cfg.Graph.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := append([]ir.Edge(nil), cfg.Graph.Edges...)
	sort.Slice(edges, func(i, j int) bool { return edgeLess(edges[i], edges[j]) })

	entrypoints := append([]string(nil), cfg.Graph.Entrypoints...)
	sort.Strings(entrypoints)

	out.Graph = ir.GraphIR{Nodes: nodes, Edges: edges, Entrypoints: entrypoints}
	return out
}

// edgeKey is the composite sort key described for edges: (from_node,
// -priority, when_type_tag, when_path, when_operator, when_value_json,
// to_node). when_type_tag is "0" for absent, "1" for built-in, "2" for
// predicate.
type edgeKey struct {
	fromNode     string
	negPriority  int
	whenType     string
	whenPath     string
	whenOperator string
	whenValue    string
	toNode       string
}

func edgeSortKey(e ir.Edge) edgeKey {
	k := edgeKey{fromNode: e.FromNode, negPriority: -e.Priority, toNode: e.ToNode}
	switch e.When.Kind {
	case ir.GuardAbsent:
		k.whenType = "0"
	case ir.GuardBuiltin:
		k.whenType = "1"
		k.whenPath = string(e.When.Builtin)
	case ir.GuardPredicate:
		k.whenType = "2"
		k.whenPath = e.When.Predicate.StatePath
		k.whenOperator = string(e.When.Predicate.Operator)
		k.whenValue = sortedJSON(e.When.Predicate.Value)
	}
	return k
}

func edgeLess(a, b ir.Edge) bool {
	ka, kb := edgeSortKey(a), edgeSortKey(b)
	if ka.fromNode != kb.fromNode {
		return ka.fromNode < kb.fromNode
	}
	if ka.negPriority != kb.negPriority {
		return ka.negPriority < kb.negPriority
	}
	if ka.whenType != kb.whenType {
		return ka.whenType < kb.whenType
	}
	if ka.whenPath != kb.whenPath {
		return ka.whenPath < kb.whenPath
	}
	if ka.whenOperator != kb.whenOperator {
		return ka.whenOperator < kb.whenOperator
	}
	if ka.whenValue != kb.whenValue {
		return ka.whenValue < kb.whenValue
	}
	return ka.toNode < kb.toNode
}

// sortedJSON renders v as JSON with map keys sorted, matching the stable
// serialization used to compare predicate values during canonical sort.
// encoding/json already sorts map[string]any keys, so a plain Marshal
// suffices; non-JSON-able values fall back to their Go %v form.
func sortedJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
