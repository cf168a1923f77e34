// Package compile lowers a canonical, validated ir.GraphConfig into an
// executable state machine: a step function and a router per node, bound
// against the caller's model factory, tool registry, and component
// registry. It holds no execution loop itself — see the runtime package —
// except the GraphRunner seam component nodes use to delegate to a
// compiled sub-graph.
package compile

import (
	"context"

	"github.com/xyzen-dev/agentgraph/ir"
)

// StepFunc executes one node against the current state and returns the
// patch it wants merged in. It must not mutate state directly.
type StepFunc func(ctx context.Context, state ir.State) (ir.Patch, error)

// RouteFunc evaluates a node's outgoing edges against the post-merge state
// and returns the next node id (or ir.End). ok is false only when no guard
// matched and no default edge exists, which the runtime reports as
// invalid_routing — the validator's MULTIPLE_DEFAULT_EDGES/determinism
// checks make this rare but routing is evaluated at runtime against live
// state, so it is not statically impossible.
type RouteFunc func(state ir.State) (target string, ok bool)

// CompiledGraph is the immutable output of Compile: step/router tables plus
// everything the runtime needs to execute them. Safe for concurrent reads
// from multiple invocations of the same compiled graph.
type CompiledGraph struct {
	Steps             map[string]StepFunc
	Routers           map[string]RouteFunc
	State             ir.StateContract
	Limits            ir.Limits
	Entrypoint        string
	NodeComponentKeys map[string]string
}

// GraphRunner executes a CompiledGraph to completion. The runtime package's
// Engine implements this; Compile accepts one so a component node's step
// function can delegate to a compiled sub-graph without compile importing
// runtime (which itself must import compile to run the top-level graph).
type GraphRunner interface {
	Run(ctx context.Context, g *CompiledGraph, initial ir.State) (ir.State, error)
}
