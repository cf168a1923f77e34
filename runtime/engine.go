// Package runtime executes a compile.CompiledGraph to completion: it owns
// the batch dispatch loop, state merging, limit enforcement, and
// observability emission that compile deliberately does not. Engine
// implements compile.GraphRunner so compiled component sub-graphs run
// through the exact same loop as a top-level invocation.
package runtime

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/xyzen-dev/agentgraph/compile"
	"github.com/xyzen-dev/agentgraph/emit"
	"github.com/xyzen-dev/agentgraph/ir"
)

// Options configures an Engine. Emitter and Metrics may be nil; Engine
// substitutes a no-op emitter and skips metrics recording respectively.
type Options struct {
	Emitter emit.Emitter
	Metrics *Metrics
}

// Engine runs compiled graphs. One Engine can run many graphs concurrently;
// it holds no per-run state itself.
type Engine struct {
	emitter emit.Emitter
	metrics *Metrics
}

// NewEngine builds an Engine from opts.
func NewEngine(opts Options) *Engine {
	emitter := opts.Emitter
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}
	return &Engine{emitter: emitter, metrics: opts.Metrics}
}

// Run drives g to completion starting from initial, following the batch
// algorithm:
//  1. Seed the frontier with g.Entrypoint.
//  2. While the frontier is non-empty: dispatch up to g.Limits.MaxConcurrency
//     node steps concurrently, wait for the batch, merge every patch in
//     canonical node-id order, then evaluate each executed node's router
//     against the merged state to build the next frontier. A node that
//     routes to ir.End does not re-enter the frontier.
//  3. Stop and return a *RunError when the step or wall-clock limit trips,
//     the caller cancels ctx, a step returns an error, or a router can't
//     find a matching edge.
func (e *Engine) Run(ctx context.Context, g *compile.CompiledGraph, initial ir.State) (ir.State, error) {
	runID := newRunID()
	deadline := time.Now().Add(time.Duration(g.Limits.MaxTimeS) * time.Second)

	state := initial.Clone()
	frontier := []string{g.Entrypoint}
	steps := 0

	if e.metrics != nil {
		defer e.metrics.UpdateQueueDepth(0)
	}

	e.emitter.Emit(emit.Event{RunID: runID, Msg: "run_start"})

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			e.emitter.Emit(emit.Event{RunID: runID, Msg: "run_cancelled"})
			return state, &RunError{Reason: ExitCancelled, Message: err.Error(), PartialState: state}
		}
		if time.Now().After(deadline) {
			e.recordLimit("max_time_s")
			e.emitter.Emit(emit.Event{RunID: runID, Msg: "run_limit_exceeded", Meta: map[string]interface{}{"limit": "max_time_s"}})
			return state, &RunError{Reason: ExitLimitExceeded, Message: "max_time_s exceeded", PartialState: state}
		}

		batch := dedup(frontier)
		if e.metrics != nil {
			e.metrics.UpdateQueueDepth(len(batch))
		}
		if g.Limits.MaxSteps > 0 && steps+len(batch) > g.Limits.MaxSteps {
			e.recordLimit("max_steps")
			e.emitter.Emit(emit.Event{RunID: runID, Msg: "run_limit_exceeded", Meta: map[string]interface{}{"limit": "max_steps"}})
			return state, &RunError{Reason: ExitLimitExceeded, Message: "max_steps exceeded", PartialState: state}
		}
		steps += len(batch)

		patches, err := e.dispatchBatch(ctx, runID, g, batch, state)
		if err != nil {
			return state, err
		}

		for _, nodeID := range batch {
			if p, ok := patches[nodeID]; ok {
				g.State.Merge(state, p)
			}
		}

		next, err := e.routeBatch(runID, g, batch, state)
		if err != nil {
			return state, err
		}
		frontier = next
	}

	e.emitter.Emit(emit.Event{RunID: runID, Msg: "run_complete"})
	return state, nil
}

type batchResult struct {
	nodeID string
	patch  ir.Patch
	err    error
}

// dispatchBatch runs batch concurrently, bounded by MaxConcurrency, and
// returns each node's patch keyed by node id. The first step error cancels
// the batch's shared context and is returned; steps already inflight are
// allowed to finish but their patches are discarded.
func (e *Engine) dispatchBatch(ctx context.Context, runID string, g *compile.CompiledGraph, batch []string, state ir.State) (map[string]ir.Patch, error) {
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, maxConcurrency(g.Limits))
	results := make(chan batchResult, len(batch))
	var wg sync.WaitGroup

	snapshot := state.Clone()

	for _, nodeID := range batch {
		step, ok := g.Steps[nodeID]
		if !ok {
			results <- batchResult{nodeID: nodeID, err: fmt.Errorf("no step registered for node %q", nodeID)}
			continue
		}

		wg.Add(1)
		go func(id string, s compile.StepFunc) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			e.emitter.Emit(emit.Event{RunID: runID, NodeID: id, Msg: "node_start"})
			start := time.Now()
			patch, err := s(batchCtx, snapshot)
			latency := time.Since(start)

			status := "success"
			if err != nil {
				status = "error"
			}
			if e.metrics != nil {
				e.metrics.RecordStepLatency(id, latency, status)
			}

			if err != nil {
				e.emitter.Emit(emit.Event{RunID: runID, NodeID: id, Msg: "node_error", Meta: map[string]interface{}{"error": err.Error()}})
				results <- batchResult{nodeID: id, err: err}
				cancel()
				return
			}
			e.emitter.Emit(emit.Event{RunID: runID, NodeID: id, Msg: "node_end", Meta: map[string]interface{}{"duration_ms": latency.Milliseconds()}})
			results <- batchResult{nodeID: id, patch: patch}
		}(nodeID, step)
	}

	if e.metrics != nil {
		e.metrics.UpdateInflightNodes(len(batch))
		defer e.metrics.UpdateInflightNodes(0)
	}

	wg.Wait()
	close(results)

	patches := make(map[string]ir.Patch, len(batch))
	var firstErr *batchResult
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = &r
			}
			continue
		}
		patches[r.nodeID] = r.patch
	}

	if firstErr != nil {
		return nil, &RunError{Reason: ExitNodeFailed, NodeID: firstErr.nodeID, Message: firstErr.err.Error(), PartialState: state}
	}
	return patches, nil
}

// routeBatch evaluates each executed node's router against the post-merge
// state and returns the deduplicated next frontier.
func (e *Engine) routeBatch(runID string, g *compile.CompiledGraph, batch []string, state ir.State) ([]string, error) {
	var next []string
	for _, nodeID := range batch {
		router, ok := g.Routers[nodeID]
		if !ok {
			continue
		}
		target, ok := router(state)
		if !ok {
			return nil, &RunError{Reason: ExitInvalidRouting, NodeID: nodeID, Message: "no edge matched", PartialState: state}
		}
		e.emitter.Emit(emit.Event{RunID: runID, NodeID: nodeID, Msg: "routing_decision", Meta: map[string]interface{}{"target": target}})
		if target == ir.End {
			continue
		}
		next = append(next, target)
	}
	return next, nil
}

func (e *Engine) recordLimit(limit string) {
	if e.metrics != nil {
		e.metrics.IncrementLimitExceeded(limit)
	}
}

func maxConcurrency(limits ir.Limits) int {
	if limits.MaxConcurrency <= 0 {
		return 1
	}
	return limits.MaxConcurrency
}

// dedup returns ids sorted with repeats dropped, so a node named as the
// routing target of two different batch members is only dispatched once in
// the next batch.
func dedup(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func newRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id.String()
}
