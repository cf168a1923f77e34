package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xyzen-dev/agentgraph/compile"
	"github.com/xyzen-dev/agentgraph/ir"
	"github.com/xyzen-dev/agentgraph/model"
)

func mockFactory(out model.ChatOut) model.LLMFactory {
	return model.LLMFactoryFunc(func(ctx context.Context, opts model.ModelOptions) (model.ChatModel, error) {
		return &model.MockChatModel{Responses: []model.ChatOut{out}}, nil
	})
}

func singleNodeGraph(t *testing.T, limits ir.Limits) *compile.CompiledGraph {
	t.Helper()
	llmCfg := ir.DefaultLLMNodeConfig()
	llmCfg.ToolsEnabled = false
	cfg := ir.GraphConfig{
		Graph: ir.GraphIR{
			Entrypoints: []string{"agent"},
			Nodes:       []ir.Node{{ID: "agent", Kind: ir.NodeLLM, LLM: &llmCfg}},
			Edges:       []ir.Edge{{FromNode: "agent", ToNode: ir.End}},
		},
		Limits: limits,
	}
	g, err := compile.Compile(cfg, compile.Options{LLMFactory: mockFactory(model.ChatOut{Text: "done"})})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return g
}

func TestEngineRunCompletesMinimalGraph(t *testing.T) {
	g := singleNodeGraph(t, ir.DefaultLimits())
	engine := NewEngine(Options{})

	final, err := engine.Run(context.Background(), g, ir.State{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if final["response"] != "done" {
		t.Fatalf("expected response=done, got %v", final["response"])
	}
}

func TestEngineRunRespectsMaxSteps(t *testing.T) {
	// A self-loop whose only exit to END never matches (messages is non-empty
	// after the first step, and the loop edge outranks it) exceeds max_steps.
	llmCfg := ir.DefaultLLMNodeConfig()
	llmCfg.ToolsEnabled = false
	cfg := ir.GraphConfig{
		Graph: ir.GraphIR{
			Entrypoints: []string{"a"},
			Nodes: []ir.Node{
				{ID: "a", Kind: ir.NodeLLM, LLM: &llmCfg},
			},
			Edges: []ir.Edge{
				{FromNode: "a", ToNode: "a", When: ir.Guard{Kind: ir.GuardAbsent}, Priority: 1},
				{FromNode: "a", ToNode: ir.End, When: ir.Guard{Kind: ir.GuardPredicate,
					Predicate: ir.Predicate{StatePath: ir.MessagesPath, Operator: ir.OpFalsy}}},
			},
		},
		Limits: ir.Limits{MaxTimeS: 300, MaxSteps: 3, MaxConcurrency: 1},
	}
	g, err := compile.Compile(cfg, compile.Options{LLMFactory: mockFactory(model.ChatOut{Text: "x"})})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	engine := NewEngine(Options{})
	_, err = engine.Run(context.Background(), g, ir.State{})
	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Reason != ExitLimitExceeded {
		t.Fatalf("expected ExitLimitExceeded, got %v", err)
	}
}

func TestEngineRunPropagatesNodeFailure(t *testing.T) {
	llmCfg := ir.DefaultLLMNodeConfig()
	llmCfg.ToolsEnabled = false
	cfg := ir.GraphConfig{
		Graph: ir.GraphIR{
			Entrypoints: []string{"agent"},
			Nodes:       []ir.Node{{ID: "agent", Kind: ir.NodeLLM, LLM: &llmCfg}},
			Edges:       []ir.Edge{{FromNode: "agent", ToNode: ir.End}},
		},
		Limits: ir.DefaultLimits(),
	}
	failingFactory := model.LLMFactoryFunc(func(ctx context.Context, opts model.ModelOptions) (model.ChatModel, error) {
		return &model.MockChatModel{Err: errors.New("boom")}, nil
	})
	g, err := compile.Compile(cfg, compile.Options{LLMFactory: failingFactory})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	engine := NewEngine(Options{})
	_, err = engine.Run(context.Background(), g, ir.State{})
	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Reason != ExitNodeFailed {
		t.Fatalf("expected ExitNodeFailed, got %v", err)
	}
}

func TestEngineRunRespectsCancellation(t *testing.T) {
	g := singleNodeGraph(t, ir.DefaultLimits())
	engine := NewEngine(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, g, ir.State{})
	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Reason != ExitCancelled {
		t.Fatalf("expected ExitCancelled, got %v", err)
	}
}

func TestEngineRunRespectsMaxTimeS(t *testing.T) {
	g := singleNodeGraph(t, ir.Limits{MaxTimeS: 0, MaxSteps: 10, MaxConcurrency: 1})
	engine := NewEngine(Options{})

	// MaxTimeS of 0 means the deadline is already in the past.
	_, err := engine.Run(context.Background(), g, ir.State{})
	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Reason != ExitLimitExceeded {
		t.Fatalf("expected ExitLimitExceeded on zero time budget, got %v", err)
	}
}

func TestDedupSortsAndDropsRepeats(t *testing.T) {
	got := dedup([]string{"b", "a", "b", "c", "a"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMaxConcurrencyDefaultsToOne(t *testing.T) {
	if maxConcurrency(ir.Limits{MaxConcurrency: 0}) != 1 {
		t.Fatal("expected 0 MaxConcurrency to default to 1")
	}
	if maxConcurrency(ir.Limits{MaxConcurrency: 5}) != 5 {
		t.Fatal("expected explicit MaxConcurrency to be honored")
	}
}

func TestNewRunIDIsUnique(t *testing.T) {
	a := newRunID()
	time.Sleep(time.Millisecond)
	b := newRunID()
	if a == b {
		t.Fatal("expected distinct run ids")
	}
}
