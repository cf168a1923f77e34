package registry

import (
	"testing"

	"github.com/xyzen-dev/agentgraph/compile"
	"github.com/xyzen-dev/agentgraph/model"
	"github.com/xyzen-dev/agentgraph/tool"
)

type stubComponent struct {
	key, version string
}

func (s stubComponent) Metadata() compile.ComponentMetadata {
	return compile.ComponentMetadata{Key: s.key, Version: s.version}
}

func (s stubComponent) BuildGraph(model.LLMFactory, []tool.Tool, map[string]any) (*compile.CompiledGraph, error) {
	return &compile.CompiledGraph{}, nil
}

func TestRegisterDuplicateKeyRejected(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stubComponent{key: "a", version: "1.0.0"}, false); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := r.Register(stubComponent{key: "a", version: "1.1.0"}, false)
	if _, ok := err.(*DuplicateKeyError); !ok {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
}

func TestRegisterOverrideAppendsVersion(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(stubComponent{key: "a", version: "1.0.0"}, false)
	if err := r.Register(stubComponent{key: "a", version: "2.0.0"}, true); err != nil {
		t.Fatalf("override register: %v", err)
	}
	got, ok := r.Get("a")
	if !ok || got.Metadata().Version != "2.0.0" {
		t.Fatalf("expected highest version 2.0.0, got %v ok=%v", got, ok)
	}
}

func TestResolveExactMatch(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(stubComponent{key: "a", version: "1.0.0"}, false)
	_ = r.Register(stubComponent{key: "a", version: "2.0.0"}, true)

	got, err := r.Resolve("a", "==1.0.0")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Metadata().Version != "1.0.0" {
		t.Fatalf("expected 1.0.0, got %s", got.Metadata().Version)
	}
}

func TestResolveCaretConstraint(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(stubComponent{key: "a", version: "1.2.0"}, false)
	_ = r.Register(stubComponent{key: "a", version: "1.5.0"}, true)
	_ = r.Register(stubComponent{key: "a", version: "2.0.0"}, true)

	got, err := r.Resolve("a", "^1.0")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Metadata().Version != "1.5.0" {
		t.Fatalf("expected highest 1.x match 1.5.0, got %s", got.Metadata().Version)
	}
}

func TestResolveNoVersionSatisfiesRecognizedConstraint(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(stubComponent{key: "a", version: "1.0.0"}, false)

	_, err := r.Resolve("a", "^2.0")
	if _, ok := err.(*NoVersionSatisfiesError); !ok {
		t.Fatalf("expected NoVersionSatisfiesError, got %v", err)
	}
}

func TestResolveUnrecognizedConstraintDegradesWithWarning(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(stubComponent{key: "a", version: "1.0.0"}, false)
	_ = r.Register(stubComponent{key: "a", version: "3.0.0"}, true)

	got, err := r.Resolve("a", "not a real constraint")
	if err != nil {
		t.Fatalf("Resolve should degrade gracefully, got error: %v", err)
	}
	if got.Metadata().Version != "3.0.0" {
		t.Fatalf("expected degrade to highest version, got %s", got.Metadata().Version)
	}

	warnings := r.Warnings()
	if len(warnings) != 1 || warnings[0].Key != "a" {
		t.Fatalf("expected one recorded warning, got %+v", warnings)
	}
}

func TestResolveUnknownKey(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Resolve("missing", "*"); err == nil {
		t.Fatal("expected NotFoundError for unregistered key")
	}
}

func TestEnsureRegisteredIsIdempotent(t *testing.T) {
	r := NewRegistry()
	builtins := []compile.Component{stubComponent{key: "a", version: "1.0.0"}}

	r.EnsureRegistered(builtins)
	r.EnsureRegistered(builtins)

	all := r.ListAll()
	if len(all) != 1 {
		t.Fatalf("expected EnsureRegistered to register exactly once, got %d entries", len(all))
	}
}
