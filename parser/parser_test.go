package parser

import (
	"strings"
	"testing"

	"github.com/xyzen-dev/agentgraph/ir"
)

func minimalPayload() string {
	return `{
		"schema_version": "3.0",
		"key": "minimal",
		"graph": {
			"entrypoints": ["a"],
			"nodes": [
				{"id": "a", "name": "a", "kind": "llm", "config": {"prompt_template": "hi"}}
			],
			"edges": [
				{"from_node": "a", "to_node": "END"}
			]
		}
	}`
}

func TestParseMinimalGraph(t *testing.T) {
	cfg, err := Parse([]byte(minimalPayload()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Key != "minimal" {
		t.Fatalf("expected key=minimal, got %q", cfg.Key)
	}
	if cfg.Revision != ir.DefaultRevision {
		t.Fatalf("expected default revision, got %d", cfg.Revision)
	}
	if len(cfg.Graph.Nodes) != 1 || cfg.Graph.Nodes[0].Kind != ir.NodeLLM {
		t.Fatalf("expected one llm node, got %+v", cfg.Graph.Nodes)
	}
}

func TestParseRejectsUnknownTopLevelField(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [], "edges": []}, "bogus": 1}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestParseRejectsWrongSchemaVersion(t *testing.T) {
	payload := `{"schema_version": "2.0", "key": "x", "graph": {"entrypoints": [], "nodes": [], "edges": []}}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected schema_version mismatch to be rejected")
	}
}

func TestParseRejectsEmptyKey(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": []}}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}

func TestParseRejectsNonPositiveRevision(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "revision": 0, "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": []}}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected non-positive revision to be rejected")
	}
}

func TestParseRejectsEmptyNodesAndEntrypoints(t *testing.T) {
	t.Run("empty nodes", func(t *testing.T) {
		payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [], "edges": []}}`
		if _, err := Parse([]byte(payload)); err == nil {
			t.Fatal("expected empty nodes to be rejected")
		}
	})
	t.Run("empty entrypoints", func(t *testing.T) {
		payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": [], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": []}}`
		if _, err := Parse([]byte(payload)); err == nil {
			t.Fatal("expected empty entrypoints to be rejected")
		}
	})
}

func TestParseRejectsDuplicateEntrypoint(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a", "a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": []}}`
	_, err := Parse([]byte(payload))
	if err == nil || !strings.Contains(err.Error(), "duplicate entrypoint") {
		t.Fatalf("expected duplicate entrypoint error, got %v", err)
	}
}

func TestParseRejectsUnrecognizedNodeKind(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"bogus"}], "edges": []}}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected unrecognized node kind to be rejected")
	}
}

func TestParseStartIsNotAValidEdgeEndpoint(t *testing.T) {
	t.Run("as source", func(t *testing.T) {
		payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": [{"from_node":"START","to_node":"a"}]}}`
		if _, err := Parse([]byte(payload)); err == nil {
			t.Fatal("expected START as edge source to be rejected")
		}
	})
	t.Run("as target", func(t *testing.T) {
		payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": [{"from_node":"a","to_node":"START"}]}}`
		if _, err := Parse([]byte(payload)); err == nil {
			t.Fatal("expected START as edge target to be rejected")
		}
	})
}

func TestParseGuardBuiltinString(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": [{"from_node":"a","to_node":"END","when":"has_tool_calls"}]}}`
	cfg, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	guard := cfg.Graph.Edges[0].When
	if guard.Kind != ir.GuardBuiltin || guard.Builtin != ir.HasToolCalls {
		t.Fatalf("expected builtin has_tool_calls guard, got %+v", guard)
	}
}

func TestParseGuardUnrecognizedBuiltinRejected(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": [{"from_node":"a","to_node":"END","when":"bogus_condition"}]}}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected unrecognized builtin condition to be rejected")
	}
}

func TestParseGuardPredicateObject(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": [{"from_node":"a","to_node":"END","when":{"state_path":"foo","operator":"truthy"}}]}}`
	cfg, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	guard := cfg.Graph.Edges[0].When
	if guard.Kind != ir.GuardPredicate || guard.Predicate.StatePath != "foo" || guard.Predicate.Operator != ir.OpTruthy {
		t.Fatalf("expected predicate guard on foo truthy, got %+v", guard)
	}
}

func TestParseToolNodeRejectsTimeoutOutOfBounds(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"tool","config":{"timeout_seconds":9999}}], "edges": []}}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected out-of-bounds timeout_seconds to be rejected")
	}
}

func TestParseTransformNodeRequiresTemplateAndOutputKey(t *testing.T) {
	t.Run("missing config entirely", func(t *testing.T) {
		payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"transform"}], "edges": []}}`
		if _, err := Parse([]byte(payload)); err == nil {
			t.Fatal("expected transform node without config to be rejected")
		}
	})
	t.Run("missing output_key", func(t *testing.T) {
		payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"transform","config":{"template":"x"}}], "edges": []}}`
		if _, err := Parse([]byte(payload)); err == nil {
			t.Fatal("expected transform node without output_key to be rejected")
		}
	})
}

func TestParseComponentNodeRequiresComponentRefKey(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"component","config":{"component_ref":{}}}], "edges": []}}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected component node without component_ref.key to be rejected")
	}
}

func TestParseLimitsOutOfBoundsRejected(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": []}, "limits": {"max_steps": 999999}}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected out-of-bounds max_steps to be rejected")
	}
}

func TestParseDepsRequiresKeys(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": []}, "deps": {"models": [{"provider": "anthropic"}]}}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected model dep without key to be rejected")
	}
}

func TestParseMetadataOptional(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": []}, "metadata": {"display_name": "X", "tags": ["a","b"]}}`
	cfg, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Metadata == nil || cfg.Metadata.DisplayName != "X" || len(cfg.Metadata.Tags) != 2 {
		t.Fatalf("expected metadata parsed, got %+v", cfg.Metadata)
	}
}

func TestParseStateContractUnrecognizedReducerRejected(t *testing.T) {
	payload := `{"schema_version": "3.0", "key": "x", "graph": {"entrypoints": ["a"], "nodes": [{"id":"a","name":"a","kind":"llm"}], "edges": []}, "state": {"reducers": {"foo": "bogus"}}}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected unrecognized reducer to be rejected")
	}
}
