package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitter_StructuredOutput(t *testing.T) {
	t.Run("emits event with all fields", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, true)

		emitter.Emit(Event{
			RunID:  "test-run-001",
			Step:   1,
			NodeID: "testNode",
			Msg:    "node_start",
			Meta:   map[string]interface{}{"key": "value"},
		})

		output := buf.String()
		if output == "" {
			t.Fatal("expected output, got empty string")
		}
		for _, want := range []string{"test-run-001", "testNode", "node_start"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got: %s", want, output)
			}
		}
	})

	t.Run("emits multiple events on separate lines", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, true)

		emitter.Emit(Event{RunID: "run-001", Step: 0, NodeID: "node1", Msg: "node_start"})
		emitter.Emit(Event{RunID: "run-001", Step: 0, NodeID: "node1", Msg: "node_end"})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Errorf("expected 2 lines of output, got %d", len(lines))
		}
	})
}

func TestLogEmitter_JSONFormatting(t *testing.T) {
	t.Run("emits valid JSON with run/step/node fields", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, true)

		emitter.Emit(Event{
			RunID:  "json-run-001",
			Step:   2,
			NodeID: "jsonNode",
			Msg:    "node_end",
			Meta: map[string]interface{}{
				"counter": 42,
				"status":  "success",
			},
		})

		output := buf.String()
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(output), &parsed); err != nil {
			t.Fatalf("expected valid JSON, got error: %v\noutput: %s", err, output)
		}

		if parsed["run_id"] != "json-run-001" {
			t.Errorf("expected run_id 'json-run-001', got %v", parsed["run_id"])
		}
		if parsed["step"] != float64(2) {
			t.Errorf("expected step 2, got %v", parsed["step"])
		}
		if parsed["node_id"] != "jsonNode" {
			t.Errorf("expected node_id 'jsonNode', got %v", parsed["node_id"])
		}
		if parsed["msg"] != "node_end" {
			t.Errorf("expected msg 'node_end', got %v", parsed["msg"])
		}
		if parsed["counter"] != float64(42) {
			t.Errorf("expected counter 42, got %v", parsed["counter"])
		}
	})

	t.Run("emits multiple JSON events on separate lines", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, true)

		emitter.Emit(Event{RunID: "run-001", Step: 0, NodeID: "node1", Msg: "node_start"})
		emitter.Emit(Event{RunID: "run-001", Step: 0, NodeID: "node1", Msg: "node_end"})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Errorf("expected 2 lines of JSON, got %d", len(lines))
		}
		for i, line := range lines {
			var parsed map[string]interface{}
			if err := json.Unmarshal([]byte(line), &parsed); err != nil {
				t.Errorf("line %d: expected valid JSON, got error: %v\nline: %s", i, err, line)
			}
		}
	})
}

func TestLogEmitter_InterfaceContract(t *testing.T) {
	var buf bytes.Buffer
	var _ Emitter = NewLogEmitter(&buf, true)
}
