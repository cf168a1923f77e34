package emit

// Event is a single observability record emitted during graph execution:
// node lifecycle, state merges, errors, and run-level start/complete.
type Event struct {
	// RunID identifies the execution that emitted this event.
	RunID string

	// Step is the sequential step number (1-indexed) when the emitting code
	// supplies one, zero otherwise. runtime.Engine does not set it, so all
	// of its events carry zero.
	Step int

	// NodeID identifies which node emitted this event. Empty for run-level
	// events.
	NodeID string

	// Msg is a short machine-stable event name, e.g. "node_start",
	// "node_end", "run_complete".
	Msg string

	// Meta holds event-specific structured data (duration_ms, error,
	// tokens, delta, exit_reason, ...).
	Meta map[string]interface{}
}
