// Package emit provides event emission and observability for graph execution.
package emit

import "context"

// Emitter receives observability events from a running graph. Implementations
// must not block execution and must not panic; failures are logged
// internally and swallowed.
//
// Backends in this repo: LogEmitter (zap-backed structured logs), OTelEmitter
// (span per node step), BufferedEmitter (in-memory, for tests), NullEmitter.
type Emitter interface {
	// Emit sends a single event. Must not panic.
	Emit(event Event)

	// EmitBatch sends events in order. Returns an error only on
	// configuration-level failures; per-event delivery issues are logged,
	// not returned.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until buffered events are delivered or ctx is done. Safe
	// to call more than once.
	Flush(ctx context.Context) error
}
