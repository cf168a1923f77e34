package emit

import "context"

// NullEmitter discards all events. Used when observability overhead is
// unwanted, e.g. in unit tests that don't assert on emitted events.
type NullEmitter struct{}

// NewNullEmitter returns a NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards event.
func (n *NullEmitter) Emit(event Event) {}

// EmitBatch discards events.
func (n *NullEmitter) EmitBatch(_ context.Context, events []Event) error {
	return nil
}

// Flush is a no-op.
func (n *NullEmitter) Flush(_ context.Context) error {
	return nil
}
