package emit

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter implements Emitter by turning each event into an OpenTelemetry
// span: span name is event.Msg, attributes are runID/step/nodeID plus
// event.Meta, status is Error when Meta["error"] is set. Spans are point-in-
// time (started and ended immediately), not long-lived.
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter wraps tracer, e.g. otel.Tracer("agentgraph").
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

func (o *OTelEmitter) startSpan(ctx context.Context, event Event) {
	_, span := o.tracer.Start(ctx, event.Msg)
	defer span.End()

	o.addStandardAttributes(span, event)
	o.addMetadataAttributes(span, event.Meta)
	o.addSchedulingAttributes(span, event.Meta)

	if errMsg, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, errMsg)
		span.RecordError(fmt.Errorf("%s", errMsg))
	}
}

// Emit starts and immediately ends a span for event.
func (o *OTelEmitter) Emit(event Event) {
	o.startSpan(context.Background(), event)
}

// EmitBatch emits one span per event, in order.
func (o *OTelEmitter) EmitBatch(ctx context.Context, events []Event) error {
	for _, event := range events {
		o.startSpan(ctx, event)
	}
	return nil
}

// Flush calls ForceFlush on the global tracer provider if it supports one.
func (o *OTelEmitter) Flush(ctx context.Context) error {
	type flusher interface {
		ForceFlush(context.Context) error
	}
	if f, ok := otel.GetTracerProvider().(flusher); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}

func (o *OTelEmitter) addStandardAttributes(span trace.Span, event Event) {
	span.SetAttributes(
		attribute.String("agentgraph.run_id", event.RunID),
		attribute.Int("agentgraph.step", event.Step),
		attribute.String("agentgraph.node_id", event.NodeID),
	)
}

// addMetadataAttributes maps event.Meta onto span attributes, renaming a
// handful of well-known LLM cost/latency keys onto an agentgraph.* namespace.
func (o *OTelEmitter) addMetadataAttributes(span trace.Span, meta map[string]interface{}) {
	for key, value := range meta {
		if key == "step_id" || key == "order_key" {
			continue
		}

		attrKey := key
		switch key {
		case "tokens_in":
			attrKey = "agentgraph.llm.tokens_in"
		case "tokens_out":
			attrKey = "agentgraph.llm.tokens_out"
		case "cost_usd":
			attrKey = "agentgraph.llm.cost_usd"
		case "latency_ms":
			attrKey = "agentgraph.node.latency_ms"
		case "model":
			attrKey = "agentgraph.llm.model"
		}

		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(attrKey, v))
		case int:
			span.SetAttributes(attribute.Int(attrKey, v))
		case int64:
			span.SetAttributes(attribute.Int64(attrKey, v))
		case float64:
			span.SetAttributes(attribute.Float64(attrKey, v))
		case bool:
			span.SetAttributes(attribute.Bool(attrKey, v))
		case time.Duration:
			span.SetAttributes(attribute.Int64(attrKey, int64(v/time.Millisecond)))
		default:
			span.SetAttributes(attribute.String(attrKey, fmt.Sprintf("%v", v)))
		}
	}
}

// addSchedulingAttributes carries the frontier's ordering key, used to
// correlate a span with its position in the deterministic run order.
func (o *OTelEmitter) addSchedulingAttributes(span trace.Span, meta map[string]interface{}) {
	if stepID, ok := meta["step_id"].(string); ok {
		span.SetAttributes(attribute.String("agentgraph.step_id", stepID))
	}
	if orderKey, ok := meta["order_key"].(string); ok {
		span.SetAttributes(attribute.String("agentgraph.order_key", orderKey))
	}
}
