// Package emit provides event emission and observability for graph execution.
package emit

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogEmitter implements Emitter on top of a zap.Logger. Each Event becomes
// one structured log line with runID/step/nodeID/msg fields plus whatever
// Meta carries.
type LogEmitter struct {
	logger *zap.Logger
}

// NewLogEmitter builds a LogEmitter that writes one line per event to w:
// JSON when jsonMode is true, zap's console format otherwise.
func NewLogEmitter(w io.Writer, jsonMode bool) *LogEmitter {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if jsonMode {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.InfoLevel)
	return &LogEmitter{logger: zap.New(core)}
}

// NewLogEmitterFromZap wraps an existing *zap.Logger, e.g. one already
// configured by a host application with its own sinks and sampling.
func NewLogEmitterFromZap(l *zap.Logger) *LogEmitter {
	return &LogEmitter{logger: l}
}

func (l *LogEmitter) fields(event Event) []zap.Field {
	fields := make([]zap.Field, 0, 4+len(event.Meta))
	fields = append(fields,
		zap.String("run_id", event.RunID),
		zap.Int("step", event.Step),
	)
	if event.NodeID != "" {
		fields = append(fields, zap.String("node_id", event.NodeID))
	}
	for k, v := range event.Meta {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

// Emit writes event as one structured log line at info level.
func (l *LogEmitter) Emit(event Event) {
	l.logger.Info(event.Msg, l.fields(event)...)
}

// EmitBatch writes each event in order. Always attempts every event even if
// an earlier one's fields are unusual; zap never errors on Any().
func (l *LogEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, event := range events {
		l.Emit(event)
	}
	return nil
}

// Flush drains the underlying zap core.
func (l *LogEmitter) Flush(_ context.Context) error {
	return l.logger.Sync()
}
