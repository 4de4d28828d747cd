package telemetry

import (
	"context"
	"log/slog"
)

// LogSink writes events as structured log records.
type LogSink struct {
	logger *slog.Logger
}

var _ Sink = (*LogSink)(nil)

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{
		logger: logger.With("component", "telemetry"),
	}
}

func (s *LogSink) RecordEvent(name string, payload map[string]string) {
	attrs := make([]slog.Attr, 0, len(payload)+1)
	attrs = append(attrs, slog.String("event", name))
	for k, v := range payload {
		attrs = append(attrs, slog.String(k, v))
	}
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, "event", attrs...)
}

func (s *LogSink) Increment(counter string) {
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "counter",
		slog.String("counter", counter))
}
