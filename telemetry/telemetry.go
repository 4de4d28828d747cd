// Package telemetry defines the fire-and-forget event sink the session
// registry reports into, plus several interchangeable implementations.
//
// Sinks must never influence registry correctness: a slow or failing
// sink may lose events but the registry carries on.
package telemetry

// Sink receives named events and counter increments.
type Sink interface {
	// RecordEvent records a named event with an optional payload.
	RecordEvent(name string, payload map[string]string)
	// Increment bumps a named counter by one.
	Increment(counter string)
}

// NopSink discards everything. It is the registry default.
type NopSink struct{}

var _ Sink = NopSink{}

func (NopSink) RecordEvent(string, map[string]string) {}

func (NopSink) Increment(string) {}

// MultiSink fans out to every wrapped sink in order.
type MultiSink []Sink

var _ Sink = MultiSink{}

func (m MultiSink) RecordEvent(name string, payload map[string]string) {
	for _, s := range m {
		s.RecordEvent(name, payload)
	}
}

func (m MultiSink) Increment(counter string) {
	for _, s := range m {
		s.Increment(counter)
	}
}
