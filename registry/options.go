package registry

import (
	"time"

	"github.com/jmcleod/sessiond/telemetry"
)

// Option configures a Registry.
type Option func(*Registry)

// WithTelemetry sets the sink the registry reports into.
func WithTelemetry(sink telemetry.Sink) Option {
	return func(r *Registry) {
		r.sink = sink
	}
}

// WithClock overrides the registry's time source. Tests use this to
// step time deterministically.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}
