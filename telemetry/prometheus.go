package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exports events and counters as Prometheus counter vectors.
type PromSink struct {
	events   *prometheus.CounterVec
	counters *prometheus.CounterVec
}

var _ Sink = (*PromSink)(nil)

// NewPromSink registers the sink's collectors with reg. Use
// prometheus.DefaultRegisterer to expose them via promhttp.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	s := &PromSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sessiond",
			Name:      "events_total",
			Help:      "Telemetry events by event name.",
		}, []string{"event"}),
		counters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sessiond",
			Name:      "counter_total",
			Help:      "Registry operation counters by counter name.",
		}, []string{"counter"}),
	}
	for _, c := range []prometheus.Collector{s.events, s.counters} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering telemetry collector: %w", err)
		}
	}
	return s, nil
}

func (s *PromSink) RecordEvent(name string, payload map[string]string) {
	s.events.WithLabelValues(name).Inc()
}

func (s *PromSink) Increment(counter string) {
	s.counters.WithLabelValues(counter).Inc()
}
