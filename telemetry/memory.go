package telemetry

import (
	"sync"
	"time"
)

// snapshotEventLimit bounds how many recent events a Snapshot returns.
const snapshotEventLimit = 50

// eventCapacity bounds how many events a MemorySink retains. Older
// events are dropped as new ones arrive.
const eventCapacity = 1024

// Event is a recorded telemetry event.
type Event struct {
	Time    time.Time         `json:"t"`
	Name    string            `json:"name"`
	Payload map[string]string `json:"meta"`
}

// Snapshot is a point-in-time copy of a MemorySink's state.
type Snapshot struct {
	Counters map[string]int64 `json:"counters"`
	Events   []Event          `json:"events"`
}

// MemorySink keeps counters and a bounded ring of recent events in
// memory. Intended for tests and for introspection endpoints in
// single-process deployments; retention is capped so a long-running
// server does not grow without bound.
type MemorySink struct {
	mu       sync.Mutex
	counters map[string]int64
	events   []Event
	now      func() time.Time
}

var _ Sink = (*MemorySink)(nil)

func NewMemorySink() *MemorySink {
	return &MemorySink{
		counters: make(map[string]int64),
		now:      time.Now,
	}
}

func (m *MemorySink) RecordEvent(name string, payload map[string]string) {
	p := make(map[string]string, len(payload))
	for k, v := range payload {
		p[k] = v
	}
	m.mu.Lock()
	m.events = append(m.events, Event{Time: m.now(), Name: name, Payload: p})
	if len(m.events) > eventCapacity {
		m.events = m.events[len(m.events)-eventCapacity:]
	}
	m.mu.Unlock()
}

func (m *MemorySink) Increment(counter string) {
	m.mu.Lock()
	m.counters[counter]++
	m.mu.Unlock()
}

// Counter returns the current value of a named counter.
func (m *MemorySink) Counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// Events returns a copy of all recorded events in order.
func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// EventNames returns the names of all recorded events in order.
func (m *MemorySink) EventNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.events))
	for i, e := range m.events {
		names[i] = e.Name
	}
	return names
}

// Snapshot returns counter copies and the most recent events.
func (m *MemorySink) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	events := m.events
	if len(events) > snapshotEventLimit {
		events = events[len(events)-snapshotEventLimit:]
	}
	out := make([]Event, len(events))
	copy(out, events)
	return Snapshot{Counters: counters, Events: out}
}
