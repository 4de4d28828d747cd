package registry

import (
	"sync"
	"time"
)

// DefaultReapInterval is how often the Reaper sweeps when no interval
// is configured.
const DefaultReapInterval = 2 * time.Second

// Reaper periodically evicts expired sessions from one Registry.
// Eviction is its exclusive responsibility; Validate only pretends
// expired entries are absent.
type Reaper struct {
	registry *Registry
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// NewReaper creates a Reaper for the given registry. An interval <= 0
// selects DefaultReapInterval. The Reaper does not run until Start is
// called.
func NewReaper(r *Registry, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &Reaper{
		registry: r,
		interval: interval,
	}
}

// Start launches the background sweep goroutine. Calling Start while
// the Reaper is already running is a no-op.
func (rp *Reaper) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.running {
		return
	}
	rp.running = true
	rp.stopCh = make(chan struct{})
	rp.done = make(chan struct{})
	go rp.loop(rp.stopCh, rp.done)
}

// Stop terminates the sweep goroutine and waits for it to exit. A
// stopped Reaper can be started again.
func (rp *Reaper) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	stopCh, done := rp.stopCh, rp.done
	rp.mu.Unlock()

	close(stopCh)
	<-done
}

func (rp *Reaper) loop(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(rp.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			rp.sweep()
		}
	}
}

// sweep removes expired sessions and then reports them. The registry
// lock is released before any telemetry call so a slow sink cannot
// stall concurrent session operations.
func (rp *Reaper) sweep() {
	now := rp.registry.now()
	removed := rp.registry.reapExpired(now)
	for _, id := range removed {
		rp.registry.sink.RecordEvent("session.expired", map[string]string{"sid": id})
	}
}
