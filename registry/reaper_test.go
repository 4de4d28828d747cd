package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/sessiond/telemetry"
	"github.com/jmcleod/sessiond/token"
)

func TestReaperSweepRemovesOnlyExpired(t *testing.T) {
	r, sink, clock := newTestRegistry(t)

	_, err := r.Create("short", "alice", testSecret, 5*time.Second)
	require.NoError(t, err)
	_, err = r.Create("long", "bob", testSecret, time.Hour)
	require.NoError(t, err)

	clock.Advance(6 * time.Second)

	rp := NewReaper(r, time.Minute)
	rp.sweep()

	snap := r.Snapshot()
	_, ok := snap["short"]
	assert.False(t, ok)
	_, ok = snap["long"]
	assert.True(t, ok)

	var expired []string
	for _, e := range sink.Events() {
		if e.Name == "session.expired" {
			expired = append(expired, e.Payload["sid"])
		}
	}
	assert.Equal(t, []string{"short"}, expired)
}

func TestReaperSweepEmitsOneEventPerRemoval(t *testing.T) {
	r, sink, clock := newTestRegistry(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := r.Create(id, "alice", testSecret, time.Second)
		require.NoError(t, err)
	}
	clock.Advance(2 * time.Second)

	NewReaper(r, time.Minute).sweep()

	count := 0
	for _, name := range sink.EventNames() {
		if name == "session.expired" {
			count++
		}
	}
	assert.Equal(t, 3, count)
	assert.Equal(t, 0, r.Len())
}

func TestReaperStartIdempotent(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	rp := NewReaper(r, 10*time.Millisecond)
	rp.Start()
	rp.Start() // must not spawn a second goroutine
	rp.Stop()

	// Stop after Stop is also a no-op.
	rp.Stop()
}

func TestReaperStopJoins(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	rp := NewReaper(r, 10*time.Millisecond)
	rp.Start()

	done := make(chan struct{})
	go func() {
		rp.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not join the reaper goroutine")
	}
}

func TestReaperBackgroundEviction(t *testing.T) {
	r, _, clock := newTestRegistry(t)

	_, err := r.Create("s1", "alice", testSecret, 5*time.Second)
	require.NoError(t, err)
	clock.Advance(6 * time.Second)

	rp := NewReaper(r, 5*time.Millisecond)
	rp.Start()
	defer rp.Stop()

	require.Eventually(t, func() bool {
		return r.Len() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestReaperRestart(t *testing.T) {
	r, _, clock := newTestRegistry(t)

	rp := NewReaper(r, 5*time.Millisecond)
	rp.Start()
	rp.Stop()

	_, err := r.Create("s1", "alice", testSecret, time.Second)
	require.NoError(t, err)
	clock.Advance(2 * time.Second)

	rp.Start()
	defer rp.Stop()

	require.Eventually(t, func() bool {
		return r.Len() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestReaperDefaultInterval(t *testing.T) {
	r := New(token.HMACSigner{}, WithTelemetry(telemetry.NopSink{}))
	rp := NewReaper(r, 0)
	assert.Equal(t, DefaultReapInterval, rp.interval)
}
