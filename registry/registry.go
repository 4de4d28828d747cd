// Package registry implements an in-memory session table with signed
// caller-facing tokens, background expiry, and snapshot persistence.
//
// A Registry is an owned object: callers and the Reaper hold a
// reference to the same instance, and independent registries can
// coexist in one process.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/jmcleod/sessiond/telemetry"
	"github.com/jmcleod/sessiond/token"
)

// Session binds a user identity to a time-bounded identifier.
type Session struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is logically dead at now.
// A session whose expiration equals now is already dead.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Registry is a mutex-guarded mapping from session ID to Session.
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]Session

	signer token.Signer
	sink   telemetry.Sink
	now    func() time.Time
}

// New creates an empty Registry using the given signer. With no
// options the registry reports into a NopSink and uses wall-clock
// time.
func New(signer token.Signer, opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]Session),
		signer:   signer,
		sink:     telemetry.NopSink{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a session and returns its token. An existing
// session with the same ID is silently replaced; recreating an ID is
// how callers refresh a session.
func (r *Registry) Create(id, user string, secret []byte, ttl time.Duration) (string, error) {
	if ttl < 0 {
		return "", fmt.Errorf("ttl %s: %w", ttl, ErrInvalidTTL)
	}
	if !token.ValidID(id) {
		return "", fmt.Errorf("session id %q: %w", id, ErrInvalidSessionID)
	}

	sig := r.signer.Sign(id, secret)
	now := r.now()

	r.mu.Lock()
	r.sessions[id] = Session{
		UserID:    user,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	r.mu.Unlock()

	r.sink.Increment("writes")
	r.sink.RecordEvent("session.created", map[string]string{"sid": id, "user": user})
	return token.Encode(id, sig), nil
}

// Validate checks a token's signature and the liveness of its session,
// returning the owning user ID. Every failure mode returns
// ErrUnauthenticated or ErrMalformedToken with no further detail;
// operators can tell the cases apart via telemetry. An expired session
// fails validation even before the reaper removes it; Validate never
// removes entries itself.
func (r *Registry) Validate(tok string, secret []byte) (string, error) {
	id, sig, err := token.Parse(tok)
	if err != nil {
		r.sink.Increment("fails")
		return "", err
	}

	expected := r.signer.Sign(id, secret)
	if !r.signer.Verify(sig, expected) {
		r.sink.Increment("fails")
		r.sink.RecordEvent("session.invalid_sig", map[string]string{"sid": id})
		return "", ErrUnauthenticated
	}

	now := r.now()
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok {
		// No event for an unknown ID, only the counter.
		r.sink.Increment("fails")
		return "", ErrUnauthenticated
	}
	if s.Expired(now) {
		r.sink.Increment("fails")
		r.sink.RecordEvent("session.expired_seen", map[string]string{"sid": id})
		return "", ErrUnauthenticated
	}

	r.sink.Increment("reads")
	return s.UserID, nil
}

// Snapshot returns a point-in-time copy of all sessions. The copy
// shares no structure with the live table.
func (r *Registry) Snapshot() map[string]Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Session, len(r.sessions))
	for id, s := range r.sessions {
		out[id] = s
	}
	return out
}

// ReplaceAll atomically discards the current table and installs the
// given sessions. The registry keeps its own copy of the input.
func (r *Registry) ReplaceAll(sessions map[string]Session) {
	next := make(map[string]Session, len(sessions))
	for id, s := range sessions {
		next[id] = s
	}
	r.mu.Lock()
	r.sessions = next
	r.mu.Unlock()
}

// Len returns the number of entries currently in the table, live or
// expired-but-unreaped.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// reapExpired removes every session dead at now and returns the
// removed IDs. Telemetry is the caller's responsibility so the lock is
// never held across sink calls.
func (r *Registry) reapExpired(now time.Time) []string {
	var removed []string
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			removed = append(removed, id)
		}
	}
	r.mu.Unlock()
	return removed
}
