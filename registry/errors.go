package registry

import (
	"errors"

	"github.com/jmcleod/sessiond/token"
)

var (
	// ErrUnauthenticated indicates a token that failed validation. The
	// caller is deliberately not told whether the signature, the
	// session ID, or the expiry was at fault.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidTTL indicates a negative time-to-live.
	ErrInvalidTTL = errors.New("invalid ttl")
	// ErrInvalidSessionID indicates a session ID containing the token
	// delimiter.
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrCorruptSnapshot indicates a durable snapshot that could not be
	// decoded on load.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// ErrMalformedToken indicates a token that could not be parsed at all.
// It originates in the token package; the alias keeps the registry's
// error taxonomy in one place for callers.
var ErrMalformedToken = token.ErrMalformed
