// Package token implements the signed session token format and the
// Signer abstraction used by the registry.
//
// A token is "<session-id>.<signature>" where the signature covers the
// session ID alone. The delimiter is the first literal dot, so session
// IDs must not contain one.
package token

import (
	"errors"
	"strings"
)

// Delimiter separates the session ID from its signature.
const Delimiter = "."

// ErrMalformed indicates a token that cannot be split into an ID and a
// signature.
var ErrMalformed = errors.New("malformed token")

// Encode joins a session ID and its signature into a token.
func Encode(id, sig string) string {
	return id + Delimiter + sig
}

// Parse splits a token at the first delimiter. The signature part may
// itself contain delimiters; only the ID part is restricted.
func Parse(tok string) (id, sig string, err error) {
	i := strings.Index(tok, Delimiter)
	if i < 0 {
		return "", "", ErrMalformed
	}
	return tok[:i], tok[i+1:], nil
}

// ValidID reports whether id is usable as a session ID, i.e. it does
// not contain the token delimiter.
func ValidID(id string) bool {
	return !strings.Contains(id, Delimiter)
}
