package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer produces and compares signatures over token payloads.
type Signer interface {
	// Sign returns the signature of msg under secret.
	Sign(msg string, secret []byte) string
	// Verify compares two signatures in constant time.
	Verify(got, want string) bool
}

// HMACSigner signs with HMAC-SHA256 and encodes signatures as
// lowercase hex.
type HMACSigner struct{}

var _ Signer = HMACSigner{}

func (HMACSigner) Sign(msg string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

func (HMACSigner) Verify(got, want string) bool {
	return hmac.Equal([]byte(got), []byte(want))
}
