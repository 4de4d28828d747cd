package token

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jmcleod/sessiond/internal/util"
)

const (
	kdfIterations = 100_000
	kdfKeyLength  = 32
	saltLength    = 16
)

// DeriveKey stretches a low-entropy secret into a 32-byte signing key
// using PBKDF2-HMAC-SHA256.
func DeriveKey(secret, salt []byte) []byte {
	return pbkdf2.Key(secret, salt, kdfIterations, kdfKeyLength, sha256.New)
}

// RandomSalt returns a fresh random salt for DeriveKey.
func RandomSalt() ([]byte, error) {
	return util.RandomBytes(saltLength)
}
