package util

import (
	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKD normalization so that visually identical user
// identifiers compare equal regardless of input method.
func Normalize(s string) string {
	return norm.NFKD.String(s)
}
