// Package memzero wipes key material once it is no longer needed.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}

// Zero32 overwrites a 32-byte secret in place.
func Zero32(b *[32]byte) {
	if b == nil {
		return
	}
	Zero(b[:])
}

// ZeroString is a best-effort wipe helper for callers holding secrets in
// string form; it cannot clear the original backing array, only the copy.
func ZeroString(s *string) {
	if s == nil {
		return
	}
	*s = ""
}
