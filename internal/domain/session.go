package domain

import "github.com/gagliardetto/solana-go"

// Session is the wallet session record shared across the app.
//
// It lives at process scope rather than inside any one consumer, so a
// completed handshake survives consumer teardown and re-creation. The
// SharedSecret pointer is the single shared-by-reference owner of the
// secret; a nil secret means no redirect handshake has completed (bound
// sessions carry no secret at all).
//
// Invariant: Connected implies a non-zero PublicKey.
type Session struct {
	Connected    bool
	PublicKey    solana.PublicKey
	SharedSecret *SharedSecret
	Token        string
}

// SessionStore owns the wallet session record. Writers must replace the
// whole record, never individual fields, so readers can never observe a
// connected session paired with a stale secret.
type SessionStore interface {
	Current() Session
	Set(Session)
	Clear()
}
