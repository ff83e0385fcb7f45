package domain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// SharedSecret is the symmetric key derived from an X25519 key agreement.
type SharedSecret [32]byte

// Slice returns the secret as a []byte.
func (s SharedSecret) Slice() []byte { return s[:] }

// Nonce is a 24-byte one-time value for the authenticated-encryption box.
type Nonce [24]byte

// Slice returns the nonce as a []byte.
func (n Nonce) Slice() []byte { return n[:] }

// IdentityKeyPair holds the process-lifetime dapp identity: the X25519 pair
// used to negotiate shared secrets with the external wallet, and the Ed25519
// session key registered with the smart-wallet delegation layer for
// co-signing transactions.
//
// Degraded is set when key generation failed and the pair is zero-filled;
// callers must refuse to establish a secure channel on a degraded identity.
type IdentityKeyPair struct {
	EncPub     X25519Public
	EncPriv    X25519Private
	SessionKey solana.PrivateKey
	Degraded   bool
}

// MustX25519Public converts b to an X25519Public and panics on bad length.
func MustX25519Public(b []byte) X25519Public {
	if len(b) != 32 {
		panic(fmt.Errorf("X25519 public: want 32 bytes, got %d", len(b)))
	}
	var out X25519Public
	copy(out[:], b)
	return out
}
