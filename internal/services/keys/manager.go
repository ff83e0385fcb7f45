// Package keys owns the process-lifetime dapp identity keypair.
package keys

import (
	"sync"

	"github.com/gagliardetto/solana-go"

	"rektlink/internal/crypto"
	"rektlink/internal/domain"
)

// Manager generates the identity keypair once and hands out the same
// instance for the rest of the process, so shared secrets derived at
// different times stay mutually usable. The pair is deliberately not
// persisted: a restart produces a fresh identity and any in-flight
// handshake tied to the old one becomes undecryptable.
type Manager struct {
	once sync.Once
	pair domain.IdentityKeyPair
}

// New returns an empty Manager; the pair is generated on first use.
func New() *Manager { return &Manager{} }

// KeyPair returns the process identity, generating it on the first call.
// On entropy failure it falls back to a zero-filled pair marked Degraded
// instead of failing, so the session layer stays constructible; callers
// must check Degraded before trusting any handshake.
func (m *Manager) KeyPair() domain.IdentityKeyPair {
	m.once.Do(func() {
		encPriv, encPub, err := crypto.GenerateX25519()
		if err != nil {
			m.pair = domain.IdentityKeyPair{Degraded: true}
			return
		}
		sessionKey, err := solana.NewRandomPrivateKey()
		if err != nil {
			m.pair = domain.IdentityKeyPair{Degraded: true}
			return
		}
		m.pair = domain.IdentityKeyPair{
			EncPub:     encPub,
			EncPriv:    encPriv,
			SessionKey: sessionKey,
		}
	})
	return m.pair
}

// Degraded reports whether key generation failed and the zero-filled
// fallback is in place.
func (m *Manager) Degraded() bool { return m.KeyPair().Degraded }

// Compile-time assertion that Manager implements domain.IdentityProvider.
var _ domain.IdentityProvider = (*Manager)(nil)
