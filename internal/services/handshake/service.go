// Package handshake converts a wallet connect redirect into a populated
// wallet session over an authenticated secure channel.
package handshake

import (
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"rektlink/internal/crypto"
	"rektlink/internal/domain"
	"rektlink/internal/protocol/deeplink"
)

// Service performs the dapp side of the connect handshake.
//
// The wallet answers a connect deep link with its ephemeral public key,
// a nonce, and a sealed payload. The service derives the shared secret
// from that ephemeral key and the dapp's identity secret, opens the
// payload, and writes the whole session record in one replacement.
type Service struct {
	keys     domain.IdentityProvider
	sessions domain.SessionStore

	scheme       string
	redirectBase string
	cluster      string
	appURL       string
}

// New constructs a handshake Service.
func New(keys domain.IdentityProvider, sessions domain.SessionStore, scheme, redirectBase, cluster, appURL string) *Service {
	return &Service{
		keys:         keys,
		sessions:     sessions,
		scheme:       scheme,
		redirectBase: redirectBase,
		cluster:      cluster,
		appURL:       appURL,
	}
}

// ConnectURL builds the outbound connect deep link. It refuses while a
// session is active (disconnect first, so a new handshake can never
// silently replace a live shared secret) and on a degraded identity.
func (s *Service) ConnectURL() (string, error) {
	if s.sessions.Current().Connected {
		return "", domain.ErrSessionActive
	}
	kp := s.keys.KeyPair()
	if kp.Degraded {
		return "", domain.ErrDegradedIdentity
	}
	return deeplink.BuildConnectURL(s.scheme, deeplink.ConnectRequest{
		DappPub:      kp.EncPub,
		RedirectLink: s.redirectBase,
		Cluster:      s.cluster,
		AppURL:       s.appURL,
	}), nil
}

// Establish consumes a connect redirect and populates the session store.
// A decryption failure is a hard authentication failure: the derived
// secret is discarded, never retried.
func (s *Service) Establish(rd *deeplink.Redirect) error {
	if !rd.IsConnect() {
		return fmt.Errorf("%w: not a connect redirect", domain.ErrSecureChannel)
	}
	if s.sessions.Current().Connected {
		return domain.ErrSessionActive
	}
	kp := s.keys.KeyPair()
	if kp.Degraded {
		return domain.ErrDegradedIdentity
	}

	secret := crypto.SharedSecret(*rd.WalletPub, kp.EncPriv)
	plaintext, ok := crypto.Open(&secret, rd.Nonce, rd.Data)
	if !ok {
		return domain.ErrSecureChannel
	}

	var payload deeplink.ConnectPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSecureChannel, err)
	}
	walletPub, err := solana.PublicKeyFromBase58(payload.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: wallet address: %v", domain.ErrSecureChannel, err)
	}

	s.sessions.Set(domain.Session{
		Connected:    true,
		PublicKey:    walletPub,
		SharedSecret: &secret,
		Token:        payload.Session,
	})
	return nil
}

// Disconnect clears the session; the store wipes the secret.
func (s *Service) Disconnect() {
	s.sessions.Clear()
}
