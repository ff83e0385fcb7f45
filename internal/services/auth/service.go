// Package auth turns one wallet-signed challenge into a backend session.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"rektlink/internal/domain"
	"rektlink/internal/store"
)

// Chain is the chain identifier presented to the token exchange.
const Chain = "solana"

// challengeFormat is the message the wallet signs to prove ownership.
const challengeFormat = "Sign in to Rekt: %s"

type signedChallenge struct {
	message   string
	signature []byte
}

// Service drives the authentication flow:
//
//	verifying -> signing_message -> verifying -> completed
//	verifying -> signup_required
//
// Any failure returns the phase to idle so the attempt can be retried.
// Re-entrant calls are rejected by the phase itself rather than by
// separate guard flags; a transition from a non-idle phase cannot start.
type Service struct {
	signer   domain.Signer
	api      domain.AuthAPI
	sessions domain.SessionStore
	kv       domain.KVStore

	mu     sync.Mutex
	phase  domain.AuthPhase
	signed *signedChallenge
	result *domain.AuthResult
}

// New constructs an auth Service.
func New(signer domain.Signer, api domain.AuthAPI, sessions domain.SessionStore, kv domain.KVStore) *Service {
	return &Service{
		signer:   signer,
		api:      api,
		sessions: sessions,
		kv:       kv,
		phase:    domain.AuthIdle,
	}
}

// Phase returns the current flow phase.
func (s *Service) Phase() domain.AuthPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Authenticate runs the flow to a terminal phase. A completed attempt is
// cached and returned as-is until Reset. If a challenge was already
// signed for this connection (for example a prior attempt failed at the
// token exchange), the signature is reused and the wallet is not asked
// again.
func (s *Service) Authenticate(ctx context.Context) (domain.AuthResult, error) {
	sess := s.sessions.Current()
	if !sess.Connected {
		return domain.AuthResult{}, domain.ErrNotConnected
	}

	s.mu.Lock()
	switch s.phase {
	case domain.AuthSigningMessage, domain.AuthVerifying:
		s.mu.Unlock()
		return domain.AuthResult{}, domain.ErrBusy
	case domain.AuthCompleted:
		res := *s.result
		s.mu.Unlock()
		return res, nil
	}
	s.phase = domain.AuthVerifying
	signed := s.signed
	s.mu.Unlock()

	res, err := s.run(ctx, signed)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = domain.AuthIdle
		return domain.AuthResult{}, err
	}
	s.phase = res.Phase
	if res.Phase == domain.AuthCompleted {
		s.result = &res
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, signed *signedChallenge) (domain.AuthResult, error) {
	if signed == nil {
		s.setPhase(domain.AuthSigningMessage)
		message := fmt.Sprintf(challengeFormat, uuid.NewString())
		sig, err := s.signer.SignMessage(ctx, []byte(message))
		if err != nil {
			return domain.AuthResult{}, err
		}
		signed = &signedChallenge{message: message, signature: sig}

		s.mu.Lock()
		s.signed = signed
		s.mu.Unlock()
		s.setPhase(domain.AuthVerifying)
	}

	exists, err := s.api.CheckAccount(ctx, s.sessions.Current().PublicKey)
	if err != nil {
		return domain.AuthResult{}, err
	}
	if !exists {
		return domain.AuthResult{Phase: domain.AuthSignupRequired}, nil
	}

	tok, err := s.api.ExchangeToken(ctx, domain.TokenRequest{
		Chain:     Chain,
		Message:   signed.message,
		Signature: base58.Encode(signed.signature),
	})
	if err != nil {
		return domain.AuthResult{}, err
	}
	return domain.AuthResult{
		Phase:        domain.AuthCompleted,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}, nil
}

func (s *Service) setPhase(p domain.AuthPhase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Reset clears the cached challenge and result for an explicit retry or
// teardown of the owning surface.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = domain.AuthIdle
	s.signed = nil
	s.result = nil
}

// SetBiometric persists the biometric-unlock preference.
func (s *Service) SetBiometric(enabled bool) error {
	return s.kv.Set(store.SlotBiometricEnabled, strconv.FormatBool(enabled))
}

// Biometric reads the biometric-unlock preference; absent means off.
func (s *Service) Biometric() (bool, error) {
	v, ok, err := s.kv.Get(store.SlotBiometricEnabled)
	if err != nil || !ok {
		return false, err
	}
	return strconv.ParseBool(v)
}
