package domain

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// AuthPhase is the authentication flow's current state.
type AuthPhase string

const (
	AuthIdle           AuthPhase = "idle"
	AuthSigningMessage AuthPhase = "signing_message"
	AuthVerifying      AuthPhase = "verifying"
	AuthSignupRequired AuthPhase = "signup_required"
	AuthCompleted      AuthPhase = "completed"
)

// AuthResult is the outcome of a finished authentication attempt. When
// Phase is AuthSignupRequired the tokens are empty and control passes to
// account creation.
type AuthResult struct {
	Phase        AuthPhase
	AccessToken  string
	RefreshToken string
}

// TokenRequest is the identity-provider exchange: one signed challenge
// message for a backend session.
type TokenRequest struct {
	Chain     string `json:"chain"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// TokenResponse carries the backend session tokens.
type TokenResponse struct {
	APIStatus
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthAPI is the backend surface the authentication flow consumes.
type AuthAPI interface {
	CheckAccount(ctx context.Context, publicKey solana.PublicKey) (bool, error)
	ExchangeToken(ctx context.Context, req TokenRequest) (TokenResponse, error)
}
