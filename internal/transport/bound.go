package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"

	"rektlink/internal/domain"
	"rektlink/internal/util/memzero"
)

// ErrAuthTokenInvalid is returned by a WalletEndpoint when a cached auth
// token is no longer accepted and the caller must reauthorize.
var ErrAuthTokenInvalid = errors.New("wallet auth token is no longer valid")

// AppIdentity is how the dapp introduces itself to the wallet during
// authorization.
type AppIdentity struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// AuthorizeRequest opens an authorized session with the wallet.
type AuthorizeRequest struct {
	Cluster  string      `json:"cluster"`
	Identity AppIdentity `json:"identity"`
}

// AuthorizeResponse carries the granted accounts and the reusable token.
type AuthorizeResponse struct {
	Accounts  []string `json:"accounts"`
	AuthToken string   `json:"auth_token"`
}

// WalletEndpoint is a directly bound wallet session. Authorization and
// signing are separate calls: the same session cannot serve both the
// administrative grant and the cryptographic operation without
// re-presenting credentials, so signing calls carry the cached token.
type WalletEndpoint interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (AuthorizeResponse, error)
	SignMessages(ctx context.Context, authToken, address string, messages [][]byte) ([][]byte, error)
	SignTransactions(ctx context.Context, authToken string, txsBase64 []string) ([]string, error)
}

// BoundSession implements domain.Signer over a WalletEndpoint. The first
// signing call authorizes once and caches the token; later calls reuse
// it, reauthorizing a single time if the wallet invalidates it.
type BoundSession struct {
	endpoint WalletEndpoint
	sessions domain.SessionStore
	cluster  string
	identity AppIdentity

	mu        sync.Mutex
	authToken string
}

// NewBoundSession constructs a BoundSession transport.
func NewBoundSession(endpoint WalletEndpoint, sessions domain.SessionStore, cluster string, identity AppIdentity) *BoundSession {
	return &BoundSession{
		endpoint: endpoint,
		sessions: sessions,
		cluster:  cluster,
		identity: identity,
	}
}

// Connect authorizes with the wallet and records the granted account as
// the wallet session. Bound sessions carry no shared secret; transport
// security is the binding itself.
func (b *BoundSession) Connect(ctx context.Context) error {
	if b.sessions.Current().Connected {
		return domain.ErrSessionActive
	}
	resp, err := b.authorize(ctx)
	if err != nil {
		return err
	}
	if len(resp.Accounts) == 0 {
		return fmt.Errorf("%w: wallet granted no accounts", domain.ErrDecode)
	}
	pub, err := solana.PublicKeyFromBase58(resp.Accounts[0])
	if err != nil {
		return fmt.Errorf("%w: account address: %v", domain.ErrDecode, err)
	}
	b.sessions.Set(domain.Session{
		Connected: true,
		PublicKey: pub,
		Token:     resp.AuthToken,
	})
	return nil
}

// Disconnect wipes the cached token and clears the session.
func (b *BoundSession) Disconnect() {
	b.mu.Lock()
	memzero.ZeroString(&b.authToken)
	b.mu.Unlock()
	b.sessions.Clear()
}

// SignMessage has the wallet sign msg and returns the signature bytes.
func (b *BoundSession) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	sess := b.sessions.Current()
	if !sess.Connected {
		return nil, domain.ErrNotConnected
	}
	var out []byte
	err := b.withToken(ctx, func(token string) error {
		sigs, err := b.endpoint.SignMessages(ctx, token, sess.PublicKey.String(), [][]byte{msg})
		if err != nil {
			return err
		}
		if len(sigs) != 1 {
			return fmt.Errorf("%w: want 1 signature, got %d", domain.ErrDecode, len(sigs))
		}
		out = sigs[0]
		return nil
	})
	return out, err
}

// SignTransaction has the wallet sign a base64 transaction.
func (b *BoundSession) SignTransaction(ctx context.Context, txBase64 string) (string, error) {
	if !b.sessions.Current().Connected {
		return "", domain.ErrNotConnected
	}
	var out string
	err := b.withToken(ctx, func(token string) error {
		signed, err := b.endpoint.SignTransactions(ctx, token, []string{txBase64})
		if err != nil {
			return err
		}
		if len(signed) != 1 {
			return fmt.Errorf("%w: want 1 transaction, got %d", domain.ErrDecode, len(signed))
		}
		out = signed[0]
		return nil
	})
	return out, err
}

// withToken runs fn with a valid auth token, reauthorizing once when the
// wallet reports the cached token invalid.
func (b *BoundSession) withToken(ctx context.Context, fn func(token string) error) error {
	token, err := b.ensureToken(ctx)
	if err != nil {
		return err
	}
	err = fn(token)
	if !errors.Is(err, ErrAuthTokenInvalid) {
		return err
	}

	b.mu.Lock()
	b.authToken = ""
	b.mu.Unlock()

	token, err = b.ensureToken(ctx)
	if err != nil {
		return err
	}
	return fn(token)
}

func (b *BoundSession) ensureToken(ctx context.Context) (string, error) {
	b.mu.Lock()
	token := b.authToken
	b.mu.Unlock()
	if token != "" {
		return token, nil
	}
	resp, err := b.authorize(ctx)
	if err != nil {
		return "", err
	}
	return resp.AuthToken, nil
}

func (b *BoundSession) authorize(ctx context.Context) (AuthorizeResponse, error) {
	resp, err := b.endpoint.Authorize(ctx, AuthorizeRequest{
		Cluster:  b.cluster,
		Identity: b.identity,
	})
	if err != nil {
		return AuthorizeResponse{}, err
	}
	b.mu.Lock()
	b.authToken = resp.AuthToken
	b.mu.Unlock()
	return resp, nil
}

// Compile-time assertion that BoundSession implements domain.Signer.
var _ domain.Signer = (*BoundSession)(nil)
