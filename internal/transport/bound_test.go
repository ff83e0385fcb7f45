package transport_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"

	"rektlink/internal/domain"
	"rektlink/internal/session"
	"rektlink/internal/transport"
)

// fakeEndpoint is a scriptable bound wallet. Tokens are issued
// sequentially; tokens marked revoked are rejected with
// ErrAuthTokenInvalid on use.
type fakeEndpoint struct {
	mu             sync.Mutex
	account        solana.PublicKey
	issued         int
	revoked        map[string]bool
	authorizeCalls int
	signCalls      int
}

func newFakeEndpoint() *fakeEndpoint {
	return &fakeEndpoint{
		account: solana.NewWallet().PublicKey(),
		revoked: map[string]bool{},
	}
}

func (f *fakeEndpoint) Authorize(ctx context.Context, req transport.AuthorizeRequest) (transport.AuthorizeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authorizeCalls++
	f.issued++
	return transport.AuthorizeResponse{
		Accounts:  []string{f.account.String()},
		AuthToken: fmt.Sprintf("token-%d", f.issued),
	}, nil
}

func (f *fakeEndpoint) checkToken(token string) error {
	if f.revoked[token] {
		return transport.ErrAuthTokenInvalid
	}
	return nil
}

func (f *fakeEndpoint) SignMessages(ctx context.Context, authToken, address string, messages [][]byte) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signCalls++
	if err := f.checkToken(authToken); err != nil {
		return nil, err
	}
	out := make([][]byte, len(messages))
	for i, m := range messages {
		out[i] = append([]byte("signed:"), m...)
	}
	return out, nil
}

func (f *fakeEndpoint) SignTransactions(ctx context.Context, authToken string, txsBase64 []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signCalls++
	if err := f.checkToken(authToken); err != nil {
		return nil, err
	}
	out := make([]string, len(txsBase64))
	for i, tx := range txsBase64 {
		out[i] = "signed:" + tx
	}
	return out, nil
}

func (f *fakeEndpoint) revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[token] = true
}

func (f *fakeEndpoint) counts() (authorize, sign int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authorizeCalls, f.signCalls
}

func newBoundHarness(t *testing.T) (*transport.BoundSession, *fakeEndpoint, *session.Store) {
	t.Helper()
	ep := newFakeEndpoint()
	sessions := session.NewStore()
	b := transport.NewBoundSession(ep, sessions, "mainnet-beta", transport.AppIdentity{
		Name: "rektlink",
		URI:  "https://rekt.example",
	})
	return b, ep, sessions
}

func TestBoundSession_Connect(t *testing.T) {
	b, ep, sessions := newBoundHarness(t)

	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	sess := sessions.Current()
	if !sess.Connected || sess.PublicKey != ep.account || sess.Token != "token-1" {
		t.Fatalf("session = %+v", sess)
	}
	if sess.SharedSecret != nil {
		t.Fatal("bound session must not carry a shared secret")
	}

	if err := b.Connect(context.Background()); !errors.Is(err, domain.ErrSessionActive) {
		t.Fatalf("second Connect = %v, want ErrSessionActive", err)
	}
}

func TestBoundSession_TokenReused(t *testing.T) {
	b, ep, _ := newBoundHarness(t)
	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	for i := 0; i < 3; i++ {
		sig, err := b.SignMessage(context.Background(), []byte("challenge"))
		if err != nil {
			t.Fatalf("SignMessage: %v", err)
		}
		if string(sig) != "signed:challenge" {
			t.Fatalf("signature = %q", sig)
		}
	}

	authorize, _ := ep.counts()
	if authorize != 1 {
		t.Fatalf("authorize called %d times, want 1", authorize)
	}
}

func TestBoundSession_ReauthorizesOnceOnInvalidToken(t *testing.T) {
	b, ep, _ := newBoundHarness(t)
	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	ep.revoke("token-1")

	signed, err := b.SignTransaction(context.Background(), "dHg=")
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}
	if signed != "signed:dHg=" {
		t.Fatalf("signed = %q", signed)
	}

	authorize, sign := ep.counts()
	if authorize != 2 {
		t.Fatalf("authorize called %d times, want 2", authorize)
	}
	if sign != 2 {
		t.Fatalf("sign called %d times, want 2", sign)
	}
}

func TestBoundSession_NoReauthorizeLoop(t *testing.T) {
	b, ep, _ := newBoundHarness(t)
	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	// Every token the wallet ever issues is dead on arrival.
	for i := 1; i <= 10; i++ {
		ep.revoke(fmt.Sprintf("token-%d", i))
	}

	_, err := b.SignMessage(context.Background(), []byte("m"))
	if !errors.Is(err, transport.ErrAuthTokenInvalid) {
		t.Fatalf("error = %v, want ErrAuthTokenInvalid", err)
	}

	authorize, sign := ep.counts()
	if authorize != 2 || sign != 2 {
		t.Fatalf("authorize=%d sign=%d, want exactly one retry", authorize, sign)
	}
}

func TestBoundSession_RequiresConnection(t *testing.T) {
	b, _, _ := newBoundHarness(t)
	if _, err := b.SignMessage(context.Background(), []byte("m")); !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("SignMessage = %v, want ErrNotConnected", err)
	}
	if _, err := b.SignTransaction(context.Background(), "dHg="); !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("SignTransaction = %v, want ErrNotConnected", err)
	}
}

func TestBoundSession_Disconnect(t *testing.T) {
	b, _, sessions := newBoundHarness(t)
	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	b.Disconnect()

	if sessions.Current().Connected {
		t.Fatal("still connected after Disconnect")
	}
	// A fresh Connect must authorize again rather than reuse state.
	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if sessions.Current().Token != "token-2" {
		t.Fatalf("token = %q, want a fresh grant", sessions.Current().Token)
	}
}
