package handshake_test

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/gagliardetto/solana-go"

	"rektlink/internal/crypto"
	"rektlink/internal/domain"
	"rektlink/internal/protocol/deeplink"
	"rektlink/internal/services/handshake"
	"rektlink/internal/services/keys"
	"rektlink/internal/session"
)

func newService(t *testing.T) (*handshake.Service, *keys.Manager, *session.Store) {
	t.Helper()
	km := keys.New()
	sessions := session.NewStore()
	svc := handshake.New(km, sessions, "phantom", "rektlink://onConnect", "mainnet-beta", "https://rekt.example")
	return svc, km, sessions
}

// walletConnectRedirect plays the wallet's half of the handshake: it
// derives the shared secret from the dapp's public key and seals the
// connect payload under it.
func walletConnectRedirect(t *testing.T, dappPub domain.X25519Public, payload deeplink.ConnectPayload) (*deeplink.Redirect, domain.SharedSecret) {
	t.Helper()
	walletPriv, walletPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	secret := crypto.SharedSecret(dappPub, walletPriv)

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	nonce, err := crypto.NewNonce()
	if err != nil {
		t.Fatalf("NewNonce: %v", err)
	}
	return &deeplink.Redirect{
		WalletPub: &walletPub,
		Nonce:     nonce,
		Data:      crypto.Seal(&secret, nonce, body),
	}, secret
}

func TestConnectURL(t *testing.T) {
	svc, _, _ := newService(t)

	raw, err := svc.ConnectURL()
	if err != nil {
		t.Fatalf("ConnectURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Scheme != "phantom" || u.Path != "/connect" {
		t.Fatalf("URL shape: %s", raw)
	}
	if u.Query().Get("dapp_encryption_public_key") == "" {
		t.Fatal("dapp key missing from connect URL")
	}
}

func TestEstablish(t *testing.T) {
	svc, km, sessions := newService(t)
	wallet := solana.NewWallet().PublicKey()

	rd, secret := walletConnectRedirect(t, km.KeyPair().EncPub, deeplink.ConnectPayload{
		PublicKey: wallet.String(),
		Session:   "sess-token",
	})
	if err := svc.Establish(rd); err != nil {
		t.Fatalf("Establish: %v", err)
	}

	sess := sessions.Current()
	if !sess.Connected || sess.PublicKey != wallet || sess.Token != "sess-token" {
		t.Fatalf("session = %+v", sess)
	}
	if sess.SharedSecret == nil || *sess.SharedSecret != secret {
		t.Fatal("dapp derived a different shared secret than the wallet")
	}
}

func TestEstablish_TamperedPayload(t *testing.T) {
	svc, km, sessions := newService(t)

	rd, _ := walletConnectRedirect(t, km.KeyPair().EncPub, deeplink.ConnectPayload{
		PublicKey: solana.NewWallet().PublicKey().String(),
	})
	rd.Data[0] ^= 0x01

	if err := svc.Establish(rd); !errors.Is(err, domain.ErrSecureChannel) {
		t.Fatalf("Establish = %v, want ErrSecureChannel", err)
	}
	if sessions.Current().Connected {
		t.Fatal("session populated after failed handshake")
	}
}

func TestEstablish_WrongRecipient(t *testing.T) {
	svc, _, _ := newService(t)

	// Sealed for some other dapp identity; opening with ours must fail.
	_, otherPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	rd, _ := walletConnectRedirect(t, otherPub, deeplink.ConnectPayload{
		PublicKey: solana.NewWallet().PublicKey().String(),
	})

	if err := svc.Establish(rd); !errors.Is(err, domain.ErrSecureChannel) {
		t.Fatalf("Establish = %v, want ErrSecureChannel", err)
	}
}

func TestEstablish_RejectsWhileConnected(t *testing.T) {
	svc, km, _ := newService(t)

	rd, _ := walletConnectRedirect(t, km.KeyPair().EncPub, deeplink.ConnectPayload{
		PublicKey: solana.NewWallet().PublicKey().String(),
	})
	if err := svc.Establish(rd); err != nil {
		t.Fatalf("first Establish: %v", err)
	}

	rd2, _ := walletConnectRedirect(t, km.KeyPair().EncPub, deeplink.ConnectPayload{
		PublicKey: solana.NewWallet().PublicKey().String(),
	})
	if err := svc.Establish(rd2); !errors.Is(err, domain.ErrSessionActive) {
		t.Fatalf("second Establish = %v, want ErrSessionActive", err)
	}
	if _, err := svc.ConnectURL(); !errors.Is(err, domain.ErrSessionActive) {
		t.Fatalf("ConnectURL while connected = %v, want ErrSessionActive", err)
	}
}

func TestEstablish_NotAConnectRedirect(t *testing.T) {
	svc, _, _ := newService(t)
	if err := svc.Establish(&deeplink.Redirect{Data: []byte("x")}); !errors.Is(err, domain.ErrSecureChannel) {
		t.Fatalf("Establish = %v, want ErrSecureChannel", err)
	}
}

func TestDisconnect(t *testing.T) {
	svc, km, sessions := newService(t)

	rd, _ := walletConnectRedirect(t, km.KeyPair().EncPub, deeplink.ConnectPayload{
		PublicKey: solana.NewWallet().PublicKey().String(),
	})
	if err := svc.Establish(rd); err != nil {
		t.Fatalf("Establish: %v", err)
	}

	svc.Disconnect()
	if sessions.Current().Connected {
		t.Fatal("still connected after Disconnect")
	}
	// A new handshake is allowed again.
	if _, err := svc.ConnectURL(); err != nil {
		t.Fatalf("ConnectURL after disconnect: %v", err)
	}
}
