package keys_test

import (
	"testing"

	"rektlink/internal/crypto"
	"rektlink/internal/domain"
	"rektlink/internal/services/keys"
)

func TestKeyPair_StableAcrossCalls(t *testing.T) {
	m := keys.New()

	first := m.KeyPair()
	second := m.KeyPair()

	if first.Degraded {
		t.Fatal("fresh identity reported degraded")
	}
	if first.EncPub != second.EncPub || first.EncPriv != second.EncPriv {
		t.Fatal("identity changed between calls")
	}
	if !first.SessionKey.PublicKey().Equals(second.SessionKey.PublicKey()) {
		t.Fatal("session key changed between calls")
	}
}

func TestKeyPair_IndependentManagers(t *testing.T) {
	a := keys.New().KeyPair()
	b := keys.New().KeyPair()
	if a.EncPub == b.EncPub {
		t.Fatal("two managers produced the same identity")
	}
}

func TestKeyPair_UsableForAgreement(t *testing.T) {
	kp := keys.New().KeyPair()

	walletPriv, walletPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	var dappSide, walletSide domain.SharedSecret
	dappSide = crypto.SharedSecret(walletPub, kp.EncPriv)
	walletSide = crypto.SharedSecret(kp.EncPub, walletPriv)
	if dappSide != walletSide {
		t.Fatal("identity pair does not agree with a counterparty")
	}
}
