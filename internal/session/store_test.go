package session_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"rektlink/internal/domain"
	"rektlink/internal/session"
)

func TestStore_SetReplacesWholeRecord(t *testing.T) {
	s := session.NewStore()
	if s.Current().Connected {
		t.Fatal("new store reports connected")
	}

	secret := domain.SharedSecret{1, 2, 3}
	wallet := solana.NewWallet().PublicKey()
	s.Set(domain.Session{
		Connected:    true,
		PublicKey:    wallet,
		SharedSecret: &secret,
		Token:        "tok",
	})

	cur := s.Current()
	if !cur.Connected || cur.PublicKey != wallet || cur.Token != "tok" {
		t.Fatalf("session not stored: %+v", cur)
	}
	if cur.SharedSecret == nil || *cur.SharedSecret != secret {
		t.Fatal("shared secret not stored")
	}

	// A later Set replaces everything, it does not merge.
	s.Set(domain.Session{Connected: true, PublicKey: wallet})
	if s.Current().SharedSecret != nil || s.Current().Token != "" {
		t.Fatal("Set merged instead of replacing")
	}
}

func TestStore_ClearWipesSecret(t *testing.T) {
	s := session.NewStore()
	secret := &domain.SharedSecret{0xAA, 0xBB, 0xCC}
	s.Set(domain.Session{
		Connected:    true,
		PublicKey:    solana.NewWallet().PublicKey(),
		SharedSecret: secret,
		Token:        "tok",
	})

	s.Clear()

	if s.Current().Connected {
		t.Fatal("still connected after Clear")
	}
	if *secret != (domain.SharedSecret{}) {
		t.Fatal("shared secret bytes not wiped")
	}
}
