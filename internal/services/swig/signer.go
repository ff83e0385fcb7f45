// Package swig co-signs backend-built transactions with the session key
// registered on the smart-wallet delegation layer. The on-chain program
// lets that registered key act for the managed account, so routine
// trades never round-trip through the external wallet.
package swig

import (
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"rektlink/internal/domain"
)

// Signer partial-signs transactions with the delegated session key.
type Signer struct {
	key solana.PrivateKey
}

// New returns a Signer for the given session key.
func New(key solana.PrivateKey) *Signer { return &Signer{key: key} }

// PublicKey returns the session key's address.
func (s *Signer) PublicKey() solana.PublicKey { return s.key.PublicKey() }

// SignTransactionBase64 decodes a base64 unsigned transaction, adds the
// session key's signature where the message lists it as a signer, and
// re-encodes. Signatures already present are preserved.
func (s *Signer) SignTransactionBase64(txBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return "", fmt.Errorf("deserialize transaction: %w", err)
	}

	if _, err := tx.PartialSign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("sign with session key: %w", err)
	}

	out, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Compile-time assertion that Signer implements domain.TxSigner.
var _ domain.TxSigner = (*Signer)(nil)
