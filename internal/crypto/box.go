package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/nacl/box"

	"rektlink/internal/domain"
)

// SharedSecret precomputes the box key for peerPub and priv. Deriving it
// twice from the same pair yields identical bytes, so secrets computed at
// different times remain mutually usable.
func SharedSecret(peerPub domain.X25519Public, priv domain.X25519Private) domain.SharedSecret {
	var shared [32]byte
	pub := [32]byte(peerPub)
	prv := [32]byte(priv)
	box.Precompute(&shared, &pub, &prv)
	return domain.SharedSecret(shared)
}

// NewNonce returns 24 random bytes. A nonce must never repeat for a
// given shared secret.
func NewNonce() (domain.Nonce, error) {
	var n domain.Nonce
	_, err := rand.Read(n[:])
	return n, err
}

// Seal encrypts plaintext under the precomputed secret and nonce.
func Seal(secret *domain.SharedSecret, nonce domain.Nonce, plaintext []byte) []byte {
	key := [32]byte(*secret)
	nn := [24]byte(nonce)
	return box.SealAfterPrecomputation(nil, plaintext, &nn, &key)
}

// Open authenticates and decrypts ciphertext. ok is false when the
// payload does not authenticate under the secret and nonce.
func Open(secret *domain.SharedSecret, nonce domain.Nonce, ciphertext []byte) (plaintext []byte, ok bool) {
	key := [32]byte(*secret)
	nn := [24]byte(nonce)
	return box.OpenAfterPrecomputation(nil, ciphertext, &nn, &key)
}
