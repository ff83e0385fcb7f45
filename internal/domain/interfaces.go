package domain

import "context"

// Signer requests signatures from the external wallet. Implementations
// differ by delivery mechanism (URL-scheme redirect vs a bound session)
// but share one contract, so the flows above never branch on platform.
type Signer interface {
	// SignMessage has the wallet sign an arbitrary message and returns
	// the raw signature bytes.
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)

	// SignTransaction has the wallet sign a base64-encoded transaction
	// and returns the signed transaction, base64-encoded.
	SignTransaction(ctx context.Context, txBase64 string) (string, error)
}

// TxSigner co-signs transactions locally with the registered session key
// of the smart-wallet delegation layer.
type TxSigner interface {
	SignTransactionBase64(txBase64 string) (string, error)
}

// IdentityProvider hands out the process-lifetime identity keypair.
// Every call must return the same pair, so shared secrets computed at
// different times remain mutually derivable.
type IdentityProvider interface {
	KeyPair() IdentityKeyPair
}

// KVStore is a durable key-value store with at-most-once delete-on-read
// usable as a handoff slot across process suspensions.
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Opener hands a URL to the operating system, transferring control to
// the external wallet app.
type Opener interface {
	OpenURL(url string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(url string) error

// OpenURL calls f.
func (f OpenerFunc) OpenURL(url string) error { return f(url) }
