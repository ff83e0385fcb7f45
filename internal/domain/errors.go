package domain

import "errors"

// One sentinel per failure class. Components convert every internal error
// into one of these (possibly wrapped with detail) at their boundary, so
// callers can branch with errors.Is and show one message per class.
var (
	// ErrWalletUnavailable means the external wallet app could not be
	// reached or is not installed. Recoverable: prompt an install.
	ErrWalletUnavailable = errors.New("wallet app is not available")

	// ErrUserRejected means the user declined the request inside the
	// external wallet. Recoverable: re-offer the action.
	ErrUserRejected = errors.New("request was rejected in the wallet")

	// ErrSecureChannel means the wallet's connect payload could not be
	// authenticated. The current shared secret is unusable; the caller
	// must disconnect and re-handshake.
	ErrSecureChannel = errors.New("could not establish secure channel")

	// ErrDecode means a signing response could not be decoded or
	// decrypted under the session's shared secret.
	ErrDecode = errors.New("could not decode wallet response")

	// ErrTimeout means signature polling exhausted its attempts.
	ErrTimeout = errors.New("timed out waiting for the wallet")

	// ErrBackend wraps a non-2xx response or an explicit failure from
	// the backend API.
	ErrBackend = errors.New("backend request failed")

	// ErrSigning, ErrSubmit and ErrConfirmation keep the trading flow's
	// failure steps distinguishable to the caller.
	ErrSigning      = errors.New("transaction signing failed")
	ErrSubmit       = errors.New("transaction submission failed")
	ErrConfirmation = errors.New("transaction was not confirmed")

	// ErrNotConnected means an operation requires a connected wallet.
	ErrNotConnected = errors.New("no wallet connected")

	// ErrSessionActive rejects a connect while a session is live, so a
	// new handshake cannot silently replace an active shared secret.
	ErrSessionActive = errors.New("a wallet session is already active; disconnect first")

	// ErrBusy rejects a call while another flow is in flight.
	ErrBusy = errors.New("another operation is already in progress")

	// ErrDegradedIdentity means the identity keypair fell back to the
	// zero-filled pair after an entropy failure.
	ErrDegradedIdentity = errors.New("identity keys are degraded")

	// ErrInitializationRequired means the remote margin account needs an
	// on-chain initialization before the requested trade can be built.
	ErrInitializationRequired = errors.New("margin account requires initialization")
)
