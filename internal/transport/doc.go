// Package transport delivers signing requests to the external wallet.
//
// Two implementations share the domain.Signer contract: Redirect drives
// a URL-scheme round trip through the OS (with a durable-mailbox
// fallback for responses that arrive while the app was suspended), and
// BoundSession drives a directly bound wallet endpoint over a
// short-lived authorized session.
package transport
