// Package crypto implements the key agreement and authenticated
// encryption primitives for the dapp-to-wallet secure channel.
package crypto
