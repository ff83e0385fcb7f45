// Package deeplink implements the URL-scheme wire format spoken with the
// external wallet app: outbound provider URLs carrying encrypted request
// payloads, and inbound redirect URLs carrying the wallet's responses.
package deeplink
