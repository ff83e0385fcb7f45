package app

import (
	"net/http"

	"rektlink/internal/domain"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home         string // durable storage directory, e.g. $HOME/.rektlink
	BackendURL   string // product backend base URL
	WalletScheme string // redirect wallet URL scheme, e.g. "phantom"
	RedirectBase string // our inbound redirect target, e.g. "rekt://wallet"
	Cluster      string // chain cluster, e.g. "mainnet-beta"
	AppURL       string // dapp identity URL shown by the wallet

	// WalletWS selects the bound-session transport when set: the
	// websocket URL of a locally reachable wallet endpoint.
	WalletWS string

	HTTP   *http.Client  // optional; defaults to http.DefaultClient
	Opener domain.Opener // hands deep links to the OS; required for redirect transport
}
