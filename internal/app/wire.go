package app

import (
	"errors"
	"fmt"
	"net/http"

	"rektlink/internal/backend"
	"rektlink/internal/domain"
	"rektlink/internal/mailbox"
	"rektlink/internal/protocol/deeplink"
	"rektlink/internal/services/auth"
	"rektlink/internal/services/handshake"
	"rektlink/internal/services/keys"
	"rektlink/internal/services/swig"
	"rektlink/internal/services/trading"
	"rektlink/internal/session"
	"rektlink/internal/store"
	"rektlink/internal/transport"
)

// Wire bundles all stores, transports and services.
type Wire struct {
	Keys      *keys.Manager
	Sessions  *session.Store
	KV        domain.KVStore
	Mailbox   *mailbox.Mailbox
	Backend   *backend.Client
	Handshake *handshake.Service
	Signer    domain.Signer
	Redirect  *transport.Redirect // nil when the bound transport is active
	Bound     *transport.BoundSession
	Auth      *auth.Service
	Trading   *trading.Service
}

// NewWire constructs the dependency graph from cfg. The signing
// transport is chosen here, once: everything above it sees only the
// domain.Signer contract.
func NewWire(cfg Config) (*Wire, error) {
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	keyManager := keys.New()
	sessions := session.NewStore()
	kv := store.NewFileStore(cfg.Home)
	box := mailbox.New(kv, store.SlotAuthSignature)
	api := backend.New(cfg.BackendURL, httpClient)

	w := &Wire{
		Keys:     keyManager,
		Sessions: sessions,
		KV:       kv,
		Mailbox:  box,
		Backend:  api,
	}

	if cfg.WalletWS != "" {
		endpoint := transport.NewWSEndpoint(cfg.WalletWS)
		w.Bound = transport.NewBoundSession(endpoint, sessions, cfg.Cluster, transport.AppIdentity{
			Name: "Rekt",
			URI:  cfg.AppURL,
		})
		w.Signer = w.Bound
	} else {
		if cfg.Opener == nil {
			return nil, errors.New("redirect transport requires an opener")
		}
		w.Redirect = transport.NewRedirect(transport.RedirectConfig{
			WalletScheme: cfg.WalletScheme,
			RedirectBase: cfg.RedirectBase,
			Opener:       cfg.Opener,
			Keys:         keyManager,
			Sessions:     sessions,
			Mailbox:      box,
		})
		w.Signer = w.Redirect
	}

	w.Handshake = handshake.New(keyManager, sessions, cfg.WalletScheme, cfg.RedirectBase, cfg.Cluster, cfg.AppURL)
	w.Auth = auth.New(w.Signer, api, sessions, kv)

	delegate := swig.New(keyManager.KeyPair().SessionKey)
	w.Trading = trading.New(api, delegate, w.Signer, sessions)
	return w, nil
}

// HandleRedirect is the single inbound entrypoint for wallet redirects.
// Connect responses go to the handshake; signing responses go to the
// redirect transport's correlation table or the mailbox.
func (w *Wire) HandleRedirect(rawURL string) error {
	rd, err := deeplink.ParseRedirect(rawURL)
	if err != nil {
		return err
	}
	if rd.IsConnect() {
		return w.Handshake.Establish(rd)
	}
	if w.Redirect == nil {
		return fmt.Errorf("signing redirect received but redirect transport is not active")
	}
	return w.Redirect.Deliver(rd)
}
