package deeplink

import (
	"fmt"
	"net/url"

	"github.com/mr-tron/base58"

	"rektlink/internal/domain"
)

// Version is the wallet provider protocol version segment.
const Version = "v1"

// Wallet provider actions.
const (
	ActionConnect         = "connect"
	ActionSignMessage     = "signMessage"
	ActionSignTransaction = "signTransaction"
	ActionDisconnect      = "disconnect"
)

// Inbound redirect query parameters.
const (
	paramWalletPub = "phantom_encryption_public_key"
	paramNonce     = "nonce"
	paramData      = "data"
	paramRequestID = "request_id"
	paramErrCode   = "errorCode"
	paramErrMsg    = "errorMessage"
)

// ConnectRequest is the outbound connect deep link.
type ConnectRequest struct {
	DappPub      domain.X25519Public
	RedirectLink string
	Cluster      string
	AppURL       string
}

// SignRequest is an outbound signing deep link. Payload is the sealed
// ciphertext of the action's JSON body under the session's shared secret.
type SignRequest struct {
	DappPub      domain.X25519Public
	Nonce        domain.Nonce
	Payload      []byte
	RedirectLink string
	RequestID    string
}

// BuildConnectURL assembles walletScheme://v1/connect with the dapp's
// encryption public key and the redirect target.
func BuildConnectURL(scheme string, req ConnectRequest) string {
	q := url.Values{}
	q.Set("dapp_encryption_public_key", base58.Encode(req.DappPub.Slice()))
	q.Set("redirect_link", req.RedirectLink)
	if req.Cluster != "" {
		q.Set("cluster", req.Cluster)
	}
	if req.AppURL != "" {
		q.Set("app_url", req.AppURL)
	}
	return fmt.Sprintf("%s://%s/%s?%s", scheme, Version, ActionConnect, q.Encode())
}

// BuildSignURL assembles walletScheme://v1/<action> for a signing
// request. The request id rides on the redirect link so the inbound
// redirect can be correlated with the request that triggered it.
func BuildSignURL(scheme, action string, req SignRequest) string {
	redirect := req.RedirectLink
	if req.RequestID != "" {
		sep := "?"
		if u, err := url.Parse(redirect); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		redirect += sep + paramRequestID + "=" + url.QueryEscape(req.RequestID)
	}
	q := url.Values{}
	q.Set("dapp_encryption_public_key", base58.Encode(req.DappPub.Slice()))
	q.Set("nonce", base58.Encode(req.Nonce.Slice()))
	q.Set("payload", base58.Encode(req.Payload))
	q.Set("redirect_link", redirect)
	return fmt.Sprintf("%s://%s/%s?%s", scheme, Version, action, q.Encode())
}

// RedirectError is the wallet's explicit failure response.
type RedirectError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *RedirectError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("wallet error %s: %s", e.Code, e.Message)
	}
	return "wallet error " + e.Code
}

// UserRejectedCode is the provider code for a user declining a request.
const UserRejectedCode = "4001"

// Redirect is a decoded inbound redirect. WalletPub is set only on a
// connect response; Err is set when the wallet reported a failure
// instead of a payload.
type Redirect struct {
	RequestID string
	WalletPub *domain.X25519Public
	Nonce     domain.Nonce
	Data      []byte
	Err       *RedirectError
}

// IsConnect reports whether the redirect answers a connect request.
func (r *Redirect) IsConnect() bool { return r.WalletPub != nil }

// ParseRedirect decodes an inbound redirect URL.
func ParseRedirect(rawURL string) (*Redirect, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redirect: %w", err)
	}
	q := u.Query()

	rd := &Redirect{RequestID: q.Get(paramRequestID)}

	if code := q.Get(paramErrCode); code != "" {
		rd.Err = &RedirectError{Code: code, Message: q.Get(paramErrMsg)}
		return rd, nil
	}

	nonceRaw, err := base58.Decode(q.Get(paramNonce))
	if err != nil || len(nonceRaw) != len(rd.Nonce) {
		return nil, fmt.Errorf("redirect nonce: %w", badField(err))
	}
	copy(rd.Nonce[:], nonceRaw)

	rd.Data, err = base58.Decode(q.Get(paramData))
	if err != nil || len(rd.Data) == 0 {
		return nil, fmt.Errorf("redirect data: %w", badField(err))
	}

	if pubRaw := q.Get(paramWalletPub); pubRaw != "" {
		b, err := base58.Decode(pubRaw)
		if err != nil || len(b) != 32 {
			return nil, fmt.Errorf("redirect wallet key: %w", badField(err))
		}
		pub := domain.MustX25519Public(b)
		rd.WalletPub = &pub
	}
	return rd, nil
}

func badField(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("missing or malformed field")
}
