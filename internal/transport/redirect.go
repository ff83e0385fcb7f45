package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"rektlink/internal/crypto"
	"rektlink/internal/domain"
	"rektlink/internal/mailbox"
	"rektlink/internal/protocol/deeplink"
)

// DefaultRequestTTL bounds how long an inbound redirect can still be
// correlated with the request that triggered it.
const DefaultRequestTTL = 2 * time.Minute

// RedirectConfig wires a Redirect transport.
type RedirectConfig struct {
	WalletScheme string // e.g. "phantom"
	RedirectBase string // inbound redirect target, e.g. "rekt://wallet"
	Opener       domain.Opener
	Keys         domain.IdentityProvider
	Sessions     domain.SessionStore
	Mailbox      *mailbox.Mailbox
	PollAttempts int           // 0 means mailbox.DefaultAttempts
	PollInterval time.Duration // 0 means mailbox.DefaultInterval
	RequestTTL   time.Duration // 0 means DefaultRequestTTL
}

// Redirect requests signatures via encrypted deep links and decodes the
// wallet's redirect responses. A response may arrive on the cold path
// (the redirect lands while the request is still waiting in memory) or
// the warm-resume path (the app was suspended and the response was
// parked in the durable mailbox); both converge on the same pending
// entry, first writer wins.
type Redirect struct {
	scheme       string
	redirectBase string
	opener       domain.Opener
	keys         domain.IdentityProvider
	sessions     domain.SessionStore
	box          *mailbox.Mailbox
	pending      *pendingTable
	pollAttempts int
	pollInterval time.Duration
	requestTTL   time.Duration
}

// NewRedirect constructs a Redirect transport.
func NewRedirect(cfg RedirectConfig) *Redirect {
	ttl := cfg.RequestTTL
	if ttl <= 0 {
		ttl = DefaultRequestTTL
	}
	return &Redirect{
		scheme:       cfg.WalletScheme,
		redirectBase: cfg.RedirectBase,
		opener:       cfg.Opener,
		keys:         cfg.Keys,
		sessions:     cfg.Sessions,
		box:          cfg.Mailbox,
		pending:      newPendingTable(),
		pollAttempts: cfg.PollAttempts,
		pollInterval: cfg.PollInterval,
		requestTTL:   ttl,
	}
}

// SignMessage has the wallet sign msg and returns the signature bytes.
func (r *Redirect) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	sess := r.sessions.Current()
	body := deeplink.SignMessagePayload{
		Message: base58.Encode(msg),
		Session: sess.Token,
	}
	plaintext, err := r.request(ctx, deeplink.ActionSignMessage, body)
	if err != nil {
		return nil, err
	}
	var res deeplink.SignMessageResult
	if err := json.Unmarshal(plaintext, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	sig, err := base58.Decode(res.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: signature encoding", domain.ErrDecode)
	}
	return sig, nil
}

// SignTransaction has the wallet sign a base64 transaction and returns
// the signed transaction, base64-encoded.
func (r *Redirect) SignTransaction(ctx context.Context, txBase64 string) (string, error) {
	sess := r.sessions.Current()
	body := deeplink.SignTransactionPayload{
		Transaction: txBase64,
		Session:     sess.Token,
	}
	plaintext, err := r.request(ctx, deeplink.ActionSignTransaction, body)
	if err != nil {
		return "", err
	}
	var res deeplink.SignTransactionResult
	if err := json.Unmarshal(plaintext, &res); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return res.Transaction, nil
}

// request seals body, opens the provider URL, and waits for the sealed
// response from either delivery path.
func (r *Redirect) request(ctx context.Context, action string, body any) ([]byte, error) {
	sess := r.sessions.Current()
	if !sess.Connected || sess.SharedSecret == nil {
		return nil, domain.ErrNotConnected
	}
	kp := r.keys.KeyPair()
	if kp.Degraded {
		return nil, domain.ErrDegradedIdentity
	}

	plaintext, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	nonce, err := crypto.NewNonce()
	if err != nil {
		return nil, err
	}
	sealed := crypto.Seal(sess.SharedSecret, nonce, plaintext)

	id, ch := r.pending.register(r.requestTTL)
	defer r.pending.cancel(id)

	u := deeplink.BuildSignURL(r.scheme, action, deeplink.SignRequest{
		DappPub:      kp.EncPub,
		Nonce:        nonce,
		Payload:      sealed,
		RedirectLink: r.redirectBase,
		RequestID:    id,
	})
	if err := r.opener.OpenURL(u); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
	}

	// Warm-resume path: drain the mailbox into the same pending entry
	// the cold path completes. The poller dies with the request context,
	// so no timer outlives its owner.
	pollCtx, stopPoll := context.WithCancel(ctx)
	defer stopPoll()
	go func() {
		v, err := r.box.Poll(pollCtx, r.pollAttempts, r.pollInterval)
		if err != nil {
			if errors.Is(err, domain.ErrTimeout) {
				r.pending.complete(id, signResult{err: domain.ErrTimeout})
			}
			return
		}
		res, err := decodeParked(v)
		if err != nil {
			r.pending.complete(id, signResult{err: err})
			return
		}
		r.pending.complete(id, res)
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		pt, ok := crypto.Open(sess.SharedSecret, res.nonce, res.data)
		if !ok {
			return nil, domain.ErrDecode
		}
		return pt, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Deliver routes a decoded signing redirect to its waiting request. A
// redirect whose request id matches no live entry is treated as a warm
// resume (the app was restarted or suspended between open and redirect)
// and its payload is parked in the mailbox for the next poller.
func (r *Redirect) Deliver(rd *deeplink.Redirect) error {
	res := signResult{nonce: rd.Nonce, data: rd.Data}
	if rd.Err != nil {
		res = signResult{err: mapWalletError(rd.Err)}
	}

	if rd.RequestID != "" && r.pending.complete(rd.RequestID, res) {
		return nil
	}
	if res.err != nil {
		// Nothing is waiting and there is no payload to park.
		return res.err
	}
	return r.box.Put(encodeParked(rd.Nonce, rd.Data))
}

func mapWalletError(e *deeplink.RedirectError) error {
	if e.Code == deeplink.UserRejectedCode {
		return domain.ErrUserRejected
	}
	return fmt.Errorf("%w: %v", domain.ErrDecode, e)
}

// parkedResponse is the mailbox encoding of a sealed wallet response.
type parkedResponse struct {
	Nonce string `json:"nonce"`
	Data  string `json:"data"`
}

func encodeParked(nonce domain.Nonce, data []byte) string {
	b, _ := json.Marshal(parkedResponse{
		Nonce: base58.Encode(nonce.Slice()),
		Data:  base58.Encode(data),
	})
	return string(b)
}

func decodeParked(v string) (signResult, error) {
	var p parkedResponse
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		return signResult{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	nonceRaw, err := base58.Decode(p.Nonce)
	if err != nil || len(nonceRaw) != 24 {
		return signResult{}, fmt.Errorf("%w: parked nonce", domain.ErrDecode)
	}
	data, err := base58.Decode(p.Data)
	if err != nil {
		return signResult{}, fmt.Errorf("%w: parked data", domain.ErrDecode)
	}
	var res signResult
	copy(res.nonce[:], nonceRaw)
	res.data = data
	return res, nil
}

// Compile-time assertion that Redirect implements domain.Signer.
var _ domain.Signer = (*Redirect)(nil)
