// Package backend is the HTTP client for the trading and auth APIs.
// Unsigned transactions in responses are opaque base64 blobs here; the
// backend owns their construction.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gagliardetto/solana-go"

	"rektlink/internal/domain"
)

// Client talks JSON over HTTP to the product backend.
type Client struct {
	Base string
	HTTP *http.Client
}

// New returns a Client for the given base URL.
func New(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Base: base, HTTP: httpClient}
}

// OpenPosition asks the backend to build an unsigned open transaction.
func (c *Client) OpenPosition(ctx context.Context, req domain.OpenPositionRequest) (domain.OpenPositionResponse, error) {
	var out domain.OpenPositionResponse
	if err := c.post(ctx, "/api/trading/open-position", req, &out); err != nil {
		return domain.OpenPositionResponse{}, err
	}
	if out.Failed() {
		return domain.OpenPositionResponse{}, apiError(out.Error)
	}
	return out, nil
}

// ClosePosition asks the backend to close an open position.
func (c *Client) ClosePosition(ctx context.Context, req domain.ClosePositionRequest) (domain.ClosePositionResponse, error) {
	var out domain.ClosePositionResponse
	if err := c.post(ctx, "/api/trading/close-position", req, &out); err != nil {
		return domain.ClosePositionResponse{}, err
	}
	if out.Failed() {
		return domain.ClosePositionResponse{}, apiError(out.Error)
	}
	return out, nil
}

// SubmitSigned broadcasts a signed transaction and reports confirmation.
func (c *Client) SubmitSigned(ctx context.Context, req domain.SubmitRequest) (domain.SubmitResponse, error) {
	var out domain.SubmitResponse
	if err := c.post(ctx, "/api/trading/submit-signed-transaction", req, &out); err != nil {
		return domain.SubmitResponse{}, err
	}
	if out.Failed() {
		return domain.SubmitResponse{}, apiError(out.Error)
	}
	return out, nil
}

// CheckAccount reports whether an account exists for publicKey.
func (c *Client) CheckAccount(ctx context.Context, publicKey solana.PublicKey) (bool, error) {
	in := struct {
		PublicKey string `json:"publicKey"`
	}{PublicKey: publicKey.String()}
	var out struct {
		domain.APIStatus
		Exists bool `json:"exists"`
	}
	if err := c.post(ctx, "/api/auth/check-account-exists", in, &out); err != nil {
		return false, err
	}
	if out.Failed() {
		return false, apiError(out.Error)
	}
	return out.Exists, nil
}

// ExchangeToken trades a signed challenge for backend session tokens.
func (c *Client) ExchangeToken(ctx context.Context, req domain.TokenRequest) (domain.TokenResponse, error) {
	var out domain.TokenResponse
	if err := c.post(ctx, "/api/auth/token", req, &out); err != nil {
		return domain.TokenResponse{}, err
	}
	if out.Failed() {
		return domain.TokenResponse{}, apiError(out.Error)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: post %s: %s", domain.ErrBackend, path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func apiError(msg string) error {
	if msg == "" {
		msg = "request rejected"
	}
	return fmt.Errorf("%w: %s", domain.ErrBackend, msg)
}

// Compile-time assertions that Client implements the API contracts.
var (
	_ domain.TradingAPI = (*Client)(nil)
	_ domain.AuthAPI    = (*Client)(nil)
)
