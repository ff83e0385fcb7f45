package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rektlink/internal/domain"
)

// JSON-RPC methods spoken with the bound wallet endpoint.
const (
	wsMethodAuthorize        = "authorize"
	wsMethodSignMessages     = "sign_messages"
	wsMethodSignTransactions = "sign_transactions"
)

// Wallet-side JSON-RPC error codes.
const (
	wsCodeUserRejected     = 4001
	wsCodeAuthTokenInvalid = 4100
)

const wsWriteTimeout = 10 * time.Second

type wsRequest struct {
	ID      int64  `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type wsResponse struct {
	ID      int64           `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wsError        `json:"error,omitempty"`
}

type wsError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// WSEndpoint implements WalletEndpoint as JSON-RPC over a websocket to a
// locally reachable wallet. Calls are serialized on one connection; the
// connection is dialed lazily and redialed after failures.
type WSEndpoint struct {
	url    string
	dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int64
}

// NewWSEndpoint returns a WSEndpoint for url (e.g. ws://127.0.0.1:8585).
func NewWSEndpoint(url string) *WSEndpoint {
	return &WSEndpoint{url: url, dialer: websocket.DefaultDialer}
}

// Authorize opens an authorized session with the wallet.
func (e *WSEndpoint) Authorize(ctx context.Context, req AuthorizeRequest) (AuthorizeResponse, error) {
	var out AuthorizeResponse
	if err := e.call(ctx, wsMethodAuthorize, req, &out); err != nil {
		return AuthorizeResponse{}, err
	}
	return out, nil
}

// SignMessages has the wallet sign each message with the key for address.
func (e *WSEndpoint) SignMessages(ctx context.Context, authToken, address string, messages [][]byte) ([][]byte, error) {
	params := struct {
		AuthToken string   `json:"auth_token"`
		Address   string   `json:"address"`
		Payloads  [][]byte `json:"payloads"`
	}{AuthToken: authToken, Address: address, Payloads: messages}
	var out struct {
		SignedPayloads [][]byte `json:"signed_payloads"`
	}
	if err := e.call(ctx, wsMethodSignMessages, params, &out); err != nil {
		return nil, err
	}
	return out.SignedPayloads, nil
}

// SignTransactions has the wallet sign each base64 transaction.
func (e *WSEndpoint) SignTransactions(ctx context.Context, authToken string, txsBase64 []string) ([]string, error) {
	params := struct {
		AuthToken string   `json:"auth_token"`
		Payloads  []string `json:"payloads"`
	}{AuthToken: authToken, Payloads: txsBase64}
	var out struct {
		SignedPayloads []string `json:"signed_payloads"`
	}
	if err := e.call(ctx, wsMethodSignTransactions, params, &out); err != nil {
		return nil, err
	}
	return out.SignedPayloads, nil
}

// Close tears down the connection.
func (e *WSEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}

func (e *WSEndpoint) call(ctx context.Context, method string, params, out any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn == nil {
		conn, _, err := e.dialer.DialContext(ctx, e.url, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
		}
		e.conn = conn
	}

	e.nextID++
	req := wsRequest{ID: e.nextID, JSONRPC: "2.0", Method: method, Params: params}

	deadline := time.Now().Add(wsWriteTimeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	_ = e.conn.SetWriteDeadline(deadline)
	if err := e.conn.WriteJSON(req); err != nil {
		e.reset()
		return fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
	}

	if d, ok := ctx.Deadline(); ok {
		_ = e.conn.SetReadDeadline(d)
	} else {
		_ = e.conn.SetReadDeadline(time.Time{})
	}
	var resp wsResponse
	if err := e.conn.ReadJSON(&resp); err != nil {
		e.reset()
		return fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
	}
	if resp.ID != req.ID {
		e.reset()
		return fmt.Errorf("%w: response id mismatch", domain.ErrDecode)
	}
	if resp.Error != nil {
		return mapEndpointError(resp.Error)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrDecode, err)
		}
	}
	return nil
}

// reset drops the connection so the next call redials.
func (e *WSEndpoint) reset() {
	if e.conn != nil {
		_ = e.conn.Close()
		e.conn = nil
	}
}

func mapEndpointError(we *wsError) error {
	switch we.Code {
	case wsCodeUserRejected:
		return domain.ErrUserRejected
	case wsCodeAuthTokenInvalid:
		return ErrAuthTokenInvalid
	default:
		return fmt.Errorf("wallet endpoint error %d: %s", we.Code, we.Message)
	}
}

// Compile-time assertion that WSEndpoint implements WalletEndpoint.
var _ WalletEndpoint = (*WSEndpoint)(nil)
