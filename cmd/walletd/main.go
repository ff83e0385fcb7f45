// walletd is a development stand-in for the external wallet's bound
// endpoint. It holds one in-memory keypair and answers authorize,
// sign_messages and sign_transactions over a websocket, approving every
// request. Useful for exercising the bound-session transport without a
// device.
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"log"
	"net/http"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type request struct {
	ID      int64           `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type response struct {
	ID      int64  `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wallet struct {
	key   solana.PrivateKey
	token string
}

func main() {
	addr := flag.String("addr", ":8585", "listen address")
	flag.Parse()

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		log.Fatal(err)
	}
	w := &wallet{key: key, token: uuid.NewString()}
	log.Println("walletd account:", key.PublicKey())

	upgrader := websocket.Upgrader{}
	http.HandleFunc("/", func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		defer conn.Close()
		for {
			var req request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if err := conn.WriteJSON(w.handle(req)); err != nil {
				return
			}
		}
	})

	log.Println("walletd listening on", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func (w *wallet) handle(req request) response {
	resp := response{ID: req.ID, JSONRPC: "2.0"}
	switch req.Method {
	case "authorize":
		resp.Result = map[string]any{
			"accounts":   []string{w.key.PublicKey().String()},
			"auth_token": w.token,
		}

	case "sign_messages":
		var p struct {
			AuthToken string   `json:"auth_token"`
			Payloads  [][]byte `json:"payloads"`
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			resp.Error = &rpcError{Code: -32602, Message: err.Error()}
			return resp
		}
		if p.AuthToken != w.token {
			resp.Error = &rpcError{Code: 4100, Message: "auth token invalid"}
			return resp
		}
		signed := make([][]byte, len(p.Payloads))
		for i, msg := range p.Payloads {
			sig, err := w.key.Sign(msg)
			if err != nil {
				resp.Error = &rpcError{Code: -32000, Message: err.Error()}
				return resp
			}
			signed[i] = sig[:]
		}
		resp.Result = map[string]any{"signed_payloads": signed}

	case "sign_transactions":
		var p struct {
			AuthToken string   `json:"auth_token"`
			Payloads  []string `json:"payloads"`
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			resp.Error = &rpcError{Code: -32602, Message: err.Error()}
			return resp
		}
		if p.AuthToken != w.token {
			resp.Error = &rpcError{Code: 4100, Message: "auth token invalid"}
			return resp
		}
		signed := make([]string, len(p.Payloads))
		for i, txB64 := range p.Payloads {
			out, err := w.signTransaction(txB64)
			if err != nil {
				resp.Error = &rpcError{Code: -32000, Message: err.Error()}
				return resp
			}
			signed[i] = out
		}
		resp.Result = map[string]any{"signed_payloads": signed}

	default:
		resp.Error = &rpcError{Code: -32601, Message: "method not found"}
	}
	return resp
}

func (w *wallet) signTransaction(txB64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txB64)
	if err != nil {
		return "", err
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return "", err
	}
	if _, err := tx.PartialSign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	}); err != nil {
		return "", err
	}
	out, err := tx.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out), nil
}
