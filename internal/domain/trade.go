package domain

import "context"

// Direction is the side of a perpetual position.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// TradeIntent describes the position a caller wants to open. It is
// immutable once handed to the trading flow.
type TradeIntent struct {
	Asset     string
	Direction Direction
	Amount    float64
	Leverage  int
}

// TradeResult is the terminal outcome of a completed open or close.
type TradeResult struct {
	PositionID           string
	TransactionSignature string
	ConfirmationStatus   string
	ExitPrice            float64
	PnL                  float64
}

// TradePhase is the trading flow's single in-flight phase.
type TradePhase string

const (
	PhaseIdle         TradePhase = "idle"
	PhaseTrading      TradePhase = "trading"
	PhaseInitializing TradePhase = "initializing"
)

// TradeState is the trading flow's observable record. LastError holds the
// most recent failure; RequiresInitialization and InitializationTx stay
// set until an initialization succeeds, so the caller may retry it.
type TradeState struct {
	Phase                  TradePhase
	LastError              string
	RequiresInitialization bool
	InitializationTx       string
	LastResult             *TradeResult
}

// APIStatus is the backend's response envelope. A nil Success means the
// endpoint does not use the envelope; an explicit false is a failure even
// on a 2xx status.
type APIStatus struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the envelope marks the response as failed.
func (s APIStatus) Failed() bool { return s.Success != nil && !*s.Success }

// OpenPositionRequest asks the backend to build an unsigned open
// transaction for a leveraged position.
type OpenPositionRequest struct {
	UserID    string    `json:"userId"`
	Asset     string    `json:"asset"`
	Direction Direction `json:"direction"`
	Amount    float64   `json:"amount"`
	Leverage  int       `json:"leverage"`
}

// OpenPositionResponse carries either an unsigned transaction, an
// immediately recorded position, or an initialization detour.
type OpenPositionResponse struct {
	APIStatus
	NeedsInitialization bool   `json:"needsInitialization,omitempty"`
	InitializationTx    string `json:"initializationInstructions,omitempty"`
	TransactionData     string `json:"transactionData,omitempty"`
	PositionID          string `json:"positionId,omitempty"`
}

// ClosePositionRequest asks the backend to close an open position.
type ClosePositionRequest struct {
	UserID     string `json:"userId"`
	PositionID string `json:"positionId"`
}

// ClosePositionResponse carries either an unsigned close transaction or
// the recorded exit when no on-chain action was needed.
type ClosePositionResponse struct {
	APIStatus
	TransactionData string  `json:"transactionData,omitempty"`
	ExitPrice       float64 `json:"exitPrice,omitempty"`
	PnL             float64 `json:"pnl,omitempty"`
}

// SubmitRequest broadcasts a signed transaction through the backend.
type SubmitRequest struct {
	SignedTransaction string `json:"signedTransactionBase64"`
	WalletAddress     string `json:"walletAddress"`
	PositionID        string `json:"positionId,omitempty"`
}

// SubmitResponse reports the broadcast signature and its confirmation.
type SubmitResponse struct {
	APIStatus
	Signature    string       `json:"signature"`
	Confirmation Confirmation `json:"confirmation"`
}

// Confirmation is the cluster's view of a submitted transaction.
type Confirmation struct {
	Status string `json:"confirmationStatus"`
	Err    string `json:"err,omitempty"`
}

// TradingAPI is the backend surface the trading flow consumes. Unsigned
// transaction payloads are opaque base64 blobs to this client.
type TradingAPI interface {
	OpenPosition(ctx context.Context, req OpenPositionRequest) (OpenPositionResponse, error)
	ClosePosition(ctx context.Context, req ClosePositionRequest) (ClosePositionResponse, error)
	SubmitSigned(ctx context.Context, req SubmitRequest) (SubmitResponse, error)
}
