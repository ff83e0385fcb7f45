// Package trading orchestrates opening and closing leveraged positions:
// request an unsigned transaction from the backend, co-sign it with the
// delegated session key, submit, and confirm. A conditional
// account-initialization detour is signed by the external wallet.
package trading

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rektlink/internal/domain"
)

// ErrNoInitializationPending rejects InitializeAccount when no detour
// has been recorded by a prior open attempt.
var ErrNoInitializationPending = errors.New("no account initialization is pending")

// Service is the trading flow state machine. Exactly one of trading or
// initializing may be in flight; a second call is rejected synchronously
// with domain.ErrBusy and mutates nothing. Terminal results are returned
// to the caller and mirrored into the observable state record; the
// phase always returns to idle.
type Service struct {
	api      domain.TradingAPI
	swig     domain.TxSigner
	wallet   domain.Signer
	sessions domain.SessionStore

	mu    sync.Mutex
	state domain.TradeState
}

// New constructs a trading Service. wallet signs only the
// initialization detour; routine trades are covered by the delegated
// session key alone.
func New(api domain.TradingAPI, swig domain.TxSigner, wallet domain.Signer, sessions domain.SessionStore) *Service {
	return &Service{
		api:      api,
		swig:     swig,
		wallet:   wallet,
		sessions: sessions,
		state:    domain.TradeState{Phase: domain.PhaseIdle},
	}
}

// State returns a snapshot of the flow record.
func (s *Service) State() domain.TradeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OpenPosition drives one open attempt to a terminal outcome.
//
// When the backend reports the margin account uninitialized, the unsigned
// initialization transaction is recorded, ErrInitializationRequired is
// returned, and the flow goes back to idle. The original intent is not
// retried automatically; the caller invokes InitializeAccount and then
// re-confirms the trade.
func (s *Service) OpenPosition(ctx context.Context, userID string, intent domain.TradeIntent) (domain.TradeResult, error) {
	if err := s.begin(domain.PhaseTrading); err != nil {
		return domain.TradeResult{}, err
	}

	result, err := s.open(ctx, userID, intent)
	s.finish(result, err)
	return result, err
}

func (s *Service) open(ctx context.Context, userID string, intent domain.TradeIntent) (domain.TradeResult, error) {
	sess := s.sessions.Current()
	if !sess.Connected {
		return domain.TradeResult{}, domain.ErrNotConnected
	}

	resp, err := s.api.OpenPosition(ctx, domain.OpenPositionRequest{
		UserID:    userID,
		Asset:     intent.Asset,
		Direction: intent.Direction,
		Amount:    intent.Amount,
		Leverage:  intent.Leverage,
	})
	if err != nil {
		return domain.TradeResult{}, err
	}

	if resp.NeedsInitialization {
		s.mu.Lock()
		s.state.RequiresInitialization = true
		s.state.InitializationTx = resp.InitializationTx
		s.mu.Unlock()
		return domain.TradeResult{}, domain.ErrInitializationRequired
	}

	if resp.TransactionData == "" {
		// Backend recorded the position without an on-chain action.
		return domain.TradeResult{PositionID: resp.PositionID}, nil
	}

	return s.signSubmitConfirm(ctx, sess, resp.TransactionData, resp.PositionID, domain.TradeResult{
		PositionID: resp.PositionID,
	})
}

// ClosePosition drives one close attempt to a terminal outcome.
func (s *Service) ClosePosition(ctx context.Context, userID, positionID string) (domain.TradeResult, error) {
	if err := s.begin(domain.PhaseTrading); err != nil {
		return domain.TradeResult{}, err
	}

	result, err := s.close(ctx, userID, positionID)
	s.finish(result, err)
	return result, err
}

func (s *Service) close(ctx context.Context, userID, positionID string) (domain.TradeResult, error) {
	sess := s.sessions.Current()
	if !sess.Connected {
		return domain.TradeResult{}, domain.ErrNotConnected
	}

	resp, err := s.api.ClosePosition(ctx, domain.ClosePositionRequest{
		UserID:     userID,
		PositionID: positionID,
	})
	if err != nil {
		return domain.TradeResult{}, err
	}

	if resp.TransactionData == "" {
		// Position settled backend-side; nothing to sign.
		return domain.TradeResult{
			PositionID: positionID,
			ExitPrice:  resp.ExitPrice,
			PnL:        resp.PnL,
		}, nil
	}

	return s.signSubmitConfirm(ctx, sess, resp.TransactionData, positionID, domain.TradeResult{
		PositionID: positionID,
		ExitPrice:  resp.ExitPrice,
		PnL:        resp.PnL,
	})
}

// InitializeAccount signs and submits the recorded initialization
// transaction via the external wallet. Success clears the detour flag
// and leaves LastResult untouched; failure keeps the flag so the caller
// may retry.
func (s *Service) InitializeAccount(ctx context.Context) error {
	if err := s.begin(domain.PhaseInitializing); err != nil {
		return err
	}

	err := s.initialize(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Phase = domain.PhaseIdle
	if err != nil {
		s.state.LastError = err.Error()
		return err
	}
	s.state.LastError = ""
	s.state.RequiresInitialization = false
	s.state.InitializationTx = ""
	return nil
}

func (s *Service) initialize(ctx context.Context) error {
	sess := s.sessions.Current()
	if !sess.Connected {
		return domain.ErrNotConnected
	}

	s.mu.Lock()
	pending := s.state.RequiresInitialization
	initTx := s.state.InitializationTx
	s.mu.Unlock()
	if !pending {
		return ErrNoInitializationPending
	}

	// Creating the managed account registers the session key, so this
	// one transaction needs the wallet's own signature.
	signed, err := s.wallet.SignTransaction(ctx, initTx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}

	sub, err := s.api.SubmitSigned(ctx, domain.SubmitRequest{
		SignedTransaction: signed,
		WalletAddress:     sess.PublicKey.String(),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSubmit, err)
	}
	if !confirmed(sub.Confirmation) {
		return confirmationError(sub.Confirmation)
	}
	return nil
}

func (s *Service) signSubmitConfirm(ctx context.Context, sess domain.Session, txBase64, positionID string, result domain.TradeResult) (domain.TradeResult, error) {
	signed, err := s.swig.SignTransactionBase64(txBase64)
	if err != nil {
		return domain.TradeResult{}, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}

	sub, err := s.api.SubmitSigned(ctx, domain.SubmitRequest{
		SignedTransaction: signed,
		WalletAddress:     sess.PublicKey.String(),
		PositionID:        positionID,
	})
	if err != nil {
		return domain.TradeResult{}, fmt.Errorf("%w: %v", domain.ErrSubmit, err)
	}
	if !confirmed(sub.Confirmation) {
		return domain.TradeResult{}, confirmationError(sub.Confirmation)
	}

	result.TransactionSignature = sub.Signature
	result.ConfirmationStatus = sub.Confirmation.Status
	return result, nil
}

// begin claims the flow for phase; any non-idle phase rejects the call
// without mutating state.
func (s *Service) begin(phase domain.TradePhase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != domain.PhaseIdle {
		return domain.ErrBusy
	}
	s.state.Phase = phase
	return nil
}

// finish reports a trade outcome and returns the flow to idle.
// RequiresInitialization is left as recorded: the detour is surfaced
// through the error, not a stuck phase.
func (s *Service) finish(result domain.TradeResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Phase = domain.PhaseIdle
	if err != nil {
		s.state.LastError = err.Error()
		return
	}
	s.state.LastError = ""
	s.state.LastResult = &result
}

func confirmed(c domain.Confirmation) bool {
	switch c.Status {
	case "confirmed", "finalized", "processed":
		return c.Err == ""
	default:
		return false
	}
}

func confirmationError(c domain.Confirmation) error {
	if c.Err != "" {
		return fmt.Errorf("%w: %s", domain.ErrConfirmation, c.Err)
	}
	return fmt.Errorf("%w: status %q", domain.ErrConfirmation, c.Status)
}
