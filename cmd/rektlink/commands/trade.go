package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rektlink/internal/domain"
)

// openCmd opens a leveraged position.
func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <asset> <long|short> <amount> <leverage>",
		Short: "Open a leveraged position",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			leverage, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("leverage: %w", err)
			}

			res, err := wire.Trading.OpenPosition(cmd.Context(), userID, domain.TradeIntent{
				Asset:     args[0],
				Direction: domain.Direction(args[1]),
				Amount:    amount,
				Leverage:  leverage,
			})
			if errors.Is(err, domain.ErrInitializationRequired) {
				fmt.Println("margin account needs initialization; run: rektlink init-account")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("opened position %s (tx %s, %s)\n",
				res.PositionID, res.TransactionSignature, res.ConfirmationStatus)
			return nil
		},
	}
}

// closeCmd closes an open position.
func closeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <positionId>",
		Short: "Close an open position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := wire.Trading.ClosePosition(cmd.Context(), userID, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("closed position %s: exit=%.4f pnl=%.4f\n",
				res.PositionID, res.ExitPrice, res.PnL)
			return nil
		},
	}
}

// initAccountCmd runs the pending margin-account initialization; the
// external wallet signs this one.
func initAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-account",
		Short: "Initialize the on-chain margin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Trading.InitializeAccount(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("margin account initialized; re-submit your trade")
			return nil
		},
	}
}
