package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd prints the wallet session and trading flow state.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and trading state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := wire.Sessions.Current()
			if !sess.Connected {
				fmt.Println("wallet: not connected")
			} else {
				fmt.Println("wallet:", sess.PublicKey)
				fmt.Println("secure channel:", sess.SharedSecret != nil)
			}
			fmt.Println("auth phase:", wire.Auth.Phase())

			st := wire.Trading.State()
			fmt.Println("trading phase:", st.Phase)
			if st.RequiresInitialization {
				fmt.Println("margin account requires initialization")
			}
			if st.LastError != "" {
				fmt.Println("last error:", st.LastError)
			}
			if st.LastResult != nil {
				fmt.Printf("last result: position=%s signature=%s status=%s\n",
					st.LastResult.PositionID,
					st.LastResult.TransactionSignature,
					st.LastResult.ConfirmationStatus)
			}
			return nil
		},
	}
}
