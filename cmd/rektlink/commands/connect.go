package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// connectCmd starts a wallet connection: with the bound transport it
// authorizes directly; with the redirect transport it prints the connect
// deep link to open in the wallet.
func connectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect an external wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wire.Bound != nil {
				if err := wire.Bound.Connect(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("connected:", wire.Sessions.Current().PublicKey)
				return nil
			}
			u, err := wire.Handshake.ConnectURL()
			if err != nil {
				return err
			}
			fmt.Println("open in wallet:", u)
			fmt.Println("then run: rektlink handle-redirect <redirect-url>")
			return nil
		},
	}
}

// handleRedirectCmd feeds an inbound wallet redirect into the app, the
// CLI analog of the OS invoking the registered URL scheme.
func handleRedirectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "handle-redirect <url>",
		Short: "Process an inbound wallet redirect URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.HandleRedirect(args[0]); err != nil {
				return err
			}
			sess := wire.Sessions.Current()
			if sess.Connected {
				fmt.Println("session with", sess.PublicKey)
			}
			return nil
		},
	}
}

// disconnectCmd clears the wallet session and wipes the shared secret.
func disconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the wallet session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wire.Bound != nil {
				wire.Bound.Disconnect()
			} else {
				wire.Handshake.Disconnect()
			}
			fmt.Println("disconnected")
			return nil
		},
	}
}
