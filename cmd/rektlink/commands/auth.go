package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rektlink/internal/domain"
)

// loginCmd signs the challenge message with the wallet and exchanges it
// for a backend session.
func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the backend via a wallet signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := wire.Auth.Authenticate(cmd.Context())
			if err != nil {
				return err
			}
			if res.Phase == domain.AuthSignupRequired {
				fmt.Println("no account for this wallet; complete signup first")
				return nil
			}
			fmt.Println("authenticated")
			return nil
		},
	}
}

// biometricCmd toggles or shows the biometric-unlock preference.
func biometricCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "biometric [on|off]",
		Short:     "Show or set the biometric unlock preference",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				enabled, err := wire.Auth.Biometric()
				if err != nil {
					return err
				}
				fmt.Println("biometric:", enabled)
				return nil
			}
			return wire.Auth.SetBiometric(args[0] == "on")
		},
	}
}
