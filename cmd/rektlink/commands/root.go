package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rektlink/internal/app"
	"rektlink/internal/domain"
)

var (
	home         string
	backendURL   string
	walletScheme string
	redirectBase string
	cluster      string
	appURL       string
	walletWS     string
	userID       string

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "rektlink",
		Short: "External-wallet signing and trading client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".rektlink")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			var err error
			wire, err = app.NewWire(app.Config{
				Home:         home,
				BackendURL:   backendURL,
				WalletScheme: walletScheme,
				RedirectBase: redirectBase,
				Cluster:      cluster,
				AppURL:       appURL,
				WalletWS:     walletWS,
				Opener:       stdoutOpener(),
			})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "storage dir (default ~/.rektlink)")
	root.PersistentFlags().StringVar(&backendURL, "backend", "http://127.0.0.1:8080", "backend base URL")
	root.PersistentFlags().StringVar(&walletScheme, "scheme", "phantom", "wallet URL scheme")
	root.PersistentFlags().StringVar(&redirectBase, "redirect", "rekt://wallet", "inbound redirect target")
	root.PersistentFlags().StringVar(&cluster, "cluster", "mainnet-beta", "chain cluster")
	root.PersistentFlags().StringVar(&appURL, "app-url", "https://rekt.app", "dapp identity URL shown by the wallet")
	root.PersistentFlags().StringVar(&walletWS, "wallet-ws", "", "bound wallet endpoint URL (selects bound-session transport)")
	root.PersistentFlags().StringVar(&userID, "user", "", "backend user id for trading commands")

	root.AddCommand(
		connectCmd(), handleRedirectCmd(), disconnectCmd(), statusCmd(),
		loginCmd(), biometricCmd(),
		openCmd(), closeCmd(), initAccountCmd(),
	)
	return root.Execute()
}

// stdoutOpener prints the deep link instead of launching it; on a real
// device the host app hands the URL to the OS.
func stdoutOpener() domain.Opener {
	return domain.OpenerFunc(func(url string) error {
		fmt.Println("open in wallet:", url)
		return nil
	})
}
