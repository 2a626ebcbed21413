package commands

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"relaychat/internal/app"
)

var (
	home       string
	passphrase string
	appCtx     *app.App

	relayURL string
	timeout  time.Duration
)

func Execute() error {
	root := &cobra.Command{
		Use:          "relaychat",
		Short:        "Message relay chat CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".relaychat")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			// No client-wide timeout: listen holds its request open.
			w, err := app.NewWire(app.Config{
				Home:     home,
				RelayURL: relayURL,
				HTTP:     &http.Client{},
			})
			if err != nil {
				return err
			}
			appCtx = app.New(w.Relay, w.Profiles, relayURL)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.relaychat)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the stored profile")
	root.PersistentFlags().StringVar(&relayURL, "relay", "http://127.0.0.1:5000", "relay base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout for one relay request")

	root.AddCommand(
		registerCmd(),
		sendCmd(),
		listenCmd(),
		clientsCmd(),
		searchCmd(),
		validateCmd(),
		activeCmd(),
	)
	return root.Execute()
}

// requestContext bounds a single relay call.
func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
