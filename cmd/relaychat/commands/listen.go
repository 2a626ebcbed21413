package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"relaychat/internal/domain"
)

// listen: print incoming messages until interrupted.
func listenCmd() *cobra.Command {
	var (
		as       string
		pushMode bool
	)
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print incoming messages until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			name, err := appCtx.Identity(passphrase, domain.Username(as))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			errs := make(chan error, 2)
			running := 1

			if pushMode {
				profile, err := appCtx.Profile(passphrase)
				if err != nil {
					return err
				}
				if profile.Name != name {
					return fmt.Errorf("--push needs the stored registration, which is for %s", profile.Name)
				}
				running++
				go func() {
					errs <- appCtx.Relay.Attach(ctx, name, profile.HandleID, func(f domain.PushFrame) error {
						fmt.Printf("From %s: %s\n", f.From, f.Message)
						return nil
					})
				}()
			}

			fmt.Printf("Listening as %s...\n", name)
			go func() {
				errs <- appCtx.Relay.Stream(ctx, name, func(ev domain.Event) error {
					fmt.Printf("From %s: %s\n", ev.From, ev.Message)
					return nil
				})
			}()

			// The first reader to stop ends the other.
			err = <-errs
			cancel()
			for i := 1; i < running; i++ {
				<-errs
			}
			return err
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "client name to listen as (default: your registered name)")
	cmd.Flags().BoolVar(&pushMode, "push", false, "also attach the websocket push channel with the stored handle")
	return cmd
}
