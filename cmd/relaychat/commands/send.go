package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"relaychat/internal/domain"
)

func sendCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "send [to] [message...]",
		Short: "Send a message to another client",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := appCtx.Identity(passphrase, domain.Username(from))
			if err != nil {
				return err
			}

			ctx, cancel := requestContext(cmd)
			defer cancel()

			body := strings.Join(args[1:], " ")
			receipt, err := appCtx.Relay.Send(ctx, sender, domain.Username(args[0]), body)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s, id %s)\n", receipt.Outcome.Summary(), receipt.Outcome, receipt.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "sender name (default: your registered name)")
	return cmd
}
