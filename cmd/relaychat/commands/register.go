package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"relaychat/internal/domain"
)

func registerCmd() *cobra.Command {
	var callback string
	cmd := &cobra.Command{
		Use:   "register [name]",
		Short: "Register a client name with the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			reg, err := appCtx.Register(ctx, passphrase, domain.Username(args[0]), callback)
			if err != nil {
				return err
			}
			fmt.Println("Registered", reg.ClientURI)
			fmt.Println("Fingerprint:", reg.Fingerprint)
			return nil
		},
	}
	cmd.Flags().StringVar(&callback, "callback", "", "http(s) URL the relay should POST messages to")
	return cmd
}
