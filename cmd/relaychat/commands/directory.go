package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"relaychat/internal/domain"
)

func clientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List registered clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			names, err := appCtx.Relay.Clients(ctx)
			if err != nil {
				return err
			}
			printNames(names)
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Find clients whose name contains query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			}

			ctx, cancel := requestContext(cmd)
			defer cancel()

			names, err := appCtx.Relay.Search(ctx, query)
			if err != nil {
				return err
			}
			printNames(names)
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [name]",
		Short: "Check that a client name is registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()

			if err := appCtx.Relay.Validate(ctx, domain.Username(args[0])); err != nil {
				return err
			}
			fmt.Println(args[0], "is registered")
			return nil
		},
	}
}

func activeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "active [name] [on|off]",
		Short:     "Mark a client active or inactive",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var active bool
			switch args[1] {
			case "on":
				active = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[1])
			}

			ctx, cancel := requestContext(cmd)
			defer cancel()

			if err := appCtx.Relay.SetActive(ctx, domain.Username(args[0]), active); err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", args[0], args[1])
			return nil
		},
	}
}

func printNames(names []domain.Username) {
	if len(names) == 0 {
		fmt.Println("(none)")
		return
	}
	for _, n := range names {
		fmt.Println(n)
	}
}
