// Package cli holds the storefront command line.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront API server and admin tools",
		Long: `Storefront serves the product catalogue, shopping cart and Paystack
checkout over HTTP, and ships admin commands for listing orders,
running database migrations and checking dependencies.

Configuration is read from the environment and an optional file
named by CONFIG_FILE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newServeCmd(),
		newOrdersCmd(),
		newMigrateCmd(),
		newCheckCmd(),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
