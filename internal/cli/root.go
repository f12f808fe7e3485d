// Package cli holds the storefront command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X storefront-backend/internal/cli.Version=...".
var Version = "dev"

var (
	// Global flags
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront backend - accounts, catalog, cart and orders over HTTP",
	Long: `Storefront is the HTTP backend for a small e-commerce shop.

Commands:
  serve    - Start the HTTP API
  migrate  - Apply or roll back the PostgreSQL schema
  version  - Print the build version

Settings are read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional .env file")
	rootCmd.AddCommand(versionCmd)
}
