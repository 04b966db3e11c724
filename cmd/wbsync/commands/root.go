package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wbsync",
	Short: "Wildberries seller statistics sync",
	Long: `wbsync - Wildberries seller statistics ETL

Fetches advertising and conversion statistics from the Wildberries
seller API, flattens them into per-article daily records and upserts
them into Postgres.

Usage:
  go run ./cmd/wbsync [command]

Examples:
  go run ./cmd/wbsync sync adv --begin 2025-06-01 --end 2025-06-07
  go run ./cmd/wbsync sync cr
  go run ./cmd/wbsync scheduler start
  go run ./cmd/wbsync api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
