package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	scannerConfig string
	mappingFile   string
	debug         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "warrantscan",
	Short: "Warrant discovery and scoring",
	Long: `warrantscan CLI

Screens underlyings on daily price history, finds short-dated warrants
on the listing site, enriches them from detail pages and ranks them
with an eight-factor score.

Usage:
  go run ./cmd/warrantscan [command]

Examples:
  go run ./cmd/warrantscan scan
  go run ./cmd/warrantscan scan --option-type put --limit 20 --out warrants.csv
  go run ./cmd/warrantscan screen --tickers SAP.DE,ADS.DE
  go run ./cmd/warrantscan mapping resolve SIE.DE
  go run ./cmd/warrantscan api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&scannerConfig, "scanner-config", "", "scanner YAML (default: SCANNER_CONFIG or config/scanner.yaml)")
	rootCmd.PersistentFlags().StringVar(&mappingFile, "mapping", "", "name mapping file (default: MAPPING_FILE)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging and dump the last listing page to debug_listing.html")
}
