package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wonny/warrantscan/internal/report"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen underlyings only",
	Long: `Computes the asset snapshot (ATR, range, RSI, volatility, score)
for every ticker without touching the warrant listing.

Example:
  go run ./cmd/warrantscan screen
  go run ./cmd/warrantscan screen --tickers SAP.DE,ADS.DE --all`,
	RunE: runScreen,
}

var screenAll bool

func init() {
	rootCmd.AddCommand(screenCmd)

	// Flags
	screenCmd.Flags().StringSliceVar(&scanTickers, "tickers", nil, "comma-separated tickers (default: configured universe)")
	screenCmd.Flags().IntVar(&scanLimit, "limit", 0, "screen only the first N tickers")
	screenCmd.Flags().IntVar(&scanMinAssetScore, "min-asset-score", -1, "minimum asset score (default from scanner config)")
	screenCmd.Flags().BoolVar(&screenAll, "all", false, "also print underlyings that do not qualify")
}

func runScreen(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{tweak: applyScanFlags})
	if err != nil {
		return err
	}
	defer a.Close()

	tickers := a.scan.Tickers()
	snaps := a.runner().Screen(ctx, uuid.New().String(), tickers)

	qualified := 0
	for _, s := range snaps {
		if s.Qualifies {
			qualified++
		}
		if s.Qualifies || screenAll {
			report.PrintSnapshot(os.Stdout, s)
		}
	}

	PrintSeparator()
	PrintKeyValue("Tickers", fmt.Sprintf("%d", len(tickers)), 9)
	PrintKeyValue("Screened", fmt.Sprintf("%d", len(snaps)), 9)
	PrintKeyValue("Qualified", fmt.Sprintf("%d", qualified), 9)

	return ctx.Err()
}
