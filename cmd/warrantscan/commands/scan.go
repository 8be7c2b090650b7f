package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/warrantscan/internal/report"
	"github.com/wonny/warrantscan/internal/scanconfig"
	"github.com/wonny/warrantscan/internal/scheduler/jobs"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the full warrant scan",
	Long: `Runs the full pipeline over the ticker universe:

- screen every underlying on daily price history
- resolve listing names and search the warrant listing
- prefilter by spread, enrich from detail pages
- score and rank every candidate

Results are printed, written to CSV and, when DATABASE_URL is set,
stored in PostgreSQL.

Example:
  go run ./cmd/warrantscan scan
  go run ./cmd/warrantscan scan --option-type put --min-asset-score 14
  go run ./cmd/warrantscan scan --tickers SAP.DE,^GDAXI --out sap.csv`,
	RunE: runScan,
}

var (
	scanOptionType    string
	scanMinAssetScore int
	scanLimit         int
	scanTickers       []string
	scanOut           string
	scanTop           int
	scanNoSave        bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	// Flags
	scanCmd.Flags().StringVar(&scanOptionType, "option-type", "", "call or put (default from scanner config)")
	scanCmd.Flags().IntVar(&scanMinAssetScore, "min-asset-score", -1, "minimum asset score to search warrants (default from scanner config)")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "scan only the first N tickers")
	scanCmd.Flags().StringSliceVar(&scanTickers, "tickers", nil, "comma-separated tickers (default: configured universe)")
	scanCmd.Flags().StringVar(&scanOut, "out", "", "CSV output path (default: warrants_<type>_<timestamp>.csv)")
	scanCmd.Flags().IntVar(&scanTop, "top", 15, "number of candidates to print")
	scanCmd.Flags().BoolVar(&scanNoSave, "no-save", false, "do not store the run in the database")
}

// applyScanFlags layers command-line overrides over the scanner config
func applyScanFlags(cfg *scanconfig.Config) {
	if scanOptionType != "" {
		cfg.Search.OptionType = scanOptionType
	}
	if scanMinAssetScore >= 0 {
		cfg.Screening.MinAssetScore = scanMinAssetScore
	}
	if len(scanTickers) > 0 {
		cfg.Universe.Tickers = scanTickers
	}
	if scanLimit > 0 {
		cfg.Universe.Limit = scanLimit
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{withDatabase: !scanNoSave, tweak: applyScanFlags})
	if err != nil {
		return err
	}
	defer a.Close()

	tickers := a.scan.Tickers()
	started := time.Now()

	out := scanOut
	if out == "" {
		out = jobs.ExportFileName(a.scan.Search.OptionType, started)
	}

	PrintRunHeader(RunMetadata{
		Title:      "Warrant Scan",
		OptionType: a.scan.Search.OptionType,
		Tickers:    len(tickers),
		Timestamp:  started.Format("2006-01-02 15:04:05"),
		Output:     out,
	})

	run, runErr := a.runner().WithEvents(PrintEvent).Run(ctx, tickers)
	if run == nil {
		return runErr
	}

	fmt.Println()
	fmt.Println("Qualified underlyings:")
	for _, s := range run.Qualified() {
		report.PrintSnapshot(os.Stdout, s)
	}

	if len(run.Ranked) == 0 {
		PrintWarning("No candidates found")
		return runErr
	}

	fmt.Println()
	report.PrintTop(os.Stdout, run.Ranked, scanTop)

	if err := report.WriteFile(out, run.Ranked); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Exported %d candidates to %s", len(run.Ranked), out))

	if a.repo != nil && runErr == nil {
		if err := a.repo.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		PrintSuccess("Run stored in database")
	}

	PrintRunCompletion(run.RunID, len(run.Ranked), run.Duration)
	return runErr
}
