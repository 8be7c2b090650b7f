package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// mappingCmd represents the mapping command
var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect the ticker to listing-name mapping",
	Long: `Shows, resolves and overrides the listing names used to search
warrants for each ticker.

Subcommands:
  show     - print the stored mapping
  resolve  - resolve tickers (derives and stores names when missing)
  set      - store names for a ticker

Example:
  go run ./cmd/warrantscan mapping show
  go run ./cmd/warrantscan mapping resolve SIE.DE ADS.DE
  go run ./cmd/warrantscan mapping set MUV2.DE "Münchener Rück" "Munich Re"`,
}

var (
	mappingShowCmd = &cobra.Command{
		Use:   "show [ticker]",
		Short: "Print the stored mapping",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showMapping,
	}

	mappingResolveCmd = &cobra.Command{
		Use:   "resolve [ticker...]",
		Short: "Resolve tickers to listing names",
		Args:  cobra.MinimumNArgs(1),
		RunE:  resolveMapping,
	}

	mappingSetCmd = &cobra.Command{
		Use:   "set [ticker] [name...]",
		Short: "Store listing names for a ticker",
		Args:  cobra.MinimumNArgs(2),
		RunE:  setMapping,
	}
)

func init() {
	rootCmd.AddCommand(mappingCmd)
	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingResolveCmd)
	mappingCmd.AddCommand(mappingSetCmd)
}

func showMapping(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	mapping := a.store.Snapshot()

	if len(args) == 1 {
		ticker := strings.ToUpper(args[0])
		names, ok := mapping[ticker]
		if !ok {
			PrintInfo(fmt.Sprintf("%s is not mapped yet (try: mapping resolve %s)", ticker, ticker))
			return nil
		}
		fmt.Println(ticker)
		PrintList(names)
		return nil
	}

	tickers := make([]string, 0, len(mapping))
	for t := range mapping {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	fmt.Printf("Mapping file: %s (%d tickers)\n", a.store.Path(), len(tickers))
	PrintSeparator()
	for _, t := range tickers {
		PrintKeyValue(t, strings.Join(mapping[t], " | "), 10)
	}

	return nil
}

func resolveMapping(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	for _, arg := range args {
		res := a.resolver.ResolveWithSource(cmd.Context(), strings.ToUpper(arg))
		fmt.Printf("%s (%s)\n", res.Ticker, res.Source)
		PrintList(res.Names)
	}

	return nil
}

func setMapping(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	ticker := strings.ToUpper(args[0])
	if err := a.store.Put(ticker, args[1:]); err != nil {
		return fmt.Errorf("store mapping: %w", err)
	}

	PrintSuccess(fmt.Sprintf("%s → %s", ticker, strings.Join(args[1:], " | ")))
	return nil
}
