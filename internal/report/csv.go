package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/wonny/warrantscan/internal/contracts"
)

// Columns is the stable export header. Downstream spreadsheets key on
// these names, so they keep the listing site's German terms.
var Columns = []string{
	"ticker", "asset_score", "asset_close", "asset_currency",
	"wkn", "name", "basispreis", "laufzeit", "bid", "ask", "mid",
	"hebel", "omega", "impl_vola", "spread_pct", "aufgeld_pct", "emittent",
	"quote_currency", "bezugsverhaeltnis",
	"days_to_maturity", "theta_per_day", "theta_pct_per_day",
	"breakeven", "move_needed_pct", "intrinsic_value", "extrinsic_value", "extrinsic_pct",
	"spread_score", "omega_score", "strike_score", "theta_score", "vola_score",
	"aufgeld_score", "breakeven_score", "leverage_score", "total_score",
}

// utf8BOM lets spreadsheet tools detect the encoding of umlauts
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record renders one ranked candidate in Columns order.
// Unknown optional values are empty cells.
func Record(rc contracts.RankedCandidate) []string {
	s, c := rc.Snapshot, rc.Candidate
	row := c.Row

	ratio := ""
	if row.Ratio > 0 {
		ratio = num(row.Ratio)
	}

	return []string{
		s.Ticker, strconv.Itoa(s.Score), num(s.Close), s.Currency,
		row.Code, row.Name, num(row.Strike), row.Maturity, num(row.Bid), num(row.Ask), num(row.Mid),
		num(row.Leverage), num(row.Omega), num(row.ImpliedVol), num(row.SpreadPct), num(row.PremiumPct), row.Issuer,
		row.QuoteCurrency, ratio,
		strconv.Itoa(c.DaysToMaturity), num(c.ThetaPerDay), num(c.ThetaPctPerDay),
		optNum(c.Breakeven), optNum(c.MoveNeededPct), optNum(c.IntrinsicValue), optNum(c.ExtrinsicValue), optNum(c.ExtrinsicPct),
		strconv.Itoa(c.Scores.Spread), strconv.Itoa(c.Scores.Omega), strconv.Itoa(c.Scores.Strike),
		strconv.Itoa(c.Scores.Theta), strconv.Itoa(c.Scores.Vola), strconv.Itoa(c.Scores.Premium),
		strconv.Itoa(c.Scores.Breakeven), strconv.Itoa(c.Scores.Leverage), num(c.TotalScore),
	}
}

// WriteCSV writes a BOM, the header and one record per candidate
func WriteCSV(w io.Writer, ranked []contracts.RankedCandidate) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rc := range ranked {
		if err := cw.Write(Record(rc)); err != nil {
			return fmt.Errorf("failed to write record %s: %w", rc.Candidate.Row.Code, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the CSV export to path, replacing any existing file
func WriteFile(path string, ranked []contracts.RankedCandidate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, ranked); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optNum(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}
