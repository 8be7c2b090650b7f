package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/wonny/warrantscan/internal/contracts"
)

const separator = "───────────────────────────────────────────────────────────────────────────"

// PrintTop prints the best n candidates as a compact table. Scores of
// 90+ are green, below 60 yellow.
func PrintTop(w io.Writer, ranked []contracts.RankedCandidate, n int) {
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "  %-4s %-10s %-8s %10s %-12s %8s %6s %6s %8s %7s\n",
		"#", "TICKER", "WKN", "STRIKE", "MATURITY", "ASK", "OMEGA", "DAYS", "MOVE%", "SCORE")
	fmt.Fprintln(w, separator)

	good := color.New(color.FgGreen, color.Bold)
	weak := color.New(color.FgYellow)

	for i, rc := range ranked[:n] {
		c := rc.Candidate
		move := "-"
		if c.MoveNeededPct != nil {
			move = fmt.Sprintf("%.2f", *c.MoveNeededPct)
		}

		score := fmt.Sprintf("%7.1f", c.TotalScore)
		switch {
		case c.TotalScore >= 90:
			score = good.Sprint(score)
		case c.TotalScore < 60:
			score = weak.Sprint(score)
		}

		fmt.Fprintf(w, "  %-4d %-10s %-8s %10.2f %-12s %8.3f %6.1f %6d %8s %s\n",
			i+1, truncate(rc.Snapshot.Ticker, 10), c.Row.Code, c.Row.Strike, truncate(c.Row.Maturity, 12),
			c.Row.Ask, c.Row.Omega, c.DaysToMaturity, move, score)
	}
	fmt.Fprintln(w, separator)
}

// PrintSnapshot prints the screening outcome of one asset
func PrintSnapshot(w io.Writer, s contracts.AssetSnapshot) {
	mark := color.New(color.FgRed).Sprint("✗")
	if s.Qualifies {
		mark = color.New(color.FgGreen).Sprint("✓")
	}
	fmt.Fprintf(w, "%s %-10s score=%-3d close=%.2f %s atr=%.2f%% range=%.2f%% rsi=%.1f\n",
		mark, s.Ticker, s.Score, s.Close, s.Currency, s.ATRPct*100, s.RangePct*100, s.RSI)
	if len(s.Reasoning) > 0 {
		fmt.Fprintf(w, "    %s\n", strings.Join(s.Reasoning, "\n    "))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
