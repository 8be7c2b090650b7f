package commands

import (
	"fmt"
	"time"

	"github.com/wonny/warrantscan/internal/pipeline"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// RunMetadata describes a command run for the header
type RunMetadata struct {
	Title      string
	OptionType string
	Tickers    int
	Timestamp  string
	Output     string // Optional
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(meta RunMetadata) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", meta.Title)
	PrintSeparator()
	PrintKeyValue("Option", meta.OptionType, 9)
	PrintKeyValue("Tickers", fmt.Sprintf("%d", meta.Tickers), 9)
	PrintKeyValue("Started", meta.Timestamp, 9)

	if meta.Output != "" {
		PrintKeyValue("Output", meta.Output, 9)
	}

	PrintSeparator()
}

// PrintEvent prints one pipeline progress event
// Example: [scan] SAP.DE listings found: 42 (SAP / Aktuelle Laufzeit)
func PrintEvent(ev pipeline.Event) {
	switch ev.Type {
	case pipeline.EventAssetScreened:
		fmt.Printf("[screen] %-10s score=%.0f %s\n", ev.Ticker, ev.Score, ev.Message)
	case pipeline.EventAssetSkipped:
		fmt.Printf("[skip]   %-10s %s\n", ev.Ticker, ev.Message)
	case pipeline.EventListingsFound:
		fmt.Printf("[scan]   %-10s listings found: %d (%s)\n", ev.Ticker, ev.Count, ev.Message)
	case pipeline.EventAssetScored:
		fmt.Printf("[score]  %-10s candidates: %d best=%.1f\n", ev.Ticker, ev.Count, ev.Score)
	}
}

// PrintRunCompletion prints the run completion message
func PrintRunCompletion(runID string, candidates int, duration time.Duration) {
	fmt.Println()
	fmt.Printf("✅ Run %s completed in %.2fs (%d candidates)\n", runID, duration.Seconds(), candidates)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}
