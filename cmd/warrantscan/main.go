package main

import (
	"os"

	"github.com/wonny/warrantscan/cmd/warrantscan/commands"
)

// main is the entry point for the warrantscan CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/warrantscan [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
