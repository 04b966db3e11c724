package main

import (
	"os"

	"github.com/sellerstats/wbsync/cmd/wbsync/commands"
)

// main is the entry point for the wbsync CLI: go run ./cmd/wbsync [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
