package commands

import (
	"fmt"
	"time"
)

// Common formatting utilities so every command prints the same layout.

// printHeader prints a formatted command header with detail lines.
func printHeader(title string, details ...string) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  %s\n", title)
	fmt.Println("───────────────────────────────────────────────────────────")
	for _, line := range details {
		fmt.Printf("  %s\n", line)
	}
	fmt.Println("───────────────────────────────────────────────────────────")
}

// printSeparator prints a visual separator.
func printSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// printCompletion prints the completion line.
func printCompletion(duration time.Duration) {
	fmt.Println()
	fmt.Printf("✅ Completed in %.2fs\n", duration.Seconds())
}
