package main

import (
	"fmt"
	"os"

	"matlab-language-server/internal/cli"
)

// runMain executes the main application logic and returns the exit code.
// Extracted from main for testability.
func runMain() int {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain())
}
