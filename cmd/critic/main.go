// Command critic runs brand DNA extraction and creative critique from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgHiRed).Sprint("✗"), err)
		os.Exit(1)
	}
}
