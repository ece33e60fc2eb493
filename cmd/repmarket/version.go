package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overridden at build time via -ldflags.
var (
	cliVersion     = "0.1.0+dev"
	cliVersionHash = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("repmarket %s (%s)\n", cliVersion, cliVersionHash)
	},
}
