// Command repmarket runs the reputation market node: the market engine, its
// HTTP API and the activity event stream, configured from a TOML file in the
// node home directory.
package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "repmarket",
	Short:         "Reputation market node",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var homePath string

func init() {
	rootCmd.PersistentFlags().StringVar(&homePath, "home", defaultHome(), "node home directory")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".repmarket"
	}
	return filepath.Join(home, ".repmarket")
}
