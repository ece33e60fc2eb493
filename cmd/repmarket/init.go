package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"code.trustnet.io/repmarket/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory with a default configuration",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing configuration")
}

func runInit(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(homePath, 0o755); err != nil {
		return errors.Wrap(err, "unable to create home directory")
	}
	if _, err := config.Read(homePath); err == nil && !initForce {
		return fmt.Errorf("configuration already exists in %s, use --force to overwrite", homePath)
	}
	if err := config.Write(homePath, config.NewDefaultConfig()); err != nil {
		return errors.Wrap(err, "unable to write configuration")
	}
	fmt.Printf("configuration generated in %s\n", homePath)
	return nil
}
