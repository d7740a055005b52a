// This file contains config management commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"roverlay/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage roverlay configuration",
}

// configInitCmd writes a default config file for editing.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Writes the default configuration to the --config path so it can be edited.
Credentials can also be supplied via OMERO_URL, OMERO_USER and OMERO_PASSWORD.`,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}
	cfg := config.DefaultConfig()
	if err := cfg.Save(cfgFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgFile)
	return nil
}
