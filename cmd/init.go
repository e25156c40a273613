package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/mtlin/lint"
)

var forceInit bool

// initCmd: mtlin init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new linter configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = lint.DefaultConfigFile
		}
		if err := initConfigurationFile(path, forceInit); err != nil {
			return fmt.Errorf("initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
}

// initConfigurationFile writes the default configuration, as toml when the
// path ends in .toml.
func initConfigurationFile(configurationPath string, force bool) error {
	d, err := lint.MarshalConfig(configurationPath, lint.DefaultConfig())
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(configurationPath, flags, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
