package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/mtlin/lint"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger = zap.NewNop()
)

// errIssuesFound makes the process exit with status 1 without printing an error.
var errIssuesFound = errors.New("issues found")

var rootCmd = &cobra.Command{
	Use:              "mtlin [paths...]",
	Short:            "mtlin - a linter for minitest assertions in Ruby test files",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: mtlin [path1 path2 ...] => behaves like the lint subcommand
		return lintCmd.RunE(lintCmd, args)
	},
}

// Execute runs the command line and reports errors on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errIssuesFound) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", lint.DefaultConfigFile, "Path to the configuration file (yaml or toml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Set a timeout for the linter")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable development logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(watchCmd)
}
