package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gnolang/mtlin/internal/fixer"
	tt "github.com/gnolang/mtlin/internal/types"
	"github.com/gnolang/mtlin/lint"
)

// maxFixPasses bounds the lint-and-fix loop.
const maxFixPasses = 10

var dryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Automatically fix issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		// initialize the lint engine
		engine, err := newEngine()
		if err != nil {
			return fmt.Errorf("failed to initialize lint engine: %w", err)
		}

		result, err := runAutoFix(ctx, logger, engine, args, dryRun, cmd.OutOrStdout())
		if result.Skipped > 0 {
			logger.Warn("some issues could not be fixed", zap.Int("skipped", result.Skipped))
		}
		if result.Refused > 0 {
			logger.Warn("some corrections were refused", zap.Int("refused", result.Refused))
		}
		return err
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
	fixCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	fixCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
}

// runAutoFix lints paths and applies the corrections, file by file. Issues
// whose edits conflict with another issue in the same pass are fixed by a
// later pass, after the file has been linted again.
func runAutoFix(
	ctx context.Context,
	logger *zap.Logger,
	engine lint.LintEngine,
	paths []string,
	dryRun bool,
	out io.Writer,
) (fixer.Result, error) {
	fix := fixer.New(dryRun, out)

	var (
		total fixer.Result
		errs  error
	)
	for pass := 1; pass <= maxFixPasses; pass++ {
		issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
		if err != nil {
			return total, err
		}

		var passResult fixer.Result
		byFile := groupByFile(issues)
		for _, filename := range sortedKeys(byFile) {
			result, err := fix.Fix(filename, byFile[filename])
			if err != nil {
				logger.Error("error fixing issues", zap.String("file", filename), zap.Error(err))
				errs = multierr.Append(errs, err)
				continue
			}
			passResult.Applied += result.Applied
			passResult.Skipped += result.Skipped
			passResult.Refused += result.Refused
		}

		total.Applied += passResult.Applied
		total.Skipped = passResult.Skipped
		total.Refused = passResult.Refused
		logger.Debug("fix pass finished",
			zap.Int("pass", pass),
			zap.Int("applied", passResult.Applied),
			zap.Int("skipped", passResult.Skipped),
			zap.Int("refused", passResult.Refused))

		if dryRun || passResult.Skipped == 0 || passResult.Applied == 0 {
			break
		}
	}
	return total, errs
}

func groupByFile(issues []tt.Issue) map[string][]tt.Issue {
	byFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		if issue.Filename == "" {
			continue
		}
		byFile[issue.Filename] = append(byFile[issue.Filename], issue)
	}
	return byFile
}

func sortedKeys(m map[string][]tt.Issue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
