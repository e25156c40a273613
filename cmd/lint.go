package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/mtlin/formatter"
	"github.com/gnolang/mtlin/internal"
	tt "github.com/gnolang/mtlin/internal/types"
	"github.com/gnolang/mtlin/lint"
)

var (
	ignoreRules    string
	ignorePaths    string
	lintJsonOutput bool
	outPath        string
	cacheDir       string
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run the normal lint process",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return fmt.Errorf("failed to initialize lint engine: %w", err)
		}

		n, err := runNormalLintProcess(ctx, logger, engine, args, lintJsonOutput, outPath, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if n > 0 {
			return errIssuesFound
		}
		return nil
	},
}

func init() {
	lintCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	lintCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	lintCmd.Flags().BoolVar(&lintJsonOutput, "json", false, "Output issues in JSON format")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	lintCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory of the lint result cache (disabled when empty)")
}

// newEngine builds an engine from the persistent and lint flags.
func newEngine() (*internal.Engine, error) {
	opts := []internal.Option{internal.WithLogger(logger)}
	if cacheDir != "" {
		cache, err := internal.NewCache(cacheDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, internal.WithCache(cache))
	}

	engine, err := lint.New(".", cfgFile, opts...)
	if err != nil {
		return nil, err
	}
	for _, rule := range splitList(ignoreRules) {
		engine.IgnoreRule(rule)
	}
	for _, path := range splitList(ignorePaths) {
		engine.IgnorePath(path)
	}
	return engine, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// runNormalLintProcess lints paths and prints the issues. It returns the
// number of issues found; issues found before a failure are still printed.
func runNormalLintProcess(
	ctx context.Context,
	logger *zap.Logger,
	engine lint.LintEngine,
	paths []string,
	isJson bool,
	jsonOutput string,
	out io.Writer,
) (int, error) {
	issues, lintErr := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	if err := printIssues(logger, out, issues, isJson, jsonOutput); err != nil {
		return len(issues), err
	}
	return len(issues), lintErr
}

func printIssues(logger *zap.Logger, out io.Writer, issues []tt.Issue, isJson bool, jsonOutput string) error {
	if isJson {
		d, err := formatter.GenerateJSON(issues)
		if err != nil {
			return fmt.Errorf("marshalling issues to JSON: %w", err)
		}
		if jsonOutput == "" {
			_, err = fmt.Fprintln(out, string(d))
			return err
		}
		return os.WriteFile(jsonOutput, d, 0o644)
	}

	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		fmt.Fprintln(out, formatter.GenerateFormattedIssue(issuesByFile[filename], sourceCode))
	}
	return nil
}
