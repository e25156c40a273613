package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/mtlin/internal"
	"github.com/gnolang/mtlin/internal/syntax/ruby"
	tt "github.com/gnolang/mtlin/internal/types"
	"github.com/gnolang/mtlin/scanner"
)

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// New loads the configuration at configurationPath and builds an engine from it.
func New(rootDir string, configurationPath string, opts ...internal.Option) (*internal.Engine, error) {
	config, err := parseConfigurationFile(configurationPath)
	if err != nil {
		return nil, err
	}

	engine, err := internal.NewEngine(rootDir, config.Rules, opts...)
	if err != nil {
		return nil, err
	}
	for _, path := range config.IgnorePaths {
		engine.IgnorePath(path)
	}
	return engine, nil
}

// ShowProgress controls the progress bar drawn while a directory is linted.
var ShowProgress = true

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessFiles lints every path. A failing path does not stop the others;
// all failures are combined into the returned error.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var (
		allIssues []tt.Issue
		errs      error
	)
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		allIssues = append(allIssues, issues...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			errs = multierr.Append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}

	return allIssues, errs
}

// ProcessPath lints a single file or every Ruby file below a directory.
// Directory results keep the scan order regardless of which worker finishes
// first. On cancellation the issues found so far are returned with ctx.Err().
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	issues := make([]tt.Issue, 0)
	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return issues, nil
		}
		fileIssues, err := processor(engine, path)
		if err != nil {
			return issues, err
		}
		return append(issues, fileIssues...), nil
	}

	files, err := scanner.New(path, ruby.Extension).Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	bar := newProgressBar(path, len(files))
	defer func() { _ = bar.Finish() }()

	var (
		mu      sync.Mutex
		errs    error
		results = make([][]tt.Issue, len(files))
		g       errgroup.Group
	)
	g.SetLimit(runtime.NumCPU())

	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fileIssues, err := processor(engine, file.Path)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", file.Path), zap.Error(err))
				}
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			results[i] = fileIssues
			_ = bar.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	for _, result := range results {
		issues = append(issues, result...)
	}
	if err := ctx.Err(); err != nil {
		return issues, err
	}
	return issues, errs
}

func newProgressBar(description string, total int) *progressbar.ProgressBar {
	if !ShowProgress {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

func hasDesiredExtension(path string) bool {
	return filepath.Ext(path) == ruby.Extension
}
