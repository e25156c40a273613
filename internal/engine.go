package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/mtlin/internal/nolint"
	"github.com/gnolang/mtlin/internal/syntax/ruby"
	tt "github.com/gnolang/mtlin/internal/types"
)

// Engine manages the linting process.
type Engine struct {
	ignoredRules map[string]bool
	ignoredPaths []string
	rules        map[string]LintRule
	cache        *Cache
	logger       *zap.Logger

	watcher    *fsnotify.Watcher
	watchDirs  []string
	isWatching bool
	watchMu    sync.Mutex
	watchDone  chan struct{}
	onIssues   func(filename string, issues []tt.Issue)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the engine. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCache makes Run reuse issues of files whose contents did not change.
func WithCache(cache *Cache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// NewEngine creates a new lint engine. rootDir is the directory watched by
// StartWatching.
func NewEngine(rootDir string, rules map[string]tt.ConfigRule, opts ...Option) (*Engine, error) {
	engine := &Engine{
		logger:    zap.NewNop(),
		watchDirs: []string{rootDir},
	}
	for _, opt := range opts {
		opt(engine)
	}
	engine.applyRules(rules)
	engine.onIssues = engine.reportIssues

	return engine, nil
}

// Define the ruleConstructor type
type ruleConstructor func() LintRule

// Define the ruleMap type
type ruleMap map[string]ruleConstructor

// Create a map to hold the mappings of rule names to their constructors
var allRuleConstructors = ruleMap{
	"assert-truthy": NewAssertTruthyRule,
	"assert-nil":    NewAssertNilRule,
	"refute-false":  NewRefuteFalseRule,
}

// RuleNames returns the names of every known rule, sorted.
func RuleNames() []string {
	names := make([]string, 0, len(allRuleConstructors))
	for name := range allRuleConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) {
	e.rules = make(map[string]LintRule)
	e.registerDefaultRules()

	// Iterate over the rules and apply severity
	for key, rule := range rules {
		r := e.findRule(key)
		if r == nil {
			newRuleCstr := allRuleConstructors[key]
			if newRuleCstr == nil {
				e.logger.Warn("unknown rule in configuration", zap.String("rule", key))
				continue
			}
			r = newRuleCstr()
			e.rules[key] = r
		}
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
		}
		r.SetSeverity(rule.Severity)
	}
}

func (e *Engine) registerDefaultRules() {
	// iterate over allRuleConstructors and add them to the rules map if severity is not off
	for key, newRuleCstr := range allRuleConstructors {
		newRule := newRuleCstr()
		if newRule.Severity() != tt.SeverityOff {
			e.rules[key] = newRule
		}
	}
}

func (e *Engine) findRule(name string) LintRule {
	if rule, ok := e.rules[name]; ok {
		return rule
	}
	return nil
}

// activeRules returns the enabled rule names, sorted. It doubles as the
// rule-set component of cache keys.
func (e *Engine) activeRules() []string {
	names := make([]string, 0, len(e.rules))
	for name, rule := range e.rules {
		if e.ignoredRules[name] || rule.Severity() == tt.SeverityOff {
			continue
		}
		names = append(names, name+"="+rule.Severity().String())
	}
	sort.Strings(names)
	return names
}

// Run applies all lint rules to the given file and returns a slice of Issues.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.isIgnoredPath(filename) {
		e.logger.Debug("skipping ignored path", zap.String("file", filename))
		return nil, nil
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	ruleSet := strings.Join(e.activeRules(), ",")
	if e.cache != nil {
		if issues, ok := e.cache.Get(filename, source, ruleSet); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return issues, nil
		}
	}

	issues, err := e.run(context.Background(), filename, source)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, source, ruleSet, issues); err != nil {
			e.logger.Warn("failed to update cache", zap.String("file", filename), zap.Error(err))
		}
	}
	return issues, nil
}

// RunSource applies all lint rules to the given source and returns a slice of Issues.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	return e.run(context.Background(), "", source)
}

func (e *Engine) run(ctx context.Context, filename string, source []byte) ([]tt.Issue, error) {
	file, err := ruby.Parse(ctx, filename, source)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}

	nolintMgr := nolint.ParseComments(file)

	var wg sync.WaitGroup
	var mu sync.Mutex

	var allIssues []tt.Issue
	for _, rule := range e.rules {
		if e.ignoredRules[rule.Name()] {
			continue
		}
		wg.Add(1)
		go func(r LintRule) {
			defer wg.Done()
			issues, err := r.Check(file)
			if err != nil {
				e.logger.Warn("rule failed",
					zap.String("rule", r.Name()),
					zap.String("file", filename),
					zap.Error(err))
				return
			}

			nolinted := filterNolintIssues(nolintMgr, issues)

			mu.Lock()
			allIssues = append(allIssues, nolinted...)
			mu.Unlock()
		}(rule)
	}
	wg.Wait()

	sortIssues(allIssues)
	for _, issue := range allIssues {
		if !issue.Fixable() && issue.Note != "" {
			e.logger.Debug("issue has no correction",
				zap.String("rule", issue.Rule),
				zap.String("file", filename),
				zap.Int("line", issue.Start.Line),
				zap.String("reason", issue.Note))
		}
	}
	return allIssues, nil
}

// sortIssues orders issues by offset, then by rule name, so that the output
// does not depend on which rule goroutine finished first.
func sortIssues(issues []tt.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Range.Start != issues[j].Range.Start {
			return issues[i].Range.Start < issues[j].Range.Start
		}
		return issues[i].Rule < issues[j].Rule
	})
}

func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath excludes files from Run. path is either a directory prefix or a
// filepath.Match pattern tested against the full path and the base name.
func (e *Engine) IgnorePath(path string) {
	if path == "" {
		return
	}
	e.ignoredPaths = append(e.ignoredPaths, filepath.Clean(path))
}

func (e *Engine) isIgnoredPath(filename string) bool {
	cleaned := filepath.Clean(filename)
	for _, ignored := range e.ignoredPaths {
		if cleaned == ignored || strings.HasPrefix(cleaned, ignored+string(filepath.Separator)) {
			return true
		}
		if ok, _ := filepath.Match(ignored, cleaned); ok {
			return true
		}
		if ok, _ := filepath.Match(ignored, filepath.Base(cleaned)); ok {
			return true
		}
	}
	return false
}

// filterNolintIssues filters issues based on nolint comments.
func filterNolintIssues(mgr *nolint.Manager, issues []tt.Issue) []tt.Issue {
	if mgr == nil {
		return issues
	}
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if !mgr.IsNolint(issue.Start, issue.Rule) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

// NewSourceCode splits content into lines, dropping carriage returns.
func NewSourceCode(content []byte) *SourceCode {
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return &SourceCode{Lines: lines}
}
