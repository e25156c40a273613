package fixer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/gnolang/mtlin/internal/rewrite"
	tt "github.com/gnolang/mtlin/internal/types"
)

type Fixer struct {
	DryRun bool
	Out    io.Writer
}

// Result summarises one call to Fix.
type Result struct {
	// Applied counts issues whose corrections were written.
	Applied int
	// Skipped counts fixable issues left for a later pass because their
	// edits touched bytes already claimed by another correction.
	Skipped int
	// Refused counts issues whose correction would break the file's
	// structure. They are left as they are.
	Refused int
}

func New(dryRun bool, out io.Writer) *Fixer {
	if out == nil {
		out = os.Stdout
	}
	return &Fixer{
		DryRun: dryRun,
		Out:    out,
	}
}

// Fix applies the corrections of issues to filename. Issues without edits
// or reported for another file are ignored.
func (f *Fixer) Fix(filename string, issues []tt.Issue) (Result, error) {
	var result Result

	info, err := os.Stat(filename)
	if err != nil {
		return result, fmt.Errorf("failed to stat file: %w", err)
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return result, fmt.Errorf("failed to read file: %w", err)
	}

	fixable := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Fixable() && (issue.Filename == "" || issue.Filename == filename) {
			fixable = append(fixable, issue)
		}
	}
	sort.SliceStable(fixable, func(i, j int) bool {
		return fixable[i].Range.Start < fixable[j].Range.Start
	})

	fixed, result, err := merge(content, fixable)
	if err != nil {
		return Result{}, err
	}
	if result.Applied == 0 {
		return result, nil
	}

	ctx := context.Background()
	if err := CheckEquivalence(ctx, filename, content, fixed); err != nil {
		var reason error
		fixed, result, reason = mergeVerified(ctx, filename, content, fixable)
		if result.Refused > 0 {
			fmt.Fprintf(f.Out, "Refused %d correction(s) in %s: %v\n", result.Refused, filename, reason)
		}
		if result.Applied == 0 {
			return result, nil
		}
	}

	if f.DryRun {
		diff, err := unifiedDiff(filename, content, fixed)
		if err != nil {
			return Result{}, fmt.Errorf("failed to render diff: %w", err)
		}
		fmt.Fprint(f.Out, diff)
		return result, nil
	}

	if err := os.WriteFile(filename, fixed, info.Mode().Perm()); err != nil {
		return Result{}, fmt.Errorf("failed to write file: %w", err)
	}
	fmt.Fprintf(f.Out, "Fixed %d issue(s) in %s\n", result.Applied, filename)

	return result, nil
}

// merge accepts every correction that does not conflict with an earlier one.
func merge(src []byte, issues []tt.Issue) ([]byte, Result, error) {
	var result Result
	buf := rewrite.NewBuffer(src)
	for _, issue := range issues {
		err := buf.Merge(issue.Edits)
		switch {
		case err == nil:
			result.Applied++
		case errors.Is(err, rewrite.ErrConflict):
			result.Skipped++
		default:
			return nil, Result{}, fmt.Errorf("invalid correction for %s at line %d: %w", issue.Rule, issue.Start.Line, err)
		}
	}
	return buf.Bytes(), result, nil
}

// mergeVerified is merge with CheckEquivalence run after every correction.
// Corrections that break the file are refused one by one; the first reason
// is returned.
func mergeVerified(ctx context.Context, filename string, src []byte, issues []tt.Issue) ([]byte, Result, error) {
	var (
		result   Result
		reason   error
		accepted []tt.TextEdit
	)
	fixed := src
	for _, issue := range issues {
		trial := rewrite.NewBuffer(src)
		err := trial.Merge(accepted)
		if err == nil {
			err = trial.Merge(issue.Edits)
		}
		if errors.Is(err, rewrite.ErrConflict) {
			result.Skipped++
			continue
		}

		candidate := trial.Bytes()
		if err == nil {
			err = CheckEquivalence(ctx, filename, src, candidate)
		}
		if err != nil {
			result.Refused++
			if reason == nil {
				reason = err
			}
			continue
		}

		accepted = append(accepted, issue.Edits...)
		fixed = candidate
		result.Applied++
	}
	return fixed, result, reason
}

func unifiedDiff(filename string, before, after []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: filename,
		ToFile:   filename + " (fixed)",
		Context:  3,
	})
}
