package internal

import (
	"github.com/gnolang/mtlin/internal/lints"
	"github.com/gnolang/mtlin/internal/syntax"
	tt "github.com/gnolang/mtlin/internal/types"
)

/*
* Implement each lint rule as a separate struct
 */

// LintRule defines the interface for all lint rules.
type LintRule interface {
	// Check runs the lint rule on the given file and returns a slice of Issues.
	Check(file *syntax.File) ([]tt.Issue, error)

	// Name returns the name of the lint rule.
	Name() string

	// Severity returns the severity of the lint rule.
	Severity() tt.Severity

	// SetSeverity sets the severity of the lint rule.
	SetSeverity(tt.Severity)
}

type AssertTruthyRule struct {
	severity tt.Severity
}

func NewAssertTruthyRule() LintRule {
	return &AssertTruthyRule{severity: tt.SeverityWarning}
}

func (r *AssertTruthyRule) Check(file *syntax.File) ([]tt.Issue, error) {
	return lints.DetectAssertTruthy(file, r.severity)
}

func (r *AssertTruthyRule) Name() string {
	return lints.AssertTruthyRule
}

func (r *AssertTruthyRule) Severity() tt.Severity {
	return r.severity
}

func (r *AssertTruthyRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}

// -----------------------------------------------------------------------------

type AssertNilRule struct {
	severity tt.Severity
}

func NewAssertNilRule() LintRule {
	return &AssertNilRule{severity: tt.SeverityWarning}
}

func (r *AssertNilRule) Check(file *syntax.File) ([]tt.Issue, error) {
	return lints.DetectAssertNil(file, r.severity)
}

func (r *AssertNilRule) Name() string {
	return lints.AssertNilRule
}

func (r *AssertNilRule) Severity() tt.Severity {
	return r.severity
}

func (r *AssertNilRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}

// -----------------------------------------------------------------------------

type RefuteFalseRule struct {
	severity tt.Severity
}

func NewRefuteFalseRule() LintRule {
	return &RefuteFalseRule{severity: tt.SeverityWarning}
}

func (r *RefuteFalseRule) Check(file *syntax.File) ([]tt.Issue, error) {
	return lints.DetectRefuteFalse(file, r.severity)
}

func (r *RefuteFalseRule) Name() string {
	return lints.RefuteFalseRule
}

func (r *RefuteFalseRule) Severity() tt.Severity {
	return r.severity
}

func (r *RefuteFalseRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}
