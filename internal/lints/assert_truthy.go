package lints

import (
	"github.com/gnolang/mtlin/internal/syntax"
	tt "github.com/gnolang/mtlin/internal/types"
)

const AssertTruthyRule = "assert-truthy"

var assertTruthy = newEqualityAssertion(AssertTruthyRule, syntax.KindTrue, "assert")

// TryMatchAssertTruthy recognises assert_equal(true, actual[, message]).
//
// The call must have no receiver and two or three arguments, the first being
// the literal true. Longer argument lists are left alone because assert takes
// at most two.
func TryMatchAssertTruthy(n *syntax.Node) (EqualityMatch, bool) {
	return assertTruthy.match(n)
}

// AssertTruthyEdits rewrites a matched call to assert(actual[, message]).
// It returns two edits: the method name, and the span from `true` through
// the end of actual, which is replaced by actual's own text.
func AssertTruthyEdits(f *syntax.File, n *syntax.Node, m EqualityMatch) ([]tt.TextEdit, error) {
	return assertTruthy.edits(f, n, m)
}

// AssertTruthyMessage renders the diagnostic for a matched call.
func AssertTruthyMessage(f *syntax.File, m EqualityMatch) string {
	return assertTruthy.message(f, m)
}

// DetectAssertTruthy reports assert_equal(true, ...) calls that should use assert.
//
//	# bad
//	assert_equal(true, actual)
//	assert_equal(true, actual, 'the message')
//
//	# good
//	assert(actual)
//	assert(actual, 'the message')
func DetectAssertTruthy(file *syntax.File, severity tt.Severity) ([]tt.Issue, error) {
	return assertTruthy.detect(file, severity)
}
