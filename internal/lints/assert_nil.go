package lints

import (
	"github.com/gnolang/mtlin/internal/syntax"
	tt "github.com/gnolang/mtlin/internal/types"
)

const AssertNilRule = "assert-nil"

var assertNil = newEqualityAssertion(AssertNilRule, syntax.KindNil, "assert_nil")

// DetectAssertNil reports assert_equal(nil, actual[, message]) calls and
// rewrites them to assert_nil(actual[, message]).
func DetectAssertNil(file *syntax.File, severity tt.Severity) ([]tt.Issue, error) {
	return assertNil.detect(file, severity)
}
