package lints

import (
	"github.com/gnolang/mtlin/internal/syntax"
	tt "github.com/gnolang/mtlin/internal/types"
)

const RefuteFalseRule = "refute-false"

var refuteFalse = newEqualityAssertion(RefuteFalseRule, syntax.KindFalse, "refute")

// DetectRefuteFalse reports assert_equal(false, actual[, message]) calls and
// rewrites them to refute(actual[, message]).
func DetectRefuteFalse(file *syntax.File, severity tt.Severity) ([]tt.Issue, error) {
	return refuteFalse.detect(file, severity)
}
