package lints

import (
	"fmt"
	"strings"

	"github.com/gnolang/mtlin/internal/pattern"
	"github.com/gnolang/mtlin/internal/rewrite"
	"github.com/gnolang/mtlin/internal/syntax"
	tt "github.com/gnolang/mtlin/internal/types"
)

const (
	categoryMinitest = "minitest"

	assertEqualMethod = "assert_equal"
	captureActual     = "actual"
	captureMessage    = "message"
)

// EqualityMatch holds the interesting arguments of an
// assert_equal(<literal>, actual[, message]) call. The nodes are borrowed
// from the file being linted.
type EqualityMatch struct {
	Actual  *syntax.Node
	Message *syntax.Node
}

// Arguments returns the nodes that survive the rewrite, in order.
func (m EqualityMatch) Arguments() []*syntax.Node {
	if m.Message == nil {
		return []*syntax.Node{m.Actual}
	}
	return []*syntax.Node{m.Actual, m.Message}
}

// equalityAssertion is an assert_equal call whose expected value is a fixed
// literal and that has a dedicated assertion.
type equalityAssertion struct {
	rule      string
	literal   string
	preferred string
	shape     pattern.Call
}

func newEqualityAssertion(rule string, literal syntax.Kind, preferred string) equalityAssertion {
	return equalityAssertion{
		rule:      rule,
		literal:   literal.String(),
		preferred: preferred,
		shape: pattern.Call{
			Method:   assertEqualMethod,
			Receiver: pattern.NoReceiver,
			Args:     []pattern.Arg{pattern.Kind(literal), pattern.Capture(captureActual)},
			Optional: []pattern.Arg{pattern.Capture(captureMessage)},
		},
	}
}

func (a equalityAssertion) match(n *syntax.Node) (EqualityMatch, bool) {
	caps, ok := a.shape.Match(n)
	if !ok {
		return EqualityMatch{}, false
	}
	return EqualityMatch{
		Actual:  caps.Get(captureActual),
		Message: caps.Get(captureMessage),
	}, true
}

// edits renames the method and drops the literal first argument together
// with the separator that follows it.
func (a equalityAssertion) edits(f *syntax.File, n *syntax.Node, m EqualityMatch) ([]tt.TextEdit, error) {
	if n == nil || n.Call == nil || m.Actual == nil {
		return nil, fmt.Errorf("%w: incomplete match", rewrite.ErrInvalidRange)
	}

	c := rewrite.NewCorrector(f.Src)
	c.Replace(n.Call.MethodRange, a.preferred)
	c.Replace(firstAndSecondArgumentsRange(n), f.Text(m.Actual))
	return c.Edits()
}

func (a equalityAssertion) message(f *syntax.File, m EqualityMatch) string {
	args := make([]string, 0, 2)
	for _, arg := range m.Arguments() {
		args = append(args, f.Text(arg))
	}
	joined := strings.Join(args, ", ")
	return fmt.Sprintf("Prefer using `%s(%s)` over `%s(%s, %s)`.",
		a.preferred, joined, assertEqualMethod, a.literal, joined)
}

// detect reports every matching call in f. A call whose edits cannot be
// computed safely is still reported, without a correction.
func (a equalityAssertion) detect(f *syntax.File, severity tt.Severity) ([]tt.Issue, error) {
	if f == nil || f.Root == nil {
		return nil, nil
	}

	var issues []tt.Issue
	syntax.Inspect(f.Root, func(n *syntax.Node) bool {
		if n.Kind != syntax.KindCall {
			return true
		}
		m, ok := a.match(n)
		if !ok {
			return true
		}

		issue := tt.Issue{
			Rule:     a.rule,
			Category: categoryMinitest,
			Filename: f.Name,
			Message:  a.message(f, m),
			Start:    f.Position(n.Range.Start),
			End:      f.Position(n.Range.End),
			Range:    n.Range,
			Severity: severity,
		}

		edits, err := a.edits(f, n, m)
		if err == nil {
			issue.Edits = edits
			issue.Suggestion = suggestion(f, n.Range, edits)
		} else {
			issue.Note = "no automatic correction: " + err.Error()
		}

		issues = append(issues, issue)
		return true
	})

	return issues, nil
}

// firstAndSecondArgumentsRange spans from the start of the first argument
// to the end of the second, including whatever separates them.
func firstAndSecondArgumentsRange(n *syntax.Node) syntax.Range {
	first, second := n.Call.Arg(0), n.Call.Arg(1)
	if first == nil || second == nil {
		return syntax.Range{Start: -1, End: -1}
	}
	return syntax.Range{Start: first.Range.Start, End: second.Range.End}
}

// suggestion renders the corrected text of the lines spanned by r.
func suggestion(f *syntax.File, r syntax.Range, edits []tt.TextEdit) string {
	span := f.LineSpan(r)
	shifted := make([]tt.TextEdit, 0, len(edits))
	for _, e := range edits {
		if e.Range.Start < span.Start || e.Range.End > span.End {
			return ""
		}
		shifted = append(shifted, tt.TextEdit{
			Range:       syntax.Range{Start: e.Range.Start - span.Start, End: e.Range.End - span.Start},
			Replacement: e.Replacement,
		})
	}
	out, err := rewrite.Apply([]byte(f.Slice(span)), shifted)
	if err != nil {
		return ""
	}
	return string(out)
}
