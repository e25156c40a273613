package lints

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mtlin/internal/rewrite"
	"github.com/gnolang/mtlin/internal/syntax"
	"github.com/gnolang/mtlin/internal/syntax/ruby"
	tt "github.com/gnolang/mtlin/internal/types"
)

type detectFunc func(*syntax.File, tt.Severity) ([]tt.Issue, error)

func parseRuby(t *testing.T, src string) *syntax.File {
	t.Helper()
	f, err := ruby.Parse(context.Background(), "example_test.rb", []byte(src))
	require.NoError(t, err)
	return f
}

func fixAll(t *testing.T, f *syntax.File, issues []tt.Issue) string {
	t.Helper()
	buf := rewrite.NewBuffer(f.Src)
	for _, issue := range issues {
		require.NoError(t, buf.Merge(issue.Edits))
	}
	return string(buf.Bytes())
}

func TestEqualityAssertions_Parsed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		detect   detectFunc
		rule     string
		src      string
		issues   int
		expected string
		messages []string
	}{
		{
			name:     "assert truthy",
			detect:   DetectAssertTruthy,
			rule:     AssertTruthyRule,
			src:      "assert_equal(true, foo)\n",
			issues:   1,
			expected: "assert(foo)\n",
			messages: []string{"Prefer using `assert(foo)` over `assert_equal(true, foo)`."},
		},
		{
			name:     "assert truthy with message",
			detect:   DetectAssertTruthy,
			rule:     AssertTruthyRule,
			src:      "assert_equal(true, foo, 'the message')\n",
			issues:   1,
			expected: "assert(foo, 'the message')\n",
			messages: []string{"Prefer using `assert(foo, 'the message')` over `assert_equal(true, foo, 'the message')`."},
		},
		{
			name:     "assert truthy without parentheses",
			detect:   DetectAssertTruthy,
			rule:     AssertTruthyRule,
			src:      "assert_equal true, foo\n",
			issues:   1,
			expected: "assert foo\n",
		},
		{
			name:     "false is not truthy",
			detect:   DetectAssertTruthy,
			rule:     AssertTruthyRule,
			src:      "assert_equal(false, foo)\n",
			expected: "assert_equal(false, foo)\n",
		},
		{
			name:     "receiver is not matched",
			detect:   DetectAssertTruthy,
			rule:     AssertTruthyRule,
			src:      "obj.assert_equal(true, foo)\n",
			expected: "obj.assert_equal(true, foo)\n",
		},
		{
			name:     "four arguments are not matched",
			detect:   DetectAssertTruthy,
			rule:     AssertTruthyRule,
			src:      "assert_equal(true, foo, bar, baz)\n",
			expected: "assert_equal(true, foo, bar, baz)\n",
		},
		{
			name:     "nested in a test method",
			detect:   DetectAssertTruthy,
			rule:     AssertTruthyRule,
			src:      "class FooTest < Minitest::Test\n  def test_foo\n    assert_equal(true, foo.valid?, \"should be valid\") # check\n  end\nend\n",
			issues:   1,
			expected: "class FooTest < Minitest::Test\n  def test_foo\n    assert(foo.valid?, \"should be valid\") # check\n  end\nend\n",
		},
		{
			name:     "two calls in one file",
			detect:   DetectAssertTruthy,
			rule:     AssertTruthyRule,
			src:      "assert_equal(true, a)\nassert_equal(true, b, 'msg')\n",
			issues:   2,
			expected: "assert(a)\nassert(b, 'msg')\n",
		},
		{
			name:     "assert nil",
			detect:   DetectAssertNil,
			rule:     AssertNilRule,
			src:      "assert_equal(nil, foo, 'msg')\n",
			issues:   1,
			expected: "assert_nil(foo, 'msg')\n",
			messages: []string{"Prefer using `assert_nil(foo, 'msg')` over `assert_equal(nil, foo, 'msg')`."},
		},
		{
			name:     "refute false",
			detect:   DetectRefuteFalse,
			rule:     RefuteFalseRule,
			src:      "assert_equal(false, foo)\n",
			issues:   1,
			expected: "refute(foo)\n",
			messages: []string{"Prefer using `refute(foo)` over `assert_equal(false, foo)`."},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := parseRuby(t, tc.src)
			issues, err := tc.detect(f, tt.SeverityWarning)
			require.NoError(t, err)
			require.Len(t, issues, tc.issues)

			for i, issue := range issues {
				assert.Equal(t, tc.rule, issue.Rule)
				assert.Equal(t, categoryMinitest, issue.Category)
				assert.Equal(t, tt.SeverityWarning, issue.Severity)
				assert.True(t, issue.Fixable())
				if i < len(tc.messages) {
					assert.Equal(t, tc.messages[i], issue.Message)
				}
			}

			out := fixAll(t, f, issues)
			assert.Equal(t, tc.expected, out)

			// a second pass over the corrected source finds nothing
			again, err := tc.detect(parseRuby(t, out), tt.SeverityWarning)
			require.NoError(t, err)
			assert.Empty(t, again)
		})
	}
}

func TestDetectAssertTruthy_Positions(t *testing.T) {
	t.Parallel()

	src := "def test_it\n  assert_equal(true, foo)\nend\n"
	f := parseRuby(t, src)

	issues, err := DetectAssertTruthy(f, tt.SeverityError)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, "example_test.rb", issue.Filename)
	assert.Equal(t, 2, issue.Start.Line)
	assert.Equal(t, 3, issue.Start.Column)
	assert.Equal(t, 2, issue.End.Line)
	assert.Equal(t, "assert_equal(true, foo)", f.Slice(issue.Range))
	assert.Equal(t, "  assert(foo)", issue.Suggestion)
}

func TestEqualityAssertions_Disjoint(t *testing.T) {
	t.Parallel()

	src := "assert_equal(true, a)\nassert_equal(false, b)\nassert_equal(nil, c)\n"
	f := parseRuby(t, src)

	var all []tt.Issue
	for _, detect := range []detectFunc{DetectAssertTruthy, DetectRefuteFalse, DetectAssertNil} {
		issues, err := detect(f, tt.SeverityWarning)
		require.NoError(t, err)
		require.Len(t, issues, 1)
		all = append(all, issues...)
	}

	assert.Equal(t, "assert(a)\nrefute(b)\nassert_nil(c)\n", fixAll(t, f, all))
}
