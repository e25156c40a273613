package nolint

import (
	"context"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mtlin/internal/syntax/ruby"
)

func parse(t *testing.T, src string) *Manager {
	t.Helper()
	f, err := ruby.Parse(context.Background(), "test.rb", []byte(src))
	require.NoError(t, err)
	return ParseComments(f)
}

func at(line int) token.Position {
	return token.Position{Filename: "test.rb", Line: line, Column: 1}
}

func TestParseNolintRules(t *testing.T) {
	t.Parallel()
	result := parseIgnoreRuleNames("rule1, rule2 ,rule3")
	assert.Len(t, result, 3)
	for _, rule := range []string{"rule1", "rule2", "rule3"} {
		assert.Contains(t, result, rule)
	}
	assert.Empty(t, parseIgnoreRuleNames(""))
}

func TestIsNolint(t *testing.T) {
	t.Parallel()

	src := `require "minitest/autorun"

class FooTest < Minitest::Test
  def test_foo
    # nolint
    assert_equal(true, a)
    assert_equal(true, b)
    assert_equal(true, c) # nolint:assert-truthy
    # nolint:assert-nil, refute-false

    assert_equal(nil, d)
  end

  # nolint:assert-truthy
  def test_bar
    assert_equal(true, e)
  end
end
`
	m := parse(t, src)

	tests := []struct {
		name string
		line int
		rule string
		want bool
	}{
		{"standalone covers next line", 6, "assert-truthy", true},
		{"standalone does not leak", 7, "assert-truthy", false},
		{"inline with matching rule", 8, "assert-truthy", true},
		{"inline with other rule", 8, "assert-nil", false},
		{"standalone skips blank lines", 11, "assert-nil", true},
		{"standalone rule list", 11, "refute-false", true},
		{"standalone rule list excludes others", 11, "assert-truthy", false},
		{"comment above a method covers its body", 16, "assert-truthy", true},
		{"method scope keeps rule list", 16, "assert-nil", false},
		{"method scope ends with the method", 18, "assert-truthy", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, m.IsNolint(at(tc.line), tc.rule))
		})
	}
}

func TestIsNolint_NestedBodies(t *testing.T) {
	t.Parallel()

	src := `class FooTest < Minitest::Test
  def test_foo
    assert_equal(true, a) # nolint
    assert_equal(true, b)
    if ready?
      # nolint:assert-nil
      assert_equal(nil, c)
      assert_equal(nil, d)
    end
    items.each do |item|
      assert_equal(true, item) # nolint
      assert_equal(true, item.ok?)
    end
  end
end
`
	m := parse(t, src)

	tests := []struct {
		name string
		line int
		rule string
		want bool
	}{
		{"inline on first statement of a method", 3, "assert-truthy", true},
		{"method body after inline", 4, "assert-truthy", false},
		{"standalone in if branch", 7, "assert-nil", true},
		{"if branch after standalone", 8, "assert-nil", false},
		{"inline on first statement of a block", 11, "assert-truthy", true},
		{"block body after inline", 12, "assert-truthy", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, m.IsNolint(at(tc.line), tc.rule))
		})
	}
}

func TestIsNolint_WholeFile(t *testing.T) {
	t.Parallel()

	src := `# frozen_string_literal: true
# nolint:assert-truthy

class FooTest < Minitest::Test
  def test_foo
    assert_equal(true, a)
  end
end
`
	m := parse(t, src)
	assert.True(t, m.IsNolint(at(6), "assert-truthy"))
	assert.False(t, m.IsNolint(at(6), "assert-nil"))
	assert.False(t, m.IsNolint(token.Position{Filename: "other.rb", Line: 6}, "assert-truthy"))
}

func TestParseComments_Invalid(t *testing.T) {
	t.Parallel()

	src := `x = 1
# nolintfoo
assert_equal(true, a)
# nolint:
assert_equal(true, b)
# plain comment
assert_equal(true, c)
`
	m := parse(t, src)
	for _, line := range []int{3, 5, 7} {
		assert.False(t, m.IsNolint(at(line), "assert-truthy"), "line %d", line)
	}

	assert.NotNil(t, ParseComments(nil))
}
