package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	tt "github.com/gnolang/mtlin/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// createTempDir creates a temporary directory and returns its path.
// It also registers a cleanup function to remove the directory after the test.
func createTempDir(t testing.TB, prefix string) string {
	tempDir, err := os.MkdirTemp("", prefix)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })
	return tempDir
}

func writeFile(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const sampleTest = `require "minitest/autorun"

class SampleTest < Minitest::Test
  def test_sample
    assert_equal(nil, result)
    assert_equal(true, ok?, "should be ok")
    assert_equal(false, failed?)
    assert_equal(42, answer)
  end
end
`

func rulesOf(issues []tt.Issue) []string {
	rules := make([]string, 0, len(issues))
	for _, issue := range issues {
		rules = append(rules, issue.Rule)
	}
	return rules
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(createTempDir(t, "engine_test"), nil)
	require.NoError(t, err)
	assert.Len(t, engine.rules, len(allRuleConstructors))
	for name, rule := range engine.rules {
		assert.Equal(t, name, rule.Name())
		assert.Equal(t, tt.SeverityWarning, rule.Severity())
	}
	assert.Equal(t, []string{"assert-nil", "assert-truthy", "refute-false"}, RuleNames())
}

func TestNewEngine_ConfiguredRules(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(".", map[string]tt.ConfigRule{
		"assert-truthy": {Severity: tt.SeverityError},
		"refute-false":  {Severity: tt.SeverityOff},
		"no-such-rule":  {Severity: tt.SeverityError},
	})
	require.NoError(t, err)

	assert.Equal(t, tt.SeverityError, engine.rules["assert-truthy"].Severity())
	assert.True(t, engine.ignoredRules["refute-false"])
	assert.NotContains(t, engine.rules, "no-such-rule")

	issues, err := engine.RunSource([]byte(sampleTest))
	require.NoError(t, err)
	assert.Equal(t, []string{"assert-nil", "assert-truthy"}, rulesOf(issues))
	assert.Equal(t, tt.SeverityWarning, issues[0].Severity)
	assert.Equal(t, tt.SeverityError, issues[1].Severity)
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()

	dir := createTempDir(t, "engine_run")
	path := filepath.Join(dir, "sample_test.rb")
	writeFile(t, path, sampleTest)

	engine, err := NewEngine(dir, nil)
	require.NoError(t, err)

	issues, err := engine.Run(path)
	require.NoError(t, err)
	require.Equal(t, []string{"assert-nil", "assert-truthy", "refute-false"}, rulesOf(issues))

	for i, line := range []int{5, 6, 7} {
		assert.Equal(t, path, issues[i].Filename)
		assert.Equal(t, line, issues[i].Start.Line)
		assert.True(t, issues[i].Fixable())
	}
	assert.Equal(t, "    assert(ok?, \"should be ok\")", issues[1].Suggestion)

	_, err = engine.Run(filepath.Join(dir, "missing_test.rb"))
	assert.Error(t, err)
}

func TestEngine_IgnoreRule(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(".", nil)
	require.NoError(t, err)
	engine.IgnoreRule("assert-nil")
	assert.True(t, engine.ignoredRules["assert-nil"])

	issues, err := engine.RunSource([]byte(sampleTest))
	require.NoError(t, err)
	assert.Equal(t, []string{"assert-truthy", "refute-false"}, rulesOf(issues))
}

func TestEngine_IgnorePath(t *testing.T) {
	t.Parallel()

	dir := createTempDir(t, "engine_ignore")
	vendored := filepath.Join(dir, "vendor", "gem_test.rb")
	generated := filepath.Join(dir, "generated_test.rb")
	kept := filepath.Join(dir, "kept_test.rb")
	for _, path := range []string{vendored, generated, kept} {
		writeFile(t, path, sampleTest)
	}

	engine, err := NewEngine(dir, nil)
	require.NoError(t, err)
	engine.IgnorePath(filepath.Join(dir, "vendor"))
	engine.IgnorePath("generated_*.rb")
	engine.IgnorePath("")

	for _, path := range []string{vendored, generated} {
		issues, err := engine.Run(path)
		require.NoError(t, err)
		assert.Empty(t, issues, path)
	}

	issues, err := engine.Run(kept)
	require.NoError(t, err)
	assert.Len(t, issues, 3)
}

func TestEngine_Nolint(t *testing.T) {
	t.Parallel()

	src := `class SampleTest < Minitest::Test
  def test_sample
    assert_equal(true, a) # nolint
    # nolint:assert-nil
    assert_equal(true, b)
  end
end
`
	engine, err := NewEngine(".", nil)
	require.NoError(t, err)

	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 5, issues[0].Start.Line)
}

func TestEngine_Cache(t *testing.T) {
	t.Parallel()

	dir := createTempDir(t, "engine_cache")
	path := filepath.Join(dir, "sample_test.rb")
	writeFile(t, path, sampleTest)

	cache, err := NewCache(filepath.Join(dir, ".cache"))
	require.NoError(t, err)

	engine, err := NewEngine(dir, nil, WithCache(cache))
	require.NoError(t, err)

	first, err := engine.Run(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	second, err := engine.Run(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// a different rule set must not reuse the entry
	engine.IgnoreRule("assert-truthy")
	third, err := engine.Run(path)
	require.NoError(t, err)
	assert.Len(t, third, 2)

	writeFile(t, path, "assert_equal(true, x)\n")
	fourth, err := engine.Run(path)
	require.NoError(t, err)
	assert.Empty(t, fourth)
}

func TestEngine_Watch(t *testing.T) {
	dir := createTempDir(t, "engine_watch")

	engine, err := NewEngine(dir, nil)
	require.NoError(t, err)

	reports := make(chan []tt.Issue, 16)
	engine.OnIssues(func(filename string, issues []tt.Issue) {
		// a create event can observe the file before it is written
		if filepath.Base(filename) == "watched_test.rb" && len(issues) > 0 {
			reports <- issues
		}
	})

	require.NoError(t, engine.StartWatching())
	assert.Error(t, engine.StartWatching())
	defer func() {
		assert.NoError(t, engine.StopWatching())
		assert.NoError(t, engine.StopWatching())
	}()

	writeFile(t, filepath.Join(dir, "watched_test.rb"), "assert_equal(true, x)\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "assert_equal(true, x)\n")

	select {
	case issues := <-reports:
		require.Len(t, issues, 1)
		assert.Equal(t, "assert-truthy", issues[0].Rule)
	case <-time.After(5 * time.Second):
		t.Fatal("no report for the changed file")
	}
}

func TestReadSourceCode(t *testing.T) {
	t.Parallel()
	tempDir := createTempDir(t, "source_code_test")

	testFile := filepath.Join(tempDir, "test.rb")
	writeFile(t, testFile, "def test_it\r\n  assert_equal(true, x)\r\nend")

	sourceCode, err := ReadSourceCode(testFile)
	require.NoError(t, err)
	assert.Len(t, sourceCode.Lines, 3)
	assert.Equal(t, "def test_it", sourceCode.Lines[0])

	_, err = ReadSourceCode(filepath.Join(tempDir, "missing.rb"))
	assert.Error(t, err)
}

func BenchmarkRunSource(b *testing.B) {
	engine, err := NewEngine(".", nil)
	if err != nil {
		b.Fatalf("failed to create engine: %v", err)
	}
	src := []byte(sampleTest)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := engine.RunSource(src); err != nil {
			b.Fatalf("failed to run engine: %v", err)
		}
	}
}
