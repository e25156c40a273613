package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/gnolang/mtlin/internal/types"
)

// writeRubyTests creates count test files; file i holds i+1 truthy assertions.
func writeRubyTests(t *testing.T, dir string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		var b strings.Builder
		fmt.Fprintf(&b, "class Test%d < Minitest::Test\n  def test_it\n", i)
		for j := 0; j <= i; j++ {
			fmt.Fprintf(&b, "    assert_equal(true, value%d)\n", j)
		}
		b.WriteString("  end\nend\n")
		filename := filepath.Join(dir, fmt.Sprintf("test%d_test.rb", i))
		require.NoError(t, os.WriteFile(filename, []byte(b.String()), 0o644))
	}
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeRubyTests(t, tempDir, 10)

	engine, err := New(tempDir, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	issues, err := ProcessPath(ctx, nil, engine, tempDir, ProcessFile)

	assert.ErrorIs(t, err, context.Canceled)
	// partial results are still returned
	assert.NotNil(t, issues)
}

func TestFileResultOrdering(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeRubyTests(t, tempDir, 5)

	engine, err := New(tempDir, "")
	require.NoError(t, err)

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.NoError(t, err)
	require.Len(t, issues, 1+2+3+4+5)

	perFile := make(map[string]int)
	var order []string
	for _, issue := range issues {
		if perFile[issue.Filename] == 0 {
			order = append(order, filepath.Base(issue.Filename))
		}
		perFile[issue.Filename]++
		assert.Equal(t, "assert-truthy", issue.Rule)
	}

	assert.Equal(t, []string{
		"test0_test.rb", "test1_test.rb", "test2_test.rb", "test3_test.rb", "test4_test.rb",
	}, order)
	for i := 0; i < 5; i++ {
		assert.Equal(t, i+1, perFile[filepath.Join(tempDir, fmt.Sprintf("test%d_test.rb", i))])
	}
}

func TestConcurrentProcessingWithErrors(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeRubyTests(t, tempDir, 3)
	broken := filepath.Join(tempDir, "broken_test.rb")
	require.NoError(t, os.WriteFile(broken, []byte("assert_equal(true, x)\n"), 0o644))

	engine, err := New(tempDir, "")
	require.NoError(t, err)

	errBroken := errors.New("cannot lint")
	processor := func(e LintEngine, path string) ([]tt.Issue, error) {
		if path == broken {
			return nil, errBroken
		}
		return ProcessFile(e, path)
	}

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, processor)

	// the other files are still linted
	assert.ErrorIs(t, err, errBroken)
	assert.Len(t, issues, 1+2+3)
}

func TestProcessPath_IgnoredPaths(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeRubyTests(t, tempDir, 3)

	engine, err := New(tempDir, "")
	require.NoError(t, err)
	engine.IgnorePath("test2_test.rb")

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.NoError(t, err)
	assert.Len(t, issues, 1+2)
}
