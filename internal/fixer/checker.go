package fixer

import (
	"context"
	"errors"
	"fmt"

	"github.com/gnolang/mtlin/internal/syntax"
	"github.com/gnolang/mtlin/internal/syntax/ruby"
)

// shape counts the nodes a correction must leave alone. Corrections only
// rename methods and drop literal arguments, so the number of calls is
// preserved and no parse error may appear.
type shape struct {
	calls  int
	errors int
}

func shapeOf(f *syntax.File) shape {
	var s shape
	syntax.Inspect(f.Root, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.KindCall:
			s.calls++
		case syntax.KindError, syntax.KindMissing:
			s.errors++
		}
		return true
	})
	return s
}

// CheckEquivalence parses the original and corrected contents and fails
// when the correction broke the file's structure.
func CheckEquivalence(ctx context.Context, filename string, original, modified []byte) error {
	before, err := ruby.Parse(ctx, filename, original)
	if err != nil {
		return err
	}
	after, err := ruby.Parse(ctx, filename, modified)
	if err != nil {
		return err
	}

	want, got := shapeOf(before), shapeOf(after)
	if got.errors > want.errors {
		return fmt.Errorf("correction introduces %d syntax error(s)", got.errors-want.errors)
	}
	if after.HasErrors && !before.HasErrors {
		return errors.New("correction introduces syntax error(s)")
	}
	if got.calls != want.calls {
		return fmt.Errorf("correction changes the number of calls from %d to %d", want.calls, got.calls)
	}
	return nil
}
