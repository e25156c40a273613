// Package rewrite turns source ranges and replacement text into edit sets
// and applies them to file contents.
//
// All offsets are original offsets. Edits are never re-based after an
// earlier edit is applied; Apply walks them in order and copies the
// untouched bytes in between.
package rewrite

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gnolang/mtlin/internal/syntax"
	tt "github.com/gnolang/mtlin/internal/types"
)

var (
	// ErrInvalidRange is returned for an edit whose range is malformed or
	// outside the source.
	ErrInvalidRange = errors.New("edit range out of bounds")
	// ErrOverlap is returned when edits of one correction overlap.
	ErrOverlap = errors.New("overlapping edits")
)

// Corrector collects the edits of a single correction.
type Corrector struct {
	size  int
	edits []tt.TextEdit
	err   error
}

// NewCorrector returns a Corrector for a source of len(src) bytes.
func NewCorrector(src []byte) *Corrector {
	return &Corrector{size: len(src)}
}

// Replace replaces the bytes of r with text.
func (c *Corrector) Replace(r syntax.Range, text string) {
	if c.err != nil {
		return
	}
	if !r.Valid(c.size) {
		c.err = fmt.Errorf("%w: %s in %d bytes", ErrInvalidRange, r, c.size)
		return
	}
	c.edits = append(c.edits, tt.TextEdit{Range: r, Replacement: text})
}

// Remove deletes the bytes of r.
func (c *Corrector) Remove(r syntax.Range) {
	c.Replace(r, "")
}

// InsertBefore inserts text at the start of r.
func (c *Corrector) InsertBefore(r syntax.Range, text string) {
	c.Replace(syntax.Range{Start: r.Start, End: r.Start}, text)
}

// InsertAfter inserts text at the end of r.
func (c *Corrector) InsertAfter(r syntax.Range, text string) {
	c.Replace(syntax.Range{Start: r.End, End: r.End}, text)
}

// Edits returns the collected edits sorted by start offset. It fails if any
// range was invalid or if two edits overlap; callers must then report the
// issue without a correction.
func (c *Corrector) Edits() ([]tt.TextEdit, error) {
	if c.err != nil {
		return nil, c.err
	}
	edits := make([]tt.TextEdit, len(c.edits))
	copy(edits, c.edits)
	sortEdits(edits)
	if err := checkDisjoint(edits); err != nil {
		return nil, err
	}
	return edits, nil
}

func sortEdits(edits []tt.TextEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Range.Start != edits[j].Range.Start {
			return edits[i].Range.Start < edits[j].Range.Start
		}
		return edits[i].Range.End < edits[j].Range.End
	})
}

// checkDisjoint expects edits sorted by start offset.
func checkDisjoint(edits []tt.TextEdit) error {
	for i := 1; i < len(edits); i++ {
		prev, cur := edits[i-1].Range, edits[i].Range
		if prev.Overlaps(cur) || (prev.Empty() && cur.Empty() && prev.Start == cur.Start) {
			return fmt.Errorf("%w: %s and %s", ErrOverlap, prev, cur)
		}
	}
	return nil
}
