package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	tt "github.com/gnolang/mtlin/internal/types"
)

// ErrConflict is returned by Buffer.Merge when a correction touches bytes
// already claimed by an accepted correction.
var ErrConflict = errors.New("edits conflict with an accepted correction")

// Buffer accumulates the corrections of every rule for one file. A
// correction is accepted whole or not at all.
type Buffer struct {
	src   []byte
	edits []tt.TextEdit
}

// NewBuffer returns an empty buffer over the original contents src.
func NewBuffer(src []byte) *Buffer {
	return &Buffer{src: src}
}

// Merge adds the edits of one correction. It returns ErrConflict, leaving
// the buffer unchanged, if any of them overlaps an accepted edit.
func (b *Buffer) Merge(edits []tt.TextEdit) error {
	for _, e := range edits {
		if !e.Range.Valid(len(b.src)) {
			return fmt.Errorf("%w: %s in %d bytes", ErrInvalidRange, e.Range, len(b.src))
		}
	}

	candidate := make([]tt.TextEdit, 0, len(edits))
	candidate = append(candidate, edits...)
	sortEdits(candidate)
	if err := checkDisjoint(candidate); err != nil {
		return err
	}

	for _, e := range candidate {
		if b.conflicts(e) {
			return fmt.Errorf("%w: %s", ErrConflict, e.Range)
		}
	}

	b.edits = append(b.edits, candidate...)
	sortEdits(b.edits)
	return nil
}

func (b *Buffer) conflicts(e tt.TextEdit) bool {
	// first accepted edit that ends at or after e starts
	i := sort.Search(len(b.edits), func(i int) bool {
		return b.edits[i].Range.End >= e.Range.Start
	})
	for ; i < len(b.edits) && b.edits[i].Range.Start <= e.Range.End; i++ {
		prev := b.edits[i].Range
		if prev.Overlaps(e.Range) {
			return true
		}
		if prev.Empty() && e.Range.Empty() && prev.Start == e.Range.Start {
			return true
		}
	}
	return false
}

// Len returns the number of accepted edits.
func (b *Buffer) Len() int {
	return len(b.edits)
}

// Edits returns a copy of the accepted edits in offset order.
func (b *Buffer) Edits() []tt.TextEdit {
	out := make([]tt.TextEdit, len(b.edits))
	copy(out, b.edits)
	return out
}

// Bytes returns the original contents with every accepted edit applied.
func (b *Buffer) Bytes() []byte {
	out, _ := Apply(b.src, b.edits)
	return out
}

// Apply applies edits, given against original offsets, to src. The edits
// must be disjoint; they are sorted here so callers may pass them in any order.
func Apply(src []byte, edits []tt.TextEdit) ([]byte, error) {
	sorted := make([]tt.TextEdit, len(edits))
	copy(sorted, edits)
	sortEdits(sorted)

	for _, e := range sorted {
		if !e.Range.Valid(len(src)) {
			return nil, fmt.Errorf("%w: %s in %d bytes", ErrInvalidRange, e.Range, len(src))
		}
	}
	if err := checkDisjoint(sorted); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(src))
	last := 0
	for _, e := range sorted {
		buf.Write(src[last:e.Range.Start])
		buf.WriteString(e.Replacement)
		last = e.Range.End
	}
	buf.Write(src[last:])
	return buf.Bytes(), nil
}
