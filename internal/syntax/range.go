package syntax

import "fmt"

// Range is a half-open [Start, End) byte interval into a file's source.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by r.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty reports whether r covers no bytes.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Valid reports whether r is well-formed and lies within a source of the given size.
func (r Range) Valid(size int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= size
}

// Overlaps reports whether r and other share at least one byte. An empty
// range overlaps a non-empty one when its position lies in [Start, End).
func (r Range) Overlaps(other Range) bool {
	if r.Empty() && other.Empty() {
		return false
	}
	if r.Empty() {
		return other.Start <= r.Start && r.Start < other.End
	}
	if other.Empty() {
		return r.Start <= other.Start && other.Start < r.End
	}
	return r.Start < other.End && other.Start < r.End
}

// Cover returns the smallest range containing both r and other.
func (r Range) Cover(other Range) Range {
	if other.Start < r.Start {
		r.Start = other.Start
	}
	if other.End > r.End {
		r.End = other.End
	}
	return r
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
