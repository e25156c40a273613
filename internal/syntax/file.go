package syntax

import (
	"bytes"
	"go/token"
)

// File is a parsed source file together with its original text.
type File struct {
	Name     string
	Src      []byte
	Root     *Node
	Comments []*Node
	// HasErrors is set by the parser when it had to recover from a syntax error.
	HasErrors bool

	lines *token.File
}

// NewFile wraps src and root into a File and indexes its line starts.
func NewFile(name string, src []byte, root *Node, comments []*Node) *File {
	fset := token.NewFileSet()
	tf := fset.AddFile(name, -1, len(src))
	tf.SetLinesForContent(src)

	return &File{
		Name:     name,
		Src:      src,
		Root:     root,
		Comments: comments,
		lines:    tf,
	}
}

// Slice returns the source bytes covered by r, or "" when r is out of bounds.
func (f *File) Slice(r Range) string {
	if f == nil || !r.Valid(len(f.Src)) {
		return ""
	}
	return string(f.Src[r.Start:r.End])
}

// Text returns the original source text of n.
func (f *File) Text(n *Node) string {
	if n == nil {
		return ""
	}
	return f.Slice(n.Range)
}

// Position converts a byte offset into a line/column position.
// Offsets past the end of the file are clamped to the end.
func (f *File) Position(offset int) token.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Src) {
		offset = len(f.Src)
	}
	pos := f.lines.Position(f.lines.Pos(offset))
	pos.Filename = f.Name
	return pos
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return f.lines.LineCount()
}

// Line returns the text of the 1-based line n without its newline.
func (f *File) Line(n int) string {
	if n < 1 || n > f.lines.LineCount() {
		return ""
	}
	start := f.lines.Offset(f.lines.LineStart(n))
	rest := f.Src[start:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return string(bytes.TrimSuffix(rest, []byte("\r")))
}

// LineSpan widens r to cover the complete lines it touches, excluding the
// final newline.
func (f *File) LineSpan(r Range) Range {
	if !r.Valid(len(f.Src)) {
		return r
	}
	start := f.lines.Offset(f.lines.LineStart(f.Position(r.Start).Line))
	end := r.End
	if i := bytes.IndexByte(f.Src[end:], '\n'); i >= 0 {
		end += i
	} else {
		end = len(f.Src)
	}
	return Range{Start: start, End: end}
}
