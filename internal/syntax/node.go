// Package syntax is the parser-independent tree the lint rules inspect.
//
// Trees are built once per file by a host parser (see the ruby subpackage)
// and are read-only afterwards. Rules hold borrowed pointers into a tree for
// no longer than one pass over the file.
package syntax

import "fmt"

// Kind tags the shape of a Node.
type Kind uint8

const (
	KindOther Kind = iota
	KindProgram
	KindCall
	KindArgumentList
	KindTrue
	KindFalse
	KindNil
	KindIdentifier
	KindConstant
	KindString
	KindNumber
	KindSymbol
	KindComment
	KindError
	// KindMissing is a token the parser inserted to recover from an error.
	KindMissing
)

var kindNames = [...]string{
	KindOther:        "other",
	KindProgram:      "program",
	KindCall:         "call",
	KindArgumentList: "argument_list",
	KindTrue:         "true",
	KindFalse:        "false",
	KindNil:          "nil",
	KindIdentifier:   "identifier",
	KindConstant:     "constant",
	KindString:       "string",
	KindNumber:       "number",
	KindSymbol:       "symbol",
	KindComment:      "comment",
	KindError:        "error",
	KindMissing:      "missing",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsLiteral reports whether k is one of the keyword literals true, false or nil.
func (k Kind) IsLiteral() bool {
	return k == KindTrue || k == KindFalse || k == KindNil
}

// Node is a single node of a parsed file.
type Node struct {
	Kind Kind
	// Type is the grammar's own name for the node, kept for diagnostics.
	Type     string
	Range    Range
	Children []*Node

	// Call is set for KindCall nodes produced by a well-behaved parser.
	// Parser recovery can leave it nil.
	Call *Call
}

// Call is the decomposed view of a method call.
type Call struct {
	// Receiver is nil for implicit-self calls such as assert_equal(a, b).
	Receiver    *Node
	Method      string
	MethodRange Range
	Args        []*Node
	// HasParens is false for command-style calls (assert_equal a, b).
	HasParens bool
}

// NumArgs returns the number of call arguments, or 0 for a nil view.
func (c *Call) NumArgs() int {
	if c == nil {
		return 0
	}
	return len(c.Args)
}

// Arg returns the i-th argument, or nil when it does not exist.
func (c *Call) Arg(i int) *Node {
	if c == nil || i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// Inspect traverses the tree rooted at n in depth-first pre-order. If fn
// returns false the children of that node are skipped.
func Inspect(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		Inspect(child, fn)
	}
}
