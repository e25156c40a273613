// Package pattern describes method-call shapes declaratively and compiles
// them into predicates over syntax nodes.
//
// A shape names the method, says whether a receiver is allowed, and lists
// one predicate per required positional argument followed by predicates for
// optional trailing arguments:
//
//	p := pattern.Call{
//		Method:   "assert_equal",
//		Receiver: pattern.NoReceiver,
//		Args:     []pattern.Arg{pattern.Kind(syntax.KindTrue), pattern.Capture("actual")},
//		Optional: []pattern.Arg{pattern.Capture("message")},
//	}
//	caps, ok := p.Match(node)
//
// Calls with more arguments than the shape can hold never match, so a
// rewrite built on the captures cannot drop arguments.
package pattern

import "github.com/gnolang/mtlin/internal/syntax"

// Captures maps capture names to the nodes they matched.
type Captures map[string]*syntax.Node

// Get returns the captured node, or nil.
func (c Captures) Get(name string) *syntax.Node {
	if c == nil {
		return nil
	}
	return c[name]
}

// ReceiverRule constrains the receiver of a call.
type ReceiverRule uint8

const (
	// NoReceiver only matches implicit-self calls.
	NoReceiver ReceiverRule = iota
	// AnyReceiver matches calls with or without a receiver.
	AnyReceiver
	// WithReceiver only matches calls on an explicit receiver.
	WithReceiver
)

// Arg is a predicate over a single argument node. It may record captures.
type Arg func(n *syntax.Node, caps Captures) bool

// Kind matches arguments of kind k.
func Kind(k syntax.Kind) Arg {
	return func(n *syntax.Node, _ Captures) bool {
		return n.Kind == k
	}
}

// Any matches every argument.
func Any() Arg {
	return func(*syntax.Node, Captures) bool { return true }
}

// Capture matches every argument and records it under name.
func Capture(name string) Arg {
	return func(n *syntax.Node, caps Captures) bool {
		caps[name] = n
		return true
	}
}

// CaptureIf records the argument under name when inner matches it.
func CaptureIf(name string, inner Arg) Arg {
	return func(n *syntax.Node, caps Captures) bool {
		if !inner(n, caps) {
			return false
		}
		caps[name] = n
		return true
	}
}

// Call is a declarative method-call shape.
type Call struct {
	Method   string
	Receiver ReceiverRule
	Args     []Arg
	Optional []Arg
}

// Match reports whether n has the shape of p and returns the captures.
// Malformed nodes (a call kind without a call view, nil arguments) never match.
func (p Call) Match(n *syntax.Node) (Captures, bool) {
	if n == nil || n.Kind != syntax.KindCall || n.Call == nil {
		return nil, false
	}
	call := n.Call
	if call.Method != p.Method {
		return nil, false
	}
	if !p.receiverOK(call.Receiver) {
		return nil, false
	}

	argc := len(call.Args)
	if argc < len(p.Args) || argc > len(p.Args)+len(p.Optional) {
		return nil, false
	}

	caps := make(Captures)
	for i, arg := range call.Args {
		if arg == nil {
			return nil, false
		}
		var pred Arg
		if i < len(p.Args) {
			pred = p.Args[i]
		} else {
			pred = p.Optional[i-len(p.Args)]
		}
		if !pred(arg, caps) {
			return nil, false
		}
	}
	return caps, true
}

func (p Call) receiverOK(recv *syntax.Node) bool {
	switch p.Receiver {
	case NoReceiver:
		return recv == nil
	case WithReceiver:
		return recv != nil
	default:
		return true
	}
}
