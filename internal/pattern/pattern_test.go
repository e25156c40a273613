package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mtlin/internal/syntax"
)

func node(kind syntax.Kind) *syntax.Node {
	return &syntax.Node{Kind: kind}
}

func call(receiver *syntax.Node, method string, args ...*syntax.Node) *syntax.Node {
	return &syntax.Node{
		Kind: syntax.KindCall,
		Call: &syntax.Call{Receiver: receiver, Method: method, Args: args},
	}
}

func TestCallMatch(t *testing.T) {
	t.Parallel()

	shape := Call{
		Method:   "assert_equal",
		Receiver: NoReceiver,
		Args:     []Arg{Kind(syntax.KindTrue), Capture("actual")},
		Optional: []Arg{Capture("message")},
	}

	actual := node(syntax.KindIdentifier)
	message := node(syntax.KindString)

	tests := []struct {
		name    string
		node    *syntax.Node
		match   bool
		actual  *syntax.Node
		message *syntax.Node
	}{
		{
			name:   "required only",
			node:   call(nil, "assert_equal", node(syntax.KindTrue), actual),
			match:  true,
			actual: actual,
		},
		{
			name:    "with optional",
			node:    call(nil, "assert_equal", node(syntax.KindTrue), actual, message),
			match:   true,
			actual:  actual,
			message: message,
		},
		{
			name: "too many arguments",
			node: call(nil, "assert_equal", node(syntax.KindTrue), actual, message, node(syntax.KindNumber)),
		},
		{
			name: "too few arguments",
			node: call(nil, "assert_equal", node(syntax.KindTrue)),
		},
		{
			name: "literal mismatch",
			node: call(nil, "assert_equal", node(syntax.KindNil), actual),
		},
		{
			name: "receiver present",
			node: call(node(syntax.KindIdentifier), "assert_equal", node(syntax.KindTrue), actual),
		},
		{
			name: "method mismatch",
			node: call(nil, "assert", node(syntax.KindTrue), actual),
		},
		{
			name: "nil node",
			node: nil,
		},
		{
			name: "call without view",
			node: node(syntax.KindCall),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			caps, ok := shape.Match(tc.node)
			require.Equal(t, tc.match, ok)
			if !ok {
				assert.Nil(t, caps)
				return
			}
			assert.Same(t, tc.actual, caps.Get("actual"))
			if tc.message == nil {
				assert.Nil(t, caps.Get("message"))
			} else {
				assert.Same(t, tc.message, caps.Get("message"))
			}
		})
	}
}

func TestReceiverRules(t *testing.T) {
	t.Parallel()

	recv := node(syntax.KindIdentifier)
	with := call(recv, "run")
	without := call(nil, "run")

	for _, tc := range []struct {
		rule    ReceiverRule
		with    bool
		without bool
	}{
		{rule: NoReceiver, with: false, without: true},
		{rule: WithReceiver, with: true, without: false},
		{rule: AnyReceiver, with: true, without: true},
	} {
		shape := Call{Method: "run", Receiver: tc.rule}
		_, ok := shape.Match(with)
		assert.Equal(t, tc.with, ok)
		_, ok = shape.Match(without)
		assert.Equal(t, tc.without, ok)
	}
}

func TestCaptureIf(t *testing.T) {
	t.Parallel()

	shape := Call{
		Method:   "refute",
		Receiver: AnyReceiver,
		Args:     []Arg{CaptureIf("literal", Kind(syntax.KindFalse)), Any()},
	}

	lit := node(syntax.KindFalse)
	caps, ok := shape.Match(call(nil, "refute", lit, node(syntax.KindIdentifier)))
	require.True(t, ok)
	assert.Same(t, lit, caps.Get("literal"))

	_, ok = shape.Match(call(nil, "refute", node(syntax.KindTrue), node(syntax.KindIdentifier)))
	assert.False(t, ok)

	var empty Captures
	assert.Nil(t, empty.Get("missing"))
}
