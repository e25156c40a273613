// Package ruby builds syntax trees for Ruby source files with tree-sitter.
package ruby

import (
	"context"
	"fmt"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/gnolang/mtlin/internal/syntax"
)

// Extension is the file extension handled by this parser.
const Extension = ".rb"

var kinds = map[string]syntax.Kind{
	"program":       syntax.KindProgram,
	"call":          syntax.KindCall,
	"method_call":   syntax.KindCall,
	"argument_list": syntax.KindArgumentList,
	"true":          syntax.KindTrue,
	"false":         syntax.KindFalse,
	"nil":           syntax.KindNil,
	"identifier":    syntax.KindIdentifier,
	"constant":      syntax.KindConstant,
	"string":        syntax.KindString,
	"integer":       syntax.KindNumber,
	"float":         syntax.KindNumber,
	"rational":      syntax.KindNumber,
	"simple_symbol": syntax.KindSymbol,
	"symbol":        syntax.KindSymbol,
	"comment":       syntax.KindComment,
	"ERROR":         syntax.KindError,
}

// Parse parses src and converts the tree-sitter tree into a syntax.File.
// Syntax errors do not fail the parse; they surface as KindError nodes, and
// tokens inserted during recovery as KindMissing nodes.
func Parse(ctx context.Context, filename string, src []byte) (*syntax.File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(ruby.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	defer tree.Close()

	b := &builder{src: src}
	root, err := b.convert(tree.RootNode())
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", filename, err)
	}
	file := syntax.NewFile(filename, src, root, b.comments)
	file.HasErrors = tree.RootNode().HasError()
	return file, nil
}

type builder struct {
	src      []byte
	comments []*syntax.Node
}

// nodeKey identifies a tree-sitter node among its siblings.
type nodeKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

func (b *builder) convert(n *sitter.Node) (*syntax.Node, error) {
	if n == nil {
		return nil, nil
	}

	rng, err := nodeRange(n)
	if err != nil {
		return nil, err
	}

	kind, ok := kinds[n.Type()]
	if !ok {
		kind = syntax.KindOther
	}
	if n.IsMissing() {
		kind = syntax.KindMissing
	}
	node := &syntax.Node{
		Kind:  kind,
		Type:  n.Type(),
		Range: rng,
	}

	converted := make(map[nodeKey]*syntax.Node)
	// anonymous tokens are dropped unless the parser had to invent them
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if !child.IsNamed() && !child.IsMissing() {
			continue
		}
		c, err := b.convert(child)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		if c.Kind == syntax.KindComment {
			b.comments = append(b.comments, c)
		}
		node.Children = append(node.Children, c)
		converted[keyOf(child)] = c
	}

	if kind == syntax.KindCall {
		call, err := b.callView(n, converted)
		if err != nil {
			return nil, err
		}
		node.Call = call
	}
	return node, nil
}

// callView decomposes a call node. Newer grammars emit a single `call` node
// with receiver, method and arguments fields. Older ones wrap a `call`
// holding receiver and method in a `method_call` that carries the arguments.
func (b *builder) callView(n *sitter.Node, children map[nodeKey]*syntax.Node) (*syntax.Call, error) {
	method := n.ChildByFieldName("method")
	if method == nil {
		return nil, nil
	}

	call := &syntax.Call{}
	if method.Type() == "call" {
		inner := children[keyOf(method)]
		if inner == nil || inner.Call == nil {
			return nil, nil
		}
		call.Receiver = inner.Call.Receiver
		call.Method = inner.Call.Method
		call.MethodRange = inner.Call.MethodRange
	} else {
		methodRange, err := nodeRange(method)
		if err != nil {
			return nil, err
		}
		call.Method = method.Content(b.src)
		call.MethodRange = methodRange
		if receiver := n.ChildByFieldName("receiver"); receiver != nil {
			call.Receiver = children[keyOf(receiver)]
		}
	}

	args := n.ChildByFieldName("arguments")
	if args == nil || args.Type() != "argument_list" {
		return call, nil
	}
	list := children[keyOf(args)]
	if list == nil {
		return call, nil
	}
	if first := args.Child(0); first != nil && first.Type() == "(" {
		call.HasParens = true
	}
	for _, arg := range list.Children {
		if arg.Kind == syntax.KindComment || arg.Kind == syntax.KindMissing {
			continue
		}
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

func nodeRange(n *sitter.Node) (syntax.Range, error) {
	start, err := safecast.Conv[int](n.StartByte())
	if err != nil {
		return syntax.Range{}, err
	}
	end, err := safecast.Conv[int](n.EndByte())
	if err != nil {
		return syntax.Range{}, err
	}
	return syntax.Range{Start: start, End: end}, nil
}
