package nolint

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/gnolang/mtlin/internal/syntax"
)

const nolintDirective = "nolint"

// Manager manages nolint scopes and checks if a position is nolinted.
type Manager struct {
	// scopes maps filename to a slice of nolint scopes.
	scopes map[string][]nolintScope
}

// nolintScope is an inclusive line range in which nolint applies.
type nolintScope struct {
	rules map[string]struct{}
	start int
	end   int
}

// ParseComments collects the nolint comments of f. Comments that look like
// nolint but are malformed are ignored.
func ParseComments(f *syntax.File) *Manager {
	manager := Manager{
		scopes: make(map[string][]nolintScope, 1),
	}
	if f == nil {
		return &manager
	}

	stmts := indexStatementsByLine(f)
	firstCode := firstCodeLine(f, stmts)

	for _, comment := range f.Comments {
		ns, err := parseComment(f, comment, stmts, firstCode)
		if err != nil {
			continue
		}
		manager.scopes[f.Name] = append(manager.scopes[f.Name], ns)
	}
	return &manager
}

// parseComment parses a single nolint comment and determines its scope.
func parseComment(f *syntax.File, comment *syntax.Node, stmts map[int]int, firstCode int) (nolintScope, error) {
	var ns nolintScope

	text := strings.TrimSpace(strings.TrimPrefix(f.Text(comment), "#"))
	if !strings.HasPrefix(text, nolintDirective) {
		return ns, fmt.Errorf("not a nolint comment")
	}
	rest := text[len(nolintDirective):]

	// `# nolint` silences every rule, `# nolint:a,b` only the listed ones
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nolint comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)

	pos := f.Position(comment.Range.Start)

	// before the first line of code: whole file
	if firstCode == 0 || pos.Line < firstCode {
		ns.start = 1
		ns.end = f.LineCount()
		return ns, nil
	}

	if isInlineComment(f, comment) {
		ns.start = pos.Line
		ns.end = pos.Line
		if end, ok := stmts[pos.Line]; ok {
			ns.end = end
		}
		return ns, nil
	}

	// standalone comment: the comment line through the statement that follows
	next := pos.Line + 1
	for next <= f.LineCount() && isBlankOrComment(f.Line(next)) {
		next++
	}
	if end, ok := stmts[next]; ok {
		ns.start = pos.Line
		ns.end = end
		return ns, nil
	}

	ns.start = pos.Line
	ns.end = pos.Line
	return ns, nil
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// containerTypes are grammar nodes that group statements without being one.
// A body_statement starts at its first statement, so indexing it would
// stretch that statement's scope over the whole body.
var containerTypes = map[string]bool{
	"body_statement": true,
	"block_body":     true,
	"then":           true,
	"else":           true,
	"do":             true,
	"begin_block":    true,
	"end_block":      true,
}

// indexStatementsByLine maps each line to the last line of the outermost
// statement that begins at the line's first non-blank column.
func indexStatementsByLine(f *syntax.File) map[int]int {
	stmts := make(map[int]int)
	syntax.Inspect(f.Root, func(n *syntax.Node) bool {
		if n.Kind == syntax.KindProgram || containerTypes[n.Type] {
			return true
		}
		if n.Kind == syntax.KindComment || n.Range.Empty() {
			return false
		}
		start := f.Position(n.Range.Start)
		if !startsLine(f, start) {
			return true
		}
		end := f.Position(n.Range.End).Line
		if prev, ok := stmts[start.Line]; !ok || end > prev {
			stmts[start.Line] = end
		}
		return true
	})
	return stmts
}

func startsLine(f *syntax.File, pos token.Position) bool {
	line := f.Line(pos.Line)
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	return pos.Column == indent+1
}

func firstCodeLine(f *syntax.File, stmts map[int]int) int {
	first := 0
	for line := range stmts {
		if first == 0 || line < first {
			first = line
		}
	}
	return first
}

// isInlineComment reports whether code precedes the comment on its line.
func isInlineComment(f *syntax.File, comment *syntax.Node) bool {
	pos := f.Position(comment.Range.Start)
	line := f.Line(pos.Line)
	if pos.Column-1 > len(line) {
		return false
	}
	return strings.TrimSpace(line[:pos.Column-1]) != ""
}

func isBlankOrComment(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, "#")
}

// IsNolint checks if a given position and rule are nolinted.
func (m *Manager) IsNolint(pos token.Position, ruleName string) bool {
	scopes, exists := m.scopes[pos.Filename]
	if !exists {
		return false
	}
	for _, ns := range scopes {
		if pos.Line < ns.start || pos.Line > ns.end {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
