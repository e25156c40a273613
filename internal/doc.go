// Package internal provides the core functionality of the minitest linter.
//
// Engine parses each Ruby file once with tree-sitter and runs every enabled
// LintRule over the resulting syntax.File concurrently. Issues silenced by
// `# nolint` comments are dropped and the rest are returned in source order.
//
// Key components:
//
// Engine: coordinates parsing, rule execution, nolint filtering, the optional
// on-disk Cache and watch mode.
//
// LintRule: the contract every rule implements. Rules are registered by name
// in allRuleConstructors and configured with a severity; "off" disables them.
//
// Cache: per-file issue cache validated against the content hash and the
// active rule set.
//
// Usage:
//
//	engine, err := internal.NewEngine(".", nil, internal.WithLogger(logger))
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("test/user_test.rb")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("%s: %s\n", issue.Start, issue.Message)
//	}
package internal
