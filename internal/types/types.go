package types

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/gnolang/mtlin/internal/syntax"
)

// Issue represents a lint issue found in the code base.
type Issue struct {
	Rule       string
	Category   string
	Filename   string
	Message    string
	Suggestion string
	Note       string
	Start      token.Position
	End        token.Position
	Range      syntax.Range
	Edits      []TextEdit
	Severity   Severity
}

// Fixable reports whether the issue carries an automatic correction.
func (i Issue) Fixable() bool {
	return len(i.Edits) > 0
}

// TextEdit replaces the bytes of Range in the original source with Replacement.
type TextEdit struct {
	Range       syntax.Range
	Replacement string
}

// Severity represents the severity level of a lint issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a configuration value such as "warning" into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "off", "none":
		return SeverityOff, nil
	default:
		return SeverityOff, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalText encodes the severity as its lower-case name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText decodes a severity name. It is used by both the yaml and toml decoders.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ConfigRule represents a configuration rule.
type ConfigRule struct {
	Severity Severity `yaml:"severity" toml:"severity"`
}
