// Copyright © 2026 The rpmspec-ls authors

// Package diagnostic provides Rust-style annotated rendering of lint
// findings for CLI output. It is intentionally independent of the
// speclint/ package so that it can be used by any CLI command without
// creating import cycles.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a source line to highlight in the diagnostic. Lint
// findings carry no column information, so the whole line is
// underlined.
type Span struct {
	File  string // path for reading source; display name if unreadable
	Line  int    // 1-based line number; 0 = whole-file finding
	Label string // text shown under the underline
}

// Diagnostic represents a single finding with optional source
// annotation and trailing notes.
type Diagnostic struct {
	Severity Severity
	Message  string
	Spans    []Span
	Notes    []string // "= note:" lines
}
