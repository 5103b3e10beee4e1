// Copyright © 2026 The rpmspec-ls authors

// Package speclint runs rpmlint against RPM spec files and converts its
// textual output into structured diagnostics.
//
// The package does no spec-file analysis of its own: rpmlint is the sole
// source of findings. speclint owns the subprocess contract (invocation,
// environment, working directory), the line-oriented output parser, and
// the probes that decide whether the external tools are usable at all.
package speclint

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// defaultMessage is reported when a matched output line carries no
// message body. The parser's pattern makes this unlikely, but rpmlint's
// output format is not a contract we control.
const defaultMessage = "problem reported by rpmlint"

var tracer = otel.Tracer("github.com/rpmdev/rpmspec-ls/speclint")

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// mapSeverityChar maps rpmlint's single-character severity tag to a
// Severity. Anything other than "E" is reported as a warning, including
// tags this tool has never seen.
func mapSeverityChar(c string) Severity {
	if c == "E" {
		return SeverityError
	}
	return SeverityWarning
}

// Diagnostic is a single finding parsed from rpmlint output.
type Diagnostic struct {
	// File is the absolute path of the linted spec file.
	File string `json:"file"`

	// Line is the 0-based line index, clamped into the document. rpmlint
	// reports 1-based lines and omits the number for whole-file findings.
	Line int `json:"line"`

	// Message is the human-readable description of the problem.
	Message string `json:"message"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`
}

// String returns the diagnostic in file:line format with a 1-based line.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line+1, d.Severity, d.Message)
}

// Context carries everything needed to launch rpmlint (or the language
// server) as a subprocess. Contexts are built fresh from configuration
// for every invocation and are not reused.
type Context struct {
	// Executable is the path or bare name of the binary to spawn.
	Executable string

	// Dir is the working directory for the subprocess, normally the
	// owning workspace root.
	Dir string

	// Env is the subprocess environment.
	Env []string
}

// NewContext builds a spawn context for executable rooted at dir. The
// environment is pinned to LANG=C so rpmlint's output stays parseable
// regardless of the user's locale; PATH is inherited so bare executable
// names resolve.
func NewContext(executable, dir string) Context {
	return Context{
		Executable: executable,
		Dir:        dir,
		Env: []string{
			"LANG=C",
			"PATH=" + os.Getenv("PATH"),
		},
	}
}

// linePattern builds the output matcher for a single file. Only lines
// beginning with the exact (escaped) file path are considered; rpmlint's
// summary lines, continuation text, and findings for other files all
// fail the anchor and are dropped.
//
// Matched shape: <path>:[<line>:] <sev-char>: <message>
func linePattern(path string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(path) + `:(?:(\d+):)?\s*(\w):\s*(.*)$`)
}

// ParseOutput reads rpmlint output for the file at path and returns the
// findings in stream order. lineCount is the current line count of the
// document being linted; reported line numbers are clamped into it
// because the buffer may have changed since the file was last written.
func ParseOutput(path string, lineCount int, r io.Reader) []Diagnostic {
	pattern := linePattern(path)
	var diags []Diagnostic

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		m := pattern.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		line := 0
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				line = n - 1
			}
		}
		line = clampLine(line, lineCount)

		msg := m[3]
		if msg == "" {
			msg = defaultMessage
		}

		diags = append(diags, Diagnostic{
			File:     path,
			Line:     line,
			Message:  msg,
			Severity: mapSeverityChar(m[2]),
		})
	}
	return diags
}

// clampLine forces a 0-based line index into [0, lineCount-1]. An empty
// document clamps everything to line 0.
func clampLine(line, lineCount int) int {
	if line < 0 {
		return 0
	}
	if lineCount <= 0 {
		return 0
	}
	if line > lineCount-1 {
		return lineCount - 1
	}
	return line
}

// Run lints the file at path with the given spawn context and returns
// the parsed findings. The subprocess's exit code is never inspected:
// rpmlint exits non-zero whenever it reports anything, so only a spawn
// failure is an error here. The diagnostic slice is complete when Run
// returns; callers replace any previous result wholesale.
func Run(ctx context.Context, r Runner, lc Context, path string, lineCount int) ([]Diagnostic, error) {
	ctx, span := tracer.Start(ctx, "speclint.Run")
	span.SetAttributes(
		attribute.String("rpmlint.executable", lc.Executable),
		attribute.String("rpmlint.file", path),
	)
	defer span.End()

	proc, err := r.Start(ctx, lc, path)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", lc.Executable, err)
	}
	diags := ParseOutput(path, lineCount, proc.Stdout())
	_ = proc.Wait()
	span.SetAttributes(attribute.Int("rpmlint.findings", len(diags)))
	return diags, nil
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}
