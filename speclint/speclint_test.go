// Copyright © 2026 The rpmspec-ls authors

package speclint

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputIgnoresForeignLines(t *testing.T) {
	out := strings.Join([]string{
		"rpmlint session starts",
		"/other/file.spec:3: W: not our file",
		" /ws/pkg.spec:3: W: leading space breaks the anchor",
		"0 packages and 1 specfiles checked; 0 errors, 0 warnings",
	}, "\n")
	diags := ParseOutput("/ws/pkg.spec", 10, strings.NewReader(out))
	assert.Empty(t, diags)
}

func TestParseOutputWellFormed(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantLine int
		wantSev  Severity
		wantMsg  string
	}{
		{"warning with line", "/ws/pkg.spec:3: W: macro-in-comment", 2, SeverityWarning, "macro-in-comment"},
		{"error with line", "/ws/pkg.spec:5: E: specfile-error", 4, SeverityError, "specfile-error"},
		{"no spaces", "/ws/pkg.spec:2:W:compact form", 1, SeverityWarning, "compact form"},
		{"missing line number", "/ws/pkg.spec: E: no-cleaning-of-buildroot", 0, SeverityError, "no-cleaning-of-buildroot"},
		{"unknown severity char", "/ws/pkg.spec:4: I: informational", 3, SeverityWarning, "informational"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := ParseOutput("/ws/pkg.spec", 10, strings.NewReader(tt.line))
			require.Len(t, diags, 1)
			assert.Equal(t, "/ws/pkg.spec", diags[0].File)
			assert.Equal(t, tt.wantLine, diags[0].Line)
			assert.Equal(t, tt.wantSev, diags[0].Severity)
			assert.Equal(t, tt.wantMsg, diags[0].Message)
		})
	}
}

func TestParseOutputClampsStaleLines(t *testing.T) {
	t.Run("beyond end of document", func(t *testing.T) {
		diags := ParseOutput("/ws/pkg.spec", 5, strings.NewReader("/ws/pkg.spec:99: W: stale"))
		require.Len(t, diags, 1)
		assert.Equal(t, 4, diags[0].Line)
	})
	t.Run("line zero from linter", func(t *testing.T) {
		diags := ParseOutput("/ws/pkg.spec", 5, strings.NewReader("/ws/pkg.spec:0: W: odd"))
		require.Len(t, diags, 1)
		assert.Equal(t, 0, diags[0].Line)
	})
	t.Run("empty document", func(t *testing.T) {
		diags := ParseOutput("/ws/pkg.spec", 0, strings.NewReader("/ws/pkg.spec:3: E: anything"))
		require.Len(t, diags, 1)
		assert.Equal(t, 0, diags[0].Line)
	})
}

func TestParseOutputEmptyMessageFallback(t *testing.T) {
	diags := ParseOutput("/ws/pkg.spec", 5, strings.NewReader("/ws/pkg.spec:2: W:"))
	require.Len(t, diags, 1)
	assert.Equal(t, defaultMessage, diags[0].Message)
}

func TestParseOutputPathIsEscaped(t *testing.T) {
	// Regex metacharacters in the path must match literally.
	path := "/ws/pkg(1).spec"
	diags := ParseOutput(path, 5, strings.NewReader(path+":1: W: found"))
	require.Len(t, diags, 1)
	assert.Equal(t, path, diags[0].File)

	// A path that would only match with an unescaped pattern must not.
	diags = ParseOutput(path, 5, strings.NewReader("/ws/pkg1.spec:1: W: found"))
	assert.Empty(t, diags)
}

func TestParseOutputPreservesStreamOrder(t *testing.T) {
	out := strings.Join([]string{
		"/ws/pkg.spec:9: W: third",
		"/ws/pkg.spec:1: E: first",
		"/ws/pkg.spec:1: E: first", // duplicates are kept
	}, "\n")
	diags := ParseOutput("/ws/pkg.spec", 10, strings.NewReader(out))
	require.Len(t, diags, 3)
	assert.Equal(t, "third", diags[0].Message)
	assert.Equal(t, "first", diags[1].Message)
	assert.Equal(t, "first", diags[2].Message)
}

func TestParseOutputIdempotent(t *testing.T) {
	out := "/ws/pkg.spec:3: W: trailing whitespace\n/ws/pkg.spec: E: macro undefined\n"
	first := ParseOutput("/ws/pkg.spec", 5, strings.NewReader(out))
	second := ParseOutput("/ws/pkg.spec", 5, strings.NewReader(out))
	assert.Equal(t, first, second)
}

// TestParseOutputScenario is the end-to-end parse scenario: a 5-line
// document, one positioned warning, one whole-file error, and one line
// of unrelated chatter.
func TestParseOutputScenario(t *testing.T) {
	out := "/ws/pkg.spec:3:W: trailing whitespace\n" +
		"/ws/pkg.spec:E: macro undefined\n" +
		"unrelated text\n"
	diags := ParseOutput("/ws/pkg.spec", 5, strings.NewReader(out))
	require.Len(t, diags, 2)

	assert.Equal(t, 2, diags[0].Line)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, "trailing whitespace", diags[0].Message)

	assert.Equal(t, 0, diags[1].Line)
	assert.Equal(t, SeverityError, diags[1].Severity)
	assert.Equal(t, "macro undefined", diags[1].Message)
}

func TestSeverityJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatJSON(&buf, []Diagnostic{
			{File: "/ws/pkg.spec", Line: 2, Message: "m", Severity: SeverityError},
		}))
		assert.Contains(t, buf.String(), `"error"`)
	})
	t.Run("unset marshals as warning", func(t *testing.T) {
		b, err := Severity(0).MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, `"warning"`, string(b))
	})
	t.Run("unknown string rejected", func(t *testing.T) {
		var s Severity
		assert.Error(t, s.UnmarshalJSON([]byte(`"fatal"`)))
	})
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{File: "/ws/pkg.spec", Line: 2, Message: "bad macro", Severity: SeverityError}
	assert.Equal(t, "/ws/pkg.spec:3: error: bad macro", d.String())
}

func TestNewContext(t *testing.T) {
	lc := NewContext("rpmlint", "/ws")
	assert.Equal(t, "rpmlint", lc.Executable)
	assert.Equal(t, "/ws", lc.Dir)
	require.Len(t, lc.Env, 2)
	assert.Equal(t, "LANG=C", lc.Env[0])
	assert.True(t, strings.HasPrefix(lc.Env[1], "PATH="))
}
