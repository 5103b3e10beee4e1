// Copyright © 2026 The rpmspec-ls authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpmdev/rpmspec-ls/diagnostic"
	"github.com/rpmdev/rpmspec-ls/speclint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExpandArgs_Passthrough(t *testing.T) {
	out, err := expandArgs([]string{"a.spec", "b.spec"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.spec", "b.spec"}, out)
}

func TestExpandArgs_Recursive(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.spec", "")
	b := writeFile(t, dir, "sub/b.spec", "")
	writeFile(t, dir, "sub/notes.txt", "")

	out, err := expandArgs([]string{dir + "/..."})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, out)
}

func TestExpandArgs_Mixed(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.spec", "")

	out, err := expandArgs([]string{"direct.spec", dir + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{"direct.spec", a}, out)
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "a.spec", "Name: pkg\nRelease: 1\n")
	n, err := countLines(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	path = writeFile(t, dir, "b.spec", "Name: pkg")
	n, err = countLines(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = countLines(filepath.Join(dir, "missing.spec"))
	assert.Error(t, err)
}

func TestLintDiagToDiagnostic(t *testing.T) {
	d := lintDiagToDiagnostic(speclint.Diagnostic{
		File:     "/ws/pkg.spec",
		Line:     4,
		Message:  "macro-in-comment",
		Severity: speclint.SeverityWarning,
	})
	assert.Equal(t, diagnostic.SeverityWarning, d.Severity)
	assert.Equal(t, "macro-in-comment", d.Message)
	require.Len(t, d.Spans, 1)
	assert.Equal(t, "/ws/pkg.spec", d.Spans[0].File)
	assert.Equal(t, 5, d.Spans[0].Line, "renderer lines are 1-based")

	d = lintDiagToDiagnostic(speclint.Diagnostic{
		File:     "/ws/pkg.spec",
		Message:  "specfile-error",
		Severity: speclint.SeverityError,
	})
	assert.Equal(t, diagnostic.SeverityError, d.Severity)
}

func TestConfigFromViperDefaults(t *testing.T) {
	cfg := configFromViper()
	assert.True(t, cfg.LintEnabled)
	assert.True(t, cfg.ServerEnabled)
	assert.Equal(t, "rpmlint", cfg.RpmlintPath)
	assert.Equal(t, "rpm_lsp_server", cfg.ServerPath)
}

func TestColorMode(t *testing.T) {
	orig := colorFlag
	defer func() { colorFlag = orig }()

	colorFlag = "always"
	assert.Equal(t, diagnostic.ColorAlways, colorMode())
	colorFlag = "never"
	assert.Equal(t, diagnostic.ColorNever, colorMode())
	colorFlag = "auto"
	assert.Equal(t, diagnostic.ColorAuto, colorMode())
}
