// Copyright © 2026 The rpmspec-ls authors

package cmd

import (
	"os"

	"github.com/rpmdev/rpmspec-ls/diagnostic"
	"github.com/rpmdev/rpmspec-ls/speclint"
)

func colorMode() diagnostic.ColorMode {
	switch colorFlag {
	case "always":
		return diagnostic.ColorAlways
	case "never":
		return diagnostic.ColorNever
	default:
		return diagnostic.ColorAuto
	}
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}

// lintDiagToDiagnostic converts a speclint.Diagnostic for display.
func lintDiagToDiagnostic(ld speclint.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Message:  ld.Message,
	}
	if ld.Severity == speclint.SeverityError {
		d.Severity = diagnostic.SeverityError
	}
	// speclint lines are 0-based; the renderer wants 1-based.
	d.Spans = append(d.Spans, diagnostic.Span{
		File: ld.File,
		Line: ld.Line + 1,
	})
	return d
}

// renderLintDiagnostics renders lint findings to stderr.
func renderLintDiagnostics(diags []speclint.Diagnostic) {
	var ds []diagnostic.Diagnostic
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	r := newRenderer()
	_ = r.RenderAll(os.Stderr, ds)
}
