// Copyright © 2026 The rpmspec-ls authors

package lsp

import (
	"context"
	"fmt"
	"sync"

	"github.com/rpmdev/rpmspec-ls/speclint"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// lintSource tags rpmlint findings in the editor's problems view so
// they are distinguishable from the external server's.
const lintSource = "rpmlint"

// Publisher owns the diagnostics for every open document. It merges two
// streams per URI: rpmlint runs managed here, and relayed findings from
// the external language server. Each completed lint run replaces that
// file's rpmlint diagnostics wholesale, so concurrent runs resolve to
// whichever finished last.
type Publisher struct {
	notify func(method string, params any)

	mu          sync.Mutex
	active      bool
	lintDiags   map[string][]protocol.Diagnostic
	serverDiags map[string][]protocol.Diagnostic

	// wg tracks in-flight lint runs so tests can wait for them.
	wg sync.WaitGroup
}

// NewPublisher creates a publisher that sends notifications through fn.
func NewPublisher(fn func(method string, params any)) *Publisher {
	return &Publisher{
		notify:      fn,
		lintDiags:   make(map[string][]protocol.Diagnostic),
		serverDiags: make(map[string][]protocol.Diagnostic),
	}
}

// Activate arms the publisher. Until this is called lint requests are
// dropped: the sanity check has not vouched for the executable yet.
func (p *Publisher) Activate() {
	p.mu.Lock()
	p.active = true
	p.mu.Unlock()
}

// Active reports whether lint runs are being accepted.
func (p *Publisher) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Lint schedules an asynchronous rpmlint run for the document and
// publishes the result when it completes. A spawn failure clears the
// file's rpmlint diagnostics and surfaces a warning; stale results from
// a previous run never linger past a completed one.
func (p *Publisher) Lint(ctx context.Context, r speclint.Runner, lc speclint.Context, doc *Document) {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()
	if !active || doc == nil {
		return
	}

	uri := doc.URI
	path := uriToPath(uri)
	lineCount := doc.LineCount()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		diags, err := speclint.Run(ctx, r, lc, path, lineCount)
		if err != nil {
			log.Warningf("rpmlint run failed for %s: %s", path, err)
			p.setLint(uri, nil)
			p.warn(fmt.Sprintf("rpmlint failed to run (%s): results for %s are stale", err, path))
			return
		}
		p.setLint(uri, convertDiagnostics(diags, doc))
	}()
}

// SetServerDiagnostics stores diagnostics relayed from the external
// language server and republishes the merged set for the file.
func (p *Publisher) SetServerDiagnostics(params *protocol.PublishDiagnosticsParams) {
	p.mu.Lock()
	p.serverDiags[params.URI] = params.Diagnostics
	p.mu.Unlock()
	p.publish(params.URI)
}

// ClearLint drops the rpmlint diagnostics for a file and republishes.
// Used when linting is switched off mid-session.
func (p *Publisher) ClearLint(uri string) {
	p.setLint(uri, nil)
}

// Drop forgets everything known about a closed file and clears its
// diagnostics in the editor.
func (p *Publisher) Drop(uri string) {
	p.mu.Lock()
	delete(p.lintDiags, uri)
	delete(p.serverDiags, uri)
	p.mu.Unlock()
	p.notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
}

// wait blocks until all in-flight lint runs have published.
func (p *Publisher) wait() {
	p.wg.Wait()
}

func (p *Publisher) setLint(uri string, diags []protocol.Diagnostic) {
	p.mu.Lock()
	if diags == nil {
		delete(p.lintDiags, uri)
	} else {
		p.lintDiags[uri] = diags
	}
	p.mu.Unlock()
	p.publish(uri)
}

// publish sends the merged rpmlint and server diagnostics for a file.
// The slice is never nil so editors that treat null as "keep previous"
// still clear properly.
func (p *Publisher) publish(uri string) {
	p.mu.Lock()
	merged := make([]protocol.Diagnostic, 0, len(p.lintDiags[uri])+len(p.serverDiags[uri]))
	merged = append(merged, p.lintDiags[uri]...)
	merged = append(merged, p.serverDiags[uri]...)
	p.mu.Unlock()

	p.notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: merged,
	})
}

func (p *Publisher) warn(msg string) {
	p.notify(protocol.ServerWindowShowMessage, &protocol.ShowMessageParams{
		Type:    protocol.MessageTypeWarning,
		Message: msg,
	})
}

// convertDiagnostics maps rpmlint findings onto LSP diagnostics. Each
// finding covers its whole line: rpmlint reports no column information.
func convertDiagnostics(diags []speclint.Diagnostic, doc *Document) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		sev := mapSeverity(d.Severity)
		out = append(out, protocol.Diagnostic{
			Range:    fullLineRange(doc, d.Line),
			Severity: &sev,
			Source:   strPtr(lintSource),
			Message:  d.Message,
		})
	}
	return out
}

// mapSeverity converts a speclint.Severity to a protocol.DiagnosticSeverity.
func mapSeverity(sev speclint.Severity) protocol.DiagnosticSeverity {
	if sev == speclint.SeverityError {
		return protocol.DiagnosticSeverityError
	}
	return protocol.DiagnosticSeverityWarning
}

func strPtr(s string) *string {
	return &s
}
