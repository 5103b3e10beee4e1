// Copyright © 2026 The rpmspec-ls authors

package lsp

import (
	"context"
	"path/filepath"

	"github.com/rpmdev/rpmspec-ls/speclint"
	"github.com/tliron/glsp"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDidOpen handles the textDocument/didOpen notification.
// Opening a spec file triggers a lint run and is forwarded to the
// external server when the bridge is up.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		params.TextDocument.LanguageID,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	if doc == nil {
		return nil
	}
	s.lint(doc)
	if b := s.currentBridge(); b != nil {
		b.DidOpen(context.Background(), doc.URI, doc.LanguageID, doc.Version, doc.Content)
	}
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
// Edits update the tracked content and reach the external server, but
// rpmlint reads from disk and only runs on open and save.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)
	if doc == nil {
		return nil
	}
	if b := s.currentBridge(); b != nil {
		b.DidChange(context.Background(), doc.URI, doc.Version, content)
	}
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification by
// re-linting the saved file.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}
	s.lint(doc)
	if b := s.currentBridge(); b != nil {
		b.DidSave(context.Background(), doc.URI)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
// Diagnostics for the closed file are cleared.
func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.captureNotify(ctx)
	uri := params.TextDocument.URI
	if s.docs.Get(uri) == nil {
		return nil
	}
	s.docs.Close(uri)
	s.pub.Drop(uri)
	if b := s.currentBridge(); b != nil {
		b.DidClose(context.Background(), uri)
	}
	return nil
}

// lint schedules an rpmlint run for the document, honoring the current
// configuration. Disabling lint mid-session clears previous findings.
// Sessions without a workspace root run rpmlint from the document's own
// directory.
func (s *Server) lint(doc *Document) {
	cfg := s.config()
	if !cfg.LintEnabled {
		s.pub.ClearLint(doc.URI)
		return
	}
	dir := s.rootPath
	if dir == "" {
		dir = filepath.Dir(uriToPath(doc.URI))
	}
	lc := speclint.NewContext(cfg.RpmlintPath, dir)
	s.pub.Lint(context.Background(), s.runner, lc, doc)
}
