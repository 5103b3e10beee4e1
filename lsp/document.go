// Copyright © 2026 The rpmspec-ls authors

package lsp

import (
	"strings"
	"sync"
)

// Document represents an open spec file tracked by the server.
type Document struct {
	mu         sync.Mutex
	URI        string
	LanguageID string
	Version    int32
	Content    string
}

// LineCount returns the number of lines in the document. An empty
// document counts as a single empty line, matching how editors model
// buffers.
func (d *Document) LineCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.Count(d.Content, "\n") + 1
}

// Snapshot returns the current content under the document lock.
func (d *Document) Snapshot() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Content
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// relevant reports whether a document belongs to this server: it must
// carry the rpmspec language identifier and live on the local
// filesystem. Untitled buffers and other languages are skipped.
func relevant(uri, langID string) bool {
	return langID == languageID && strings.HasPrefix(uri, "file://")
}

// Open adds a document to the store. Documents of other languages or
// non-file schemes are not tracked and nil is returned.
func (s *DocumentStore) Open(uri, langID string, version int32, content string) *Document {
	if !relevant(uri, langID) {
		return nil
	}
	doc := &Document{
		URI:        uri,
		LanguageID: langID,
		Version:    version,
		Content:    content,
	}
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a tracked document's content (full sync). Returns nil
// for documents the store never opened.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.RLock()
	doc, ok := s.docs[uri]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns a snapshot of the open documents.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		all = append(all, doc)
	}
	return all
}
