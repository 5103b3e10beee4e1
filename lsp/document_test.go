// Copyright © 2026 The rpmspec-ls authors

package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStoreFiltering(t *testing.T) {
	s := NewDocumentStore()

	t.Run("rpmspec file tracked", func(t *testing.T) {
		doc := s.Open("file:///ws/pkg.spec", "rpmspec", 1, "Name: pkg\n")
		require.NotNil(t, doc)
		assert.Same(t, doc, s.Get("file:///ws/pkg.spec"))
	})
	t.Run("other language skipped", func(t *testing.T) {
		assert.Nil(t, s.Open("file:///ws/main.go", "go", 1, "package main\n"))
		assert.Nil(t, s.Get("file:///ws/main.go"))
	})
	t.Run("untitled buffer skipped", func(t *testing.T) {
		assert.Nil(t, s.Open("untitled:Untitled-1", "rpmspec", 1, ""))
	})
}

func TestDocumentStoreChange(t *testing.T) {
	s := NewDocumentStore()
	s.Open("file:///ws/pkg.spec", "rpmspec", 1, "Name: pkg\n")

	doc := s.Change("file:///ws/pkg.spec", 2, "Name: other\n")
	require.NotNil(t, doc)
	assert.Equal(t, int32(2), doc.Version)
	assert.Equal(t, "Name: other\n", doc.Snapshot())

	// Changes to untracked documents are not adopted.
	assert.Nil(t, s.Change("file:///ws/main.go", 1, "package main\n"))
	assert.Nil(t, s.Get("file:///ws/main.go"))
}

func TestDocumentStoreCloseAndAll(t *testing.T) {
	s := NewDocumentStore()
	s.Open("file:///ws/a.spec", "rpmspec", 1, "")
	s.Open("file:///ws/b.spec", "rpmspec", 1, "")
	assert.Len(t, s.All(), 2)

	s.Close("file:///ws/a.spec")
	assert.Nil(t, s.Get("file:///ws/a.spec"))
	assert.Len(t, s.All(), 1)
}

func TestDocumentLineCount(t *testing.T) {
	assert.Equal(t, 1, testDoc("file:///a.spec", "").LineCount())
	assert.Equal(t, 1, testDoc("file:///a.spec", "Name: pkg").LineCount())
	assert.Equal(t, 2, testDoc("file:///a.spec", "Name: pkg\n").LineCount())
	assert.Equal(t, 3, testDoc("file:///a.spec", "a\nb\nc").LineCount())
}

func TestFullLineRange(t *testing.T) {
	doc := testDoc("file:///a.spec", "Name: pkg\nRelease: 1\n")

	r := fullLineRange(doc, 1)
	assert.Equal(t, safeUint(1), r.Start.Line)
	assert.Equal(t, safeUint(0), r.Start.Character)
	assert.Equal(t, safeUint(len("Release: 1")), r.End.Character)

	// Out-of-range lines degenerate to a zero-width range.
	r = fullLineRange(doc, 99)
	assert.Equal(t, r.Start, r.End)
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "/ws/pkg.spec", uriToPath("file:///ws/pkg.spec"))
	assert.Equal(t, "plain", uriToPath("plain"))
	assert.Equal(t, "file:///ws", pathToURI("/ws"))
	assert.Equal(t, "rel", pathToURI("rel"))
}
