// Copyright © 2026 The rpmspec-ls authors

package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line numbers are always small positive ints
}

// fullLineRange returns the range spanning the whole 0-based line of
// the document. When the document is gone or the line is out of range
// the range degenerates to the start of the line.
func fullLineRange(doc *Document, line int) protocol.Range {
	start := protocol.Position{Line: safeUint(line), Character: 0}
	end := start
	if doc != nil {
		if text, ok := lineText(doc.Snapshot(), line); ok {
			end.Character = safeUint(len(text))
		}
	}
	return protocol.Range{Start: start, End: end}
}

// lineText returns the 0-based line of content, without its newline.
func lineText(content string, line int) (string, bool) {
	if line < 0 {
		return "", false
	}
	lines := strings.Split(content, "\n")
	if line >= len(lines) {
		return "", false
	}
	return lines[line], true
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
