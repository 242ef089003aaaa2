// Copyright © 2024 The ELPS authors

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
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// utf16Len returns the length of s in UTF-16 code units, the unit of LSP
// character offsets.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// endPosition returns the position just past the last character of text.
// CRLF, CR and LF all end a line.
func endPosition(text string) protocol.Position {
	lines := splitLines(text)
	last := lines[len(lines)-1]
	return protocol.Position{Line: safeUint(len(lines) - 1), Character: safeUint(utf16Len(last))}
}

// splitLines splits text at CRLF, CR and LF.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	return append(lines, text[start:])
}

// trimmedRange returns the UTF-16 offsets of the non-blank part of line.
func trimmedRange(line string) (start, end int) {
	trimmed := strings.TrimLeft(line, " \t")
	start = utf16Len(line[:len(line)-len(trimmed)])
	end = start + utf16Len(strings.TrimRight(trimmed, " \t\r"))
	return start, end
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}
