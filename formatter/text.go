// Copyright © 2024 The ELPS authors

package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// byteKind classifies a byte of a source line.
type byteKind uint8

const (
	kindCode byteKind = iota
	kindString
	kindComment
)

// lexState is the string or comment a line ends inside of, carried over
// to the next line.
type lexState struct {
	quote byte // open string delimiter, or 0
	depth int  // block comment nesting
}

func (l lexState) open() bool {
	return l.quote != 0 || l.depth > 0
}

// lineScan is the result of scanning one line.
type lineScan struct {
	kinds []byteKind
	end   lexState

	// closeAt is the offset just past the point where the string or comment
	// the line started in is closed: 0 when the line starts in code, -1
	// when it never closes.
	closeAt int

	// openAt is the offset of the string or comment still open at the end
	// of the line, or -1.
	openAt int
}

// scanLine marks every byte of line as code, string literal or comment,
// starting in state start. Strings are delimited by " or ' with ~ as the
// escape character. Block comments nest, and // runs to the end of the line.
func scanLine(line string, start lexState) lineScan {
	r := lineScan{kinds: make([]byteKind, len(line)), closeAt: -1, openAt: -1}
	depth, quote := start.depth, start.quote
	if !start.open() {
		r.closeAt = 0
	}
	closed := func(at int) {
		if r.closeAt < 0 && depth == 0 && quote == 0 {
			r.closeAt = at
		}
	}
	tokStart := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case depth > 0:
			r.kinds[i] = kindComment
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				r.kinds[i+1] = kindComment
				i++
				depth--
				closed(i + 1)
			} else if c == '/' && i+1 < len(line) && line[i+1] == '*' {
				r.kinds[i+1] = kindComment
				i++
				depth++
			}
		case quote != 0:
			r.kinds[i] = kindString
			if c == '~' && i+1 < len(line) {
				r.kinds[i+1] = kindString
				i++
			} else if c == quote {
				quote = 0
				closed(i + 1)
			}
		case c == '"' || c == '\'':
			r.kinds[i] = kindString
			quote = c
			tokStart = i
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			r.kinds[i], r.kinds[i+1] = kindComment, kindComment
			tokStart = i
			i++
			depth = 1
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			for j := i; j < len(line); j++ {
				r.kinds[j] = kindComment
			}
			i = len(line)
		}
	}
	r.end = lexState{quote: quote, depth: depth}
	if r.end.open() {
		r.openAt = tokStart
	}
	return r
}

// classify marks every byte of a line that starts in code. A string or
// comment left open at the end of the line covers the rest of it.
func classify(line string) []byteKind {
	return scanLine(line, lexState{}).kinds
}

// allCode reports whether kinds[i:j] are all code bytes.
func allCode(kinds []byteKind, i, j int) bool {
	for ; i < j; i++ {
		if kinds[i] != kindCode {
			return false
		}
	}
	return true
}

// asciiUpper upper-cases ASCII letters only, so byte offsets into the
// result are valid offsets into s.
func asciiUpper(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'a' && b[j] <= 'z' {
					b[j] -= 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// isIdentByte reports whether c can appear inside an ABL identifier.
func isIdentByte(c byte) bool {
	return isLetter(c) || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '#' || c == '$' || c == '%'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// hasWordPrefix reports whether upper starts with the word w. The word must
// be followed by the end of the line or a byte that cannot continue an
// identifier. Multi-word prefixes such as "FOR EACH" work the same way.
func hasWordPrefix(upper, w string) bool {
	if !strings.HasPrefix(upper, w) {
		return false
	}
	return len(upper) == len(w) || !isIdentByte(upper[len(w)])
}

func hasAnyWordPrefix(upper string, words []string) bool {
	for _, w := range words {
		if hasWordPrefix(upper, w) {
			return true
		}
	}
	return false
}

// leadingWord returns the first of words that upper starts with, when it is
// followed by whitespace.
func leadingWord(upper string, words []string) (string, bool) {
	for _, w := range words {
		if strings.HasPrefix(upper, w) && len(upper) > len(w) && isSpace(upper[len(w)]) {
			return w, true
		}
	}
	return "", false
}

// hasWordSuffix reports whether upper ends with the word w preceded by
// whitespace or nothing. &THEN does not end with THEN.
func hasWordSuffix(upper, w string) bool {
	if !strings.HasSuffix(upper, w) {
		return false
	}
	n := len(upper) - len(w)
	return n == 0 || isSpace(upper[n-1])
}

func hasAnyWordSuffix(upper string, words []string) bool {
	for _, w := range words {
		if hasWordSuffix(upper, w) {
			return true
		}
	}
	return false
}

// codePart trims line and drops a trailing comment, returning what is left
// of the statement text.
func codePart(line string) string {
	kinds := classify(line)
	end := len(line)
	for end > 0 && (kinds[end-1] == kindComment || isSpace(line[end-1])) {
		end--
	}
	return strings.TrimSpace(line[:end])
}

// containsCodeWord reports whether word occurs in line outside strings and
// comments, with identifier boundaries on both sides.
func containsCodeWord(line, word string) bool {
	upper := asciiUpper(line)
	kinds := classify(line)
	for from := 0; ; {
		i := strings.Index(upper[from:], word)
		if i < 0 {
			return false
		}
		i += from
		j := i + len(word)
		if allCode(kinds, i, j) &&
			(i == 0 || !isIdentByte(upper[i-1])) &&
			(j == len(upper) || !isIdentByte(upper[j])) {
			return true
		}
		from = i + 1
	}
}

// codeWords returns the upper-cased identifier words found in the code part
// of line.
func codeWords(line string) []string {
	upper := asciiUpper(line)
	kinds := classify(line)
	var words []string
	for i := 0; i < len(upper); {
		if kinds[i] != kindCode || !isIdentByte(upper[i]) {
			i++
			continue
		}
		j := i
		for j < len(upper) && kinds[j] == kindCode && isIdentByte(upper[j]) {
			j++
		}
		words = append(words, upper[i:j])
		i = j
	}
	return words
}

// collapseSpaces trims s and folds runs of blanks outside strings and
// comments into a single space.
func collapseSpaces(s string) string {
	s = strings.TrimSpace(s)
	kinds := classify(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if kinds[i] == kindCode && isSpace(s[i]) {
			if i > 0 && kinds[i-1] == kindCode && isSpace(s[i-1]) {
				continue
			}
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// spanWords splits s on blanks outside strings and comments. Each element
// is a [start, end) byte range.
func spanWords(s string) [][2]int {
	kinds := classify(s)
	var spans [][2]int
	start := -1
	for i := 0; i <= len(s); i++ {
		boundary := i == len(s) || kinds[i] == kindCode && isSpace(s[i])
		switch {
		case boundary && start >= 0:
			spans = append(spans, [2]int{start, i})
			start = -1
		case !boundary && start < 0:
			start = i
		}
	}
	return spans
}

// displayWidth is the number of terminal columns s occupies.
func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// padRight pads s with spaces to width columns.
func padRight(s string, width int) string {
	if w := displayWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// joinParts joins left, op and right with single spaces, leaving out empty
// parts.
func joinParts(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

// normalizeNewlines converts CRLF and lone CR line endings to LF.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
