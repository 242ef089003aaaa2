// Copyright © 2024 The ELPS authors

package formatter

import (
	"slices"
	"strings"
)

// condition is one line of a query clause or conditional chain, split into
// its leading keyword and the comparison that follows it.
type condition struct {
	keyword string // normalized leading keyword, or ""
	body    string // text after the keyword, blanks collapsed
	left    string
	op      string
	right   string
	hasOp   bool
}

// splitCondition finds the first comparison operator of s that sits outside
// strings and parentheses. Word operators need identifier boundaries on both
// sides.
func splitCondition(s string) (left, op, right string, ok bool) {
	kinds := classify(s)
	upper := asciiUpper(s)
	depth := 0
	for i := 0; i < len(s); i++ {
		if kinds[i] != kindCode {
			continue
		}
		switch s[i] {
		case '(', '[':
			depth++
			continue
		case ')', ']':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth > 0 {
			continue
		}
		for _, o := range comparisonOps {
			j := i + len(o)
			if j > len(s) || upper[i:j] != o || !allCode(kinds, i, j) {
				continue
			}
			if isLetter(o[0]) && (i > 0 && isIdentByte(upper[i-1]) || j < len(s) && isIdentByte(upper[j])) {
				continue
			}
			return strings.TrimSpace(s[:i]), s[i:j], strings.TrimSpace(s[j:]), true
		}
		if isIdentByte(upper[i]) {
			i = identEnd(upper, kinds, i) - 1
		}
	}
	return "", "", "", false
}

// identEnd returns the end of the identifier starting at i, including
// qualified parts such as customer.name or hQuery:NUM-RESULTS.
func identEnd(upper string, kinds []byteKind, i int) int {
	for i < len(upper) && kinds[i] == kindCode {
		switch c := upper[i]; {
		case isIdentByte(c):
			i++
		case (c == '.' || c == ':') && i+1 < len(upper) && isLetter(upper[i+1]) && kinds[i+1] == kindCode:
			i++
		default:
			return i
		}
	}
	return i
}

// parseCondition normalizes a buffered line and splits it into keyword and
// comparison. Only the given leading keywords are recognized.
func (f *Formatter) parseCondition(line string, leaders []string) condition {
	line = f.keywords.Normalize(strings.TrimSpace(line))
	upper := asciiUpper(line)
	var c condition
	if w, ok := leadingWord(upper, leaders); ok {
		c.keyword = asciiLower(line[:len(w)])
		line = line[len(w):]
	} else if slices.Contains(leaders, upper) {
		c.keyword = asciiLower(line)
		line = ""
	}
	c.body = collapseSpaces(line)
	if left, op, right, ok := splitCondition(c.body); ok {
		c.left, c.op, c.right, c.hasOp = left, op, right, true
	}
	return c
}

// text renders the condition with its left operand padded to width.
func (c condition) text(width int) string {
	if !c.hasOp {
		return c.body
	}
	if c.left == "" {
		return joinParts(strings.Repeat(" ", width), c.op, c.right)
	}
	return joinParts(padRight(c.left, width), c.op, c.right)
}

func leftWidth(conds []condition) int {
	w := 0
	for _, c := range conds {
		if c.hasOp {
			w = max(w, displayWidth(c.left))
		}
	}
	return w
}

// splitConjunctions breaks a clause line before every top-level AND or OR
// so that each condition gets a line of its own.
func splitConjunctions(s string) []string {
	kinds := classify(s)
	upper := asciiUpper(s)
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		if kinds[i] != kindCode {
			continue
		}
		switch s[i] {
		case '(', '[':
			depth++
			continue
		case ')', ']':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth > 0 || i == start || !isSpace(s[i-1]) {
			continue
		}
		for _, w := range chainWords {
			j := i + len(w)
			if j < len(s) && upper[i:j] == w && (isSpace(s[j]) || s[j] == '(') {
				if p := strings.TrimSpace(s[start:i]); p != "" {
					parts = append(parts, p)
				}
				start = i
				break
			}
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// formatQueryClause lays out the WHERE/AND/OR lines of a FIND or FOR EACH.
// Keywords are right-aligned and the left operands padded so that the
// operators form one column.
func (f *Formatter) formatQueryClause(lines []string, indent string) []string {
	var conds []condition
	for _, l := range lines {
		for _, part := range splitConjunctions(l) {
			conds = append(conds, f.parseCondition(part, clauseWords))
		}
	}
	kw := 0
	for _, c := range conds {
		kw = max(kw, len(c.keyword))
	}
	width := leftWidth(conds)
	out := make([]string, 0, len(conds))
	for _, c := range conds {
		if c.keyword == "" {
			out = append(out, indent+c.text(width))
			continue
		}
		lead := strings.Repeat(" ", kw-len(c.keyword)) + c.keyword
		if body := c.text(width); body != "" {
			lead += " " + body
		}
		out = append(out, indent+lead)
	}
	return out
}

// formatChain lays out an IF/FOR/REPEAT opener and its AND/OR
// continuations. Keywords are padded to the widest one plus the configured
// gap, so every condition starts in the same column.
func (f *Formatter) formatChain(lines []string, indent string) []string {
	leaders := append(append([]string(nil), chainStarts...), chainWords...)
	conds := make([]condition, len(lines))
	kw := 0
	for i, l := range lines {
		conds[i] = f.parseCondition(l, leaders)
		kw = max(kw, len(conds[i].keyword))
	}
	width := leftWidth(conds)
	out := make([]string, 0, len(conds))
	for _, c := range conds {
		body := c.text(width)
		switch {
		case c.keyword == "":
			out = append(out, indent+body)
		case body == "":
			out = append(out, indent+c.keyword)
		default:
			gap := strings.Repeat(" ", kw-len(c.keyword)+f.cfg.ConditionGap)
			out = append(out, indent+c.keyword+gap+body)
		}
	}
	return out
}
