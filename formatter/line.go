// Copyright © 2024 The ELPS authors

package formatter

import "strings"

// lineContext carries the scanner modes that change how a single line is
// rewritten.
type lineContext struct {
	assign      bool // line belongs to an open ASSIGN list
	assignWidth int  // display width of the first ASSIGN field
}

// formatLine rewrites one trimmed line: keywords are normalized, spacing
// around = is made uniform, ASSIGN lists are aligned and declared names are
// re-cased and padded.
func (f *Formatter) formatLine(trimmed string, ctx lineContext) string {
	out := f.keywords.Normalize(trimmed)
	out = normalizeEquals(out, ctx.assign)
	if ctx.assign {
		if s, ok := alignAssignment(out, ctx.assignWidth); ok {
			return s
		}
	}
	if s, ok := f.alignDeclaration(out); ok {
		return s
	}
	return out
}

// standaloneEquals returns the offsets of every = in line that is an
// assignment or equality operator rather than part of <=, >=, <>, += and
// the like.
func standaloneEquals(line string) []int {
	kinds := classify(line)
	var idx []int
	for i := 0; i < len(line); i++ {
		if line[i] != '=' || kinds[i] != kindCode {
			continue
		}
		if i > 0 && strings.IndexByte("<>!=:+-*/", line[i-1]) >= 0 {
			continue
		}
		if i+1 < len(line) && line[i+1] == '=' {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

// normalizeEquals puts exactly one space on each side of standalone = signs.
// Assignments and comparisons only have their first = rewritten; other
// lines have all of them rewritten.
func normalizeEquals(line string, assign bool) string {
	idx := standaloneEquals(line)
	if len(idx) == 0 {
		return line
	}
	if assign || assignmentRE.MatchString(line) || isComparison(line) {
		idx = idx[:1]
	}
	for k := len(idx) - 1; k >= 0; k-- {
		i := idx[k]
		left := strings.TrimRight(line[:i], " \t")
		right := strings.TrimLeft(line[i+1:], " \t")
		switch {
		case left == "" && right == "":
			line = "="
		case left == "":
			line = "= " + right
		case right == "":
			line = left + " ="
		default:
			line = left + " = " + right
		}
	}
	return line
}

func isComparison(line string) bool {
	for _, w := range codeWords(line) {
		if comparisonWords[w] {
			return true
		}
	}
	return false
}

// splitAssignment splits "field = value" at its first standalone =.
func splitAssignment(line string) (field, value string, ok bool) {
	idx := standaloneEquals(line)
	if len(idx) == 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx[0]]), strings.TrimSpace(line[idx[0]+1:]), true
}

const assignKeyword = "assign"

// assignBody returns the text after a leading ASSIGN keyword.
func assignBody(line string) (string, bool) {
	if !hasAssignOpener(asciiUpper(line)) {
		return "", false
	}
	return strings.TrimLeft(line[len(assignKeyword):], " \t"), true
}

func hasAssignOpener(upper string) bool {
	_, ok := leadingWord(upper, []string{"ASSIGN"})
	return ok
}

// assignFieldWidth returns the display width of the first field of an
// ASSIGN statement.
func assignFieldWidth(line string) (int, bool) {
	body, ok := assignBody(line)
	if !ok {
		return 0, false
	}
	field, _, ok := splitAssignment(body)
	if !ok {
		return 0, false
	}
	return displayWidth(field), true
}

// alignAssignment lays out one line of an ASSIGN list. The first line keeps
// its keyword; later lines are indented by the keyword's width so every =
// lands in the same column.
func alignAssignment(line string, width int) (string, bool) {
	prefix := strings.Repeat(" ", len(assignKeyword)+1)
	if body, ok := assignBody(line); ok {
		line = body
		prefix = assignKeyword + " "
	}
	field, value, ok := splitAssignment(line)
	if !ok {
		return "", false
	}
	if value == "" {
		return prefix + padRight(field, width) + " =", true
	}
	return prefix + padRight(field, width) + " = " + value, true
}

// isAssignContinuation reports whether a line can continue an open ASSIGN
// list: it starts with a word character and carries a standalone =.
func isAssignContinuation(trimmed string) bool {
	c := trimmed[0]
	if !isLetter(c) && !(c >= '0' && c <= '9') && c != '_' {
		return false
	}
	return len(standaloneEquals(trimmed)) > 0
}

// alignDeclaration rewrites a DEFINE statement so the declared name is
// re-cased and padded to the configured column.
func (f *Formatter) alignDeclaration(line string) (string, bool) {
	spans := spanWords(line)
	if len(spans) < 3 {
		return "", false
	}
	word := func(n int) string { return line[spans[n][0]:spans[n][1]] }
	if first := asciiUpper(word(0)); first != "DEF" && first != "DEFINE" {
		return "", false
	}
	n := 1
	for n < len(spans) && declModifiers[asciiUpper(word(n))] {
		n++
	}
	if n >= len(spans) || !declKinds[asciiUpper(word(n))] {
		return "", false
	}
	n++
	if n < len(spans) {
		switch w := asciiUpper(word(n)); {
		case w == "BUFFER":
			n++
		case declTableParams[w]:
			return "", false
		}
	}
	if n >= len(spans) {
		return "", false
	}

	words := make([]string, n)
	for i := range words {
		words[i] = word(i)
	}
	head := strings.Join(words, " ")
	name := declaredName(word(n))
	rest := strings.TrimSpace(line[spans[n][1]:])
	switch {
	case rest == "":
		return head + " " + name, true
	case displayWidth(name) >= f.cfg.NameWidth:
		return head + " " + name + " " + rest, true
	default:
		return head + " " + padRight(name, f.cfg.NameWidth) + rest, true
	}
}

// declaredName re-cases a declared identifier. A Hungarian type prefix, or
// the tt- temp-table prefix, is kept as written and the remainder is
// PascalCased. Surrounding double quotes are preserved.
func declaredName(name string) string {
	quoted := len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"'
	clean := name
	if quoted {
		clean = name[1 : len(name)-1]
	}
	if clean == "" {
		return name
	}
	out := pascalCase(clean)
	if strings.HasPrefix(clean, tempTablePrefix) {
		out = tempTablePrefix + pascalCase(clean[len(tempTablePrefix):])
	} else {
		for _, p := range namePrefixes {
			if len(clean) > len(p) && strings.HasPrefix(clean, p) && (isLetter(clean[len(p)]) || clean[len(p)] == '_') {
				out = p + pascalCase(clean[len(p):])
				break
			}
		}
	}
	if quoted {
		return `"` + out + `"`
	}
	return out
}

// pascalCase drops each run of - or _ and upper-cases the byte after it,
// then upper-cases the first byte. Trailing separators are kept.
func pascalCase(s string) string {
	if s == "" {
		return s
	}
	isSep := func(c byte) bool { return c == '-' || c == '_' }
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if !isSep(s[i]) {
			b = append(b, s[i])
			continue
		}
		j := i
		for j < len(s) && isSep(s[j]) {
			j++
		}
		if j == len(s) {
			b = append(b, s[i:]...)
			break
		}
		b = append(b, asciiUpper(s[j:j+1])...)
		i = j
	}
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
