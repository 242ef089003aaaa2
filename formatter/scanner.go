// Copyright © 2024 The ELPS authors

package formatter

import (
	"strings"
)

// Mode is the multi-line construct the scanner is inside of.
type Mode int

const (
	ModeNormal Mode = iota
	ModeAssign
	ModeDefine
	ModeFindClause
	ModeForEachClause
	ModeConditionalChain
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeAssign:
		return "assign"
	case ModeDefine:
		return "define"
	case ModeFindClause:
		return "find-clause"
	case ModeForEachClause:
		return "for-each-clause"
	case ModeConditionalChain:
		return "conditional-chain"
	default:
		return "unknown"
	}
}

// Line is one physical input line prepared for scanning.
type Line struct {
	Raw     string
	Trimmed string
	Upper   string // Trimmed with ASCII letters upper-cased
	Code    string // Upper without a trailing comment
	Number  int    // 1-based
}

func newLine(raw string, number int) Line {
	trimmed := strings.TrimSpace(raw)
	upper := asciiUpper(trimmed)
	return Line{
		Raw:     raw,
		Trimmed: trimmed,
		Upper:   upper,
		Code:    codePart(upper),
		Number:  number,
	}
}

type block struct {
	base int // level the opening statement was printed at
	hang int // THEN/ELSE hang pending when the block opened
	line int // line number of the opening statement
}

type pendingLine struct {
	text   string
	number int
}

// State is the scanner state carried from one line to the next. It is a
// value: Step never modifies the slices of the State it was given, so a
// State may be kept and resumed from later.
type State struct {
	level int
	cont  int // 1 while an unterminated block statement hangs its continuation lines
	then  int // pending single-statement indents from THEN/ELSE/OTHERWISE

	blocks    []block
	unmatched []int

	mode        Mode
	assignWidth int

	parent     int // level when the buffered construct opened
	header     string
	headerLine int
	pending    []pendingLine

	lex  lexState // string or comment the previous line ended inside of
	line int
}

// Level returns the indentation level applied to the next plain line.
func (s State) Level() int { return s.level }

// Mode returns the multi-line construct currently open.
func (s State) Mode() Mode { return s.mode }

// Depth returns the number of open blocks.
func (s State) Depth() int { return len(s.blocks) }

// Line returns the number of lines consumed.
func (s State) Line() int { return s.line }

// OpenBlocks returns the line numbers of statements whose blocks are still
// open, outermost first.
func (s State) OpenBlocks() []int {
	lines := make([]int, len(s.blocks))
	for i, b := range s.blocks {
		lines[i] = b.line
	}
	return lines
}

// InLiteral reports whether the last line consumed ended inside a string
// or a block comment.
func (s State) InLiteral() bool { return s.lex.open() }

// UnmatchedEnds returns the line numbers of END statements that had no open
// block to close.
func (s State) UnmatchedEnds() []int {
	return append([]int(nil), s.unmatched...)
}

func (s *State) releaseCont() {
	s.level -= s.cont
	s.cont = 0
}

func (s *State) releaseAll() {
	s.level -= s.cont + s.then
	s.cont, s.then = 0, 0
}

func (s *State) releaseOne() {
	switch {
	case s.cont > 0:
		s.releaseCont()
	case s.then > 0:
		s.level--
		s.then--
	}
}

func (s *State) openBlock(line int) {
	base := s.level - s.cont
	n := len(s.blocks)
	s.blocks = append(s.blocks[:n:n], block{base: base, hang: s.then, line: line})
	s.level = base + 1
	s.cont, s.then = 0, 0
}

// closeBlock pops the innermost block and returns the level its END is
// printed at.
func (s *State) closeBlock(line int) int {
	n := len(s.blocks)
	if n == 0 {
		s.level = max(0, s.level-s.cont-s.then-1)
		s.cont, s.then = 0, 0
		m := len(s.unmatched)
		s.unmatched = append(s.unmatched[:m:m], line)
		return s.level
	}
	b := s.blocks[n-1]
	s.blocks = s.blocks[:n-1]
	s.level = b.base
	s.cont, s.then = 0, b.hang
	return b.base
}

// afterUnit updates the indentation once a statement unit has been
// printed. first and last are the code parts of its first and last lines.
func (s *State) afterUnit(first, last string, line int) {
	switch {
	case last == "":
	case strings.HasSuffix(last, ":"):
		s.openBlock(line)
	case strings.HasSuffix(last, "."):
		s.releaseAll()
	case hasAnyWordSuffix(last, hangWords):
		s.releaseCont()
		s.level++
		s.then++
	case s.cont == 0 && hasAnyWordPrefix(first, blockStartWords):
		s.level++
		s.cont = 1
	}
}

func (s *State) appendPending(text string, number int) {
	n := len(s.pending)
	s.pending = append(s.pending[:n:n], pendingLine{text: text, number: number})
}

// NewState returns the state for the start of a file.
func NewState() State {
	return State{}
}

// Step consumes one input line and returns the new state along with the
// lines that became ready for output. Lines of a query clause or a
// conditional chain are held back until the construct closes, so Step may
// return nothing for a line and several lines later.
func (f *Formatter) Step(st State, raw string) (State, []string) {
	st.line++
	if st.lex.open() {
		return st, []string{f.insideLiteral(&st, raw)}
	}
	if scan := scanLine(raw, lexState{}); scan.end.open() {
		st.lex = scan.end
		return st, f.openLiteral(&st, raw, scan.openAt)
	}
	ln := newLine(raw, st.line)
	if ln.Trimmed == "" {
		out := f.flush(&st)
		return st, append(out, "")
	}

	isEnd := hasAnyWordPrefix(ln.Upper, blockEndWords)
	var out []string
	switch st.mode {
	case ModeFindClause, ModeForEachClause:
		if !isEnd && hasAnyWordPrefix(ln.Upper, clauseWords) {
			st.appendPending(ln.Trimmed, ln.Number)
			return st, nil
		}
		out = f.flush(&st)
	case ModeConditionalChain:
		if !isEnd && hasAnyWordPrefix(ln.Upper, chainWords) {
			st.appendPending(ln.Trimmed, ln.Number)
			return st, nil
		}
		out = f.flush(&st)
	}

	switch {
	case isEnd:
		return st, append(out, f.blockEnd(&st, ln))
	case hasAnyWordPrefix(ln.Upper, queryStarts):
		return st, append(out, f.openQuery(&st, ModeForEachClause, ln))
	case hasWordPrefix(ln.Upper, "FIND") || containsCodeWord(ln.Trimmed, "CAN-FIND"):
		return st, append(out, f.openQuery(&st, ModeFindClause, ln))
	}
	if _, ok := leadingWord(ln.Upper, chainStarts); ok {
		st.mode = ModeConditionalChain
		st.parent = st.level
		st.header = ln.Code
		st.headerLine = ln.Number
		st.pending = []pendingLine{{text: ln.Trimmed, number: ln.Number}}
		return st, out
	}
	return st, append(out, f.plainLine(&st, ln))
}

// openLiteral prints a line that ends inside a string or comment. Only the
// code before the literal is formatted; the literal runs to the end of the
// line as written.
func (f *Formatter) openLiteral(st *State, raw string, at int) []string {
	out := f.flush(st)
	head, tail := raw[:at], raw[at:]
	code := strings.TrimRight(head, " \t")
	gap := head[len(code):]
	ln := newLine(code, st.line)
	if ln.Trimmed == "" {
		return append(out, f.indent(st.level)+tail)
	}
	var text string
	if hasAnyWordPrefix(ln.Upper, blockEndWords) {
		text = f.blockEnd(st, ln)
	} else {
		text = f.plainLine(st, ln)
	}
	return append(out, text+gap+tail)
}

// insideLiteral prints a line that starts inside a string or comment left
// open by an earlier line. The line is kept as written. Code after the
// literal closes only ends the statement or opens a block.
func (f *Formatter) insideLiteral(st *State, raw string) string {
	scan := scanLine(raw, st.lex)
	st.lex = scan.end
	if scan.closeAt >= 0 && !scan.end.open() {
		code := codePart(asciiUpper(raw[scan.closeAt:]))
		if strings.HasSuffix(code, ".") {
			st.mode = ModeNormal
		}
		st.afterUnit(code, code, st.line)
	}
	return raw
}

// Finish flushes whatever construct is still buffered at the end of input.
func (f *Formatter) Finish(st State) (State, []string) {
	out := f.flush(&st)
	return st, out
}

func (f *Formatter) indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(" ", level*f.cfg.IndentSize)
}

// blockEnd prints an END or ELSE line. END closes the innermost block; ELSE
// stays at the level of its IF and only gives back pending hangs.
func (f *Formatter) blockEnd(st *State, ln Line) string {
	st.mode = ModeNormal
	var level int
	if hasWordPrefix(ln.Upper, "ELSE") {
		st.releaseAll()
		level = st.level
	} else {
		level = st.closeBlock(ln.Number)
	}
	text := f.indent(level) + f.formatLine(ln.Trimmed, lineContext{})
	st.afterUnit(ln.Code, ln.Code, ln.Number)
	return text
}

// openQuery prints the header of a FIND or FOR EACH statement and buffers
// its WHERE clause.
func (f *Formatter) openQuery(st *State, mode Mode, ln Line) string {
	header := ln.Trimmed
	var clause string
	if i := whereIndex(ln.Trimmed); i > 0 {
		header = strings.TrimSpace(ln.Trimmed[:i])
		clause = strings.TrimSpace(ln.Trimmed[i:])
	}
	st.mode = mode
	st.parent = st.level
	st.header = codePart(asciiUpper(header))
	st.headerLine = ln.Number
	st.pending = nil
	if clause != "" {
		st.pending = []pendingLine{{text: clause, number: ln.Number}}
	}
	return f.indent(st.level) + f.formatLine(header, lineContext{})
}

// whereIndex returns the offset of the first WHERE word outside strings,
// comments and parentheses, or -1. A WHERE inside CAN-FIND(...) belongs to
// the nested query and is not a split point.
func whereIndex(line string) int {
	kinds := classify(line)
	upper := asciiUpper(line)
	depth := 0
	for i := 1; i < len(upper); i++ {
		if kinds[i] != kindCode {
			continue
		}
		switch upper[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case 'W':
			j := i + len("WHERE")
			if depth == 0 && isSpace(upper[i-1]) && j <= len(upper) && upper[i:j] == "WHERE" &&
				(j == len(upper) || !isIdentByte(upper[j])) && allCode(kinds, i, j) {
				return i
			}
		}
	}
	return -1
}

// flush emits a buffered query clause or conditional chain and applies its
// effect on indentation.
func (f *Formatter) flush(st *State) []string {
	var out []string
	switch st.mode {
	case ModeFindClause, ModeForEachClause:
		lines := make([]string, len(st.pending))
		for i, p := range st.pending {
			lines[i] = p.text
		}
		out = f.formatQueryClause(lines, f.indent(st.parent+1))
	case ModeConditionalChain:
		lines := make([]string, len(st.pending))
		for i, p := range st.pending {
			lines[i] = p.text
		}
		out = f.formatChain(lines, f.indent(st.parent))
	default:
		return nil
	}
	last := st.header
	if n := len(st.pending); n > 0 {
		last = codePart(asciiUpper(st.pending[n-1].text))
	}
	st.mode = ModeNormal
	st.pending = nil
	st.afterUnit(st.header, last, st.headerLine)
	return out
}

// plainLine prints a line that does not start a buffered construct,
// tracking ASSIGN lists and DEFINE continuations.
func (f *Formatter) plainLine(st *State, ln Line) string {
	if hasAnyWordPrefix(ln.Upper, releaseWords) {
		st.releaseOne()
	}

	extra := 0
	switch {
	case hasAssignOpener(ln.Upper):
		st.mode = ModeNormal
		if w, ok := assignFieldWidth(f.keywords.Normalize(ln.Trimmed)); ok {
			st.mode = ModeAssign
			st.assignWidth = w
		}
	case st.mode == ModeAssign && isAssignContinuation(ln.Trimmed):
	case st.mode == ModeDefine && hasWordPrefix(ln.Upper, "VIEW-AS"):
		extra = 1
	default:
		st.mode = ModeNormal
	}

	ctx := lineContext{assign: st.mode == ModeAssign, assignWidth: st.assignWidth}
	text := f.indent(st.level+extra) + f.formatLine(ln.Trimmed, ctx)

	terminated := strings.HasSuffix(ln.Code, ".")
	switch {
	case defineStartRE.MatchString(ln.Upper):
		if !terminated {
			st.mode = ModeDefine
		}
	case terminated && (st.mode == ModeAssign || st.mode == ModeDefine):
		st.mode = ModeNormal
	}
	st.afterUnit(ln.Code, ln.Code, ln.Number)
	return text
}
