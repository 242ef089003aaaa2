// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// tabWidth is the number of columns a tab is expanded to in snippets.
const tabWidth = 4

// Renderer formats diagnostics as annotated source snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	// A Renderer reads each file once and keeps its lines.
	SourceReader func(string) ([]byte, error)

	sources map[string][]string
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := choosePalette(r.Color, fileFromWriter(w))
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	r.writeHeader(ew, d, p)
	for _, span := range d.Spans {
		r.writeSpan(ew, span, p)
	}
	for _, note := range d.Notes {
		ew.printf("   %s note: %s\n", p.boldCyan("="), note)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	sev := d.Severity.String()
	if d.Code != "" {
		sev += "[" + d.Code + "]"
	}
	var styled string
	switch d.Severity {
	case SeverityError:
		styled = p.boldRed(sev)
	case SeverityWarning:
		styled = p.yellow(sev)
	default:
		styled = p.boldCyan(sev)
	}
	ew.printf("%s: %s\n", styled, p.bold(d.Message))
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, p palette) {
	loc := span.File
	if span.Line > 0 {
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
		if span.Col > 0 {
			loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
		}
	}
	ew.printf("  %s %s\n", p.boldBlue("-->"), loc)

	source, ok := r.sourceLine(span.File, span.Line)
	if !ok {
		ew.printf("   %s\n", p.boldBlue("|"))
		return
	}

	lineStr := strconv.Itoa(span.Line)
	pad := strings.Repeat(" ", len(lineStr))
	gutter := p.boldBlue(pad + " |")

	ew.printf(" %s\n", gutter)
	ew.printf(" %s  %s\n", p.boldBlue(lineStr+" |"), expandTabs(source))

	col := span.Col
	if col <= 0 {
		col = firstNonBlank(source)
	}
	endCol := span.EndCol
	if endCol <= 0 {
		endCol = wordEnd(source, col)
	}
	endCol = max(endCol, col)

	start := min(col-1, len(source))
	end := min(endCol, len(source))
	underLen := endCol - col + 1
	if end > start {
		underLen = displayWidth(source[start:end])
	}
	underPad := strings.Repeat(" ", displayWidth(source[:start]))

	ew.printf(" %s  %s%s", gutter, underPad, p.boldRed(strings.Repeat("^", underLen)))
	if span.Label != "" {
		ew.printf(" %s", p.boldRed(span.Label))
	}
	ew.printf("\n")
	ew.printf(" %s\n", gutter)
}

// sourceLine returns line (1-based) of file, reading each file once.
func (r *Renderer) sourceLine(file string, line int) (string, bool) {
	if line <= 0 || file == "" {
		return "", false
	}
	lines, ok := r.sources[file]
	if !ok {
		reader := r.SourceReader
		if reader == nil {
			reader = os.ReadFile
		}
		data, err := reader(file)
		if err == nil {
			text := strings.ReplaceAll(string(data), "\r\n", "\n")
			lines = strings.Split(text, "\n")
		}
		if r.sources == nil {
			r.sources = make(map[string][]string)
		}
		r.sources[file] = lines
	}
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// firstNonBlank returns the 1-based column of the first non-blank byte.
func firstNonBlank(source string) int {
	for i := 0; i < len(source); i++ {
		if source[i] != ' ' && source[i] != '\t' {
			return i + 1
		}
	}
	return 1
}

// wordEnd returns the 1-based column of the last byte of the word at col.
// A word ends at blanks, brackets, a comma, or a statement-ending period.
func wordEnd(source string, col int) int {
	if col <= 0 || col > len(source) {
		return col
	}
	end := col - 1
	for end < len(source) {
		c := source[end]
		if strings.IndexByte(" \t()[],", c) >= 0 {
			break
		}
		if (c == '.' || c == ':') && (end+1 == len(source) || source[end+1] == ' ' || source[end+1] == '\t') {
			break
		}
		end++
	}
	if end == col-1 {
		return col
	}
	return end
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// displayWidth returns the terminal width of s with tabs expanded.
func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

// fileFromWriter attempts to extract an *os.File from a writer for terminal
// detection. Returns nil if the writer is not backed by a file.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
