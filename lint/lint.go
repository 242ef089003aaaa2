// Copyright © 2024 The ELPS authors

// Package lint checks ABL source files against the formatter.
//
// The checker is modeled after go vet: each check is an independent Analyzer
// that receives the source together with its formatted rendition and the
// final scanner state, and reports diagnostics. The framework handles
// formatting, running analyzers, nolint suppression and output.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return errors.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "block-balance").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// Source is the file content with line endings normalized to \n.
	Source string

	// Formatted is Source after one formatting pass.
	Formatted string

	// State is the scanner state left after formatting Source.
	State formatter.State

	// Formatter produced Formatted.
	Formatter *formatter.Formatter

	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a line.
func (p *Pass) Reportf(line int, format string, args ...interface{}) {
	p.Report(Diagnostic{
		Pos:     Position{File: p.Filename, Line: line},
		Message: fmt.Sprintf(format, args...),
	})
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Formatter formats the files under check. Nil means formatter.Default().
	Formatter *formatter.Formatter
}

// LintFile formats a single source file, runs every analyzer over the result
// and returns all diagnostics that are not suppressed by a nolint comment.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	f := l.Formatter
	if f == nil {
		f = formatter.Default()
	}
	text := strings.ReplaceAll(strings.ReplaceAll(string(source), "\r\n", "\n"), "\r", "\n")
	formatted, st := f.FormatState(text)

	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer:  analyzer,
			Filename:  filename,
			Source:    text,
			Formatted: formatted,
			State:     st,
			Formatter: f,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, errors.Wrapf(err, "%s: analyzer %s", filename, analyzer.Name)
		}
		for i := range pass.diagnostics {
			if pass.diagnostics[i].Pos.File == "" {
				pass.diagnostics[i].Pos.File = filename
			}
		}
		all = append(all, pass.diagnostics...)
	}

	all = filterSuppressed(all, nolintLines(text))

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pos.File != all[j].Pos.File {
			return all[i].Pos.File < all[j].Pos.File
		}
		return all[i].Pos.Line < all[j].Pos.Line
	})
	return all, nil
}

// filterSuppressed removes diagnostics on lines carrying a nolint comment.
// lines maps a line number to "" (suppress all) or a comma separated list
// of analyzer names.
func filterSuppressed(diags []Diagnostic, lines map[int]string) []Diagnostic {
	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := lines[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// nolintLines finds /* nolint */ and // nolint:name,name comments and maps
// them to the line they start on.
func nolintLines(source string) map[int]string {
	lines := make(map[int]string)
	for _, tok := range tokenize(source) {
		if tok.kind != tokComment {
			continue
		}
		text := strings.TrimPrefix(tok.text, "//")
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		text = strings.TrimSpace(text)
		if !strings.HasPrefix(text, "nolint") {
			continue
		}
		rest := strings.TrimPrefix(text, "nolint")
		switch {
		case rest == "":
			lines[tok.line] = ""
		case strings.HasPrefix(rest, ":"):
			lines[tok.line] = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
		}
	}
	return lines
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerFormatting,
		AnalyzerContentPreservation,
		AnalyzerIdempotence,
		AnalyzerBlankLines,
		AnalyzerBlockBalance,
	}
}

// Select returns the default analyzers named in names, in default order.
// Unknown names are an error.
func Select(names []string) ([]*Analyzer, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}
	var out []*Analyzer
	for _, a := range DefaultAnalyzers() {
		if want[a.Name] {
			out = append(out, a)
			delete(want, a.Name)
		}
	}
	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for n := range want {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, errors.Errorf("unknown checks: %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(AnalyzerNames(), ", "))
	}
	return out, nil
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
