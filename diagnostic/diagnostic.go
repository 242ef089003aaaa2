// Copyright © 2024 The ELPS authors

// Package diagnostic renders annotated findings for ablfmt CLI output: a
// severity header, the source location, the offending line with an
// underline, and trailing notes. It does not depend on the formatter or the
// lint packages so any command can use it.
package diagnostic

// Severity picks the header word and its color.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

// String returns the header word printed for s.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span points at part of one source line. Line and the columns count from 1
// in bytes. A zero Col underlines from the first non-blank column and a zero
// EndCol stops at the end of the word that starts at Col. File is read to
// show the line; when it cannot be read only the location is printed.
type Span struct {
	File   string
	Line   int
	Col    int
	EndCol int
	Label  string // printed after the carets
}

// Diagnostic is one finding as ablfmt prints it: a header line, one
// excerpt per span, then each note. Code, when set, is the check name shown
// in brackets after the severity.
type Diagnostic struct {
	Severity Severity
	Message  string
	Code     string
	Spans    []Span
	Notes    []string
}
