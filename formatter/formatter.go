// Copyright © 2024 The ELPS authors

// Package formatter provides source code formatting for Progress 4GL
// (OpenEdge ABL) files.
//
// The formatter does not parse ABL. It scans the text one line at a time,
// tracking open blocks and a handful of multi-line statement shapes (query
// clauses, IF/FOR/REPEAT condition chains, ASSIGN lists and DEFINE
// statements), and re-emits each line with normalized keywords, consistent
// indentation and aligned columns. Any text is accepted; input it cannot
// make sense of is passed through with only its indentation changed.
package formatter

import (
	"strings"
)

// Formatter formats ABL source text with a fixed configuration. A
// Formatter is safe for concurrent use.
type Formatter struct {
	cfg      Config
	keywords *KeywordTable
}

// New returns a Formatter for cfg. If cfg is nil, DefaultConfig() is used.
func New(cfg *Config) (*Formatter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Formatter{cfg: *cfg, keywords: cfg.keywords()}, nil
}

var defaultFormatter = &Formatter{cfg: *DefaultConfig(), keywords: DefaultKeywords()}

// Default returns a Formatter using DefaultConfig().
func Default() *Formatter {
	return defaultFormatter
}

// Config returns a copy of the configuration in use.
func (f *Formatter) Config() Config {
	return f.cfg
}

// Keywords returns the keyword table in use.
func (f *Formatter) Keywords() *KeywordTable {
	return f.keywords
}

// Format formats text and returns the result. Line endings are normalized
// to "\n"; the number of lines never shrinks and blank lines are kept
// where they were. Format never fails.
func (f *Formatter) Format(text string) string {
	out, _ := f.FormatState(text)
	return out
}

// FormatState formats text and also returns the scanner state after the
// last line, which describes blocks left open and unmatched END
// statements.
func (f *Formatter) FormatState(text string) (result string, st State) {
	text = normalizeNewlines(text)
	if text == "" {
		return "", NewState()
	}
	defer func() {
		if r := recover(); r != nil {
			result, st = text, NewState()
		}
	}()

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	st = NewState()
	var emitted []string
	for _, line := range lines {
		st, emitted = f.Step(st, line)
		out = append(out, emitted...)
	}
	st, emitted = f.Finish(st)
	out = append(out, emitted...)
	return strings.Join(out, "\n"), st
}

// Format formats ABL source code. If cfg is nil, DefaultConfig() is used.
// The only error is an invalid configuration.
func Format(source []byte, cfg *Config) ([]byte, error) {
	f, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return []byte(f.Format(string(source))), nil
}

// FormatString formats text with the default configuration.
func FormatString(text string) string {
	return defaultFormatter.Format(text)
}
