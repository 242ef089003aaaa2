// Copyright © 2024 The ELPS authors

package repl

import (
	"fmt"
	"io"

	"github.com/coimbrox/progress-4gl-formatter/diagnostic"
	"github.com/coimbrox/progress-4gl-formatter/formatter"
	"github.com/coimbrox/progress-4gl-formatter/lint"
)

const replSource = "<repl>"

// renderCheck reports unbalanced blocks in the buffered text. The buffer
// stands in for the source file so the renderer can show snippets.
func renderCheck(w io.Writer, f *formatter.Formatter, text string) {
	l := &lint.Linter{Analyzers: []*lint.Analyzer{lint.AnalyzerBlockBalance}, Formatter: f}
	diags, err := l.LintFile([]byte(text), replSource)
	if err != nil {
		fmt.Fprintln(w, err) //nolint:errcheck // best-effort error display
		return
	}
	if len(diags) == 0 {
		fmt.Fprintln(w, "blocks are balanced") //nolint:errcheck // best-effort REPL output
		return
	}
	ds := make([]diagnostic.Diagnostic, len(diags))
	for i, ld := range diags {
		ds[i] = lintDiagToDiag(ld)
	}
	r := &diagnostic.Renderer{
		Color: diagnostic.ColorAuto,
		SourceReader: func(string) ([]byte, error) {
			return []byte(text), nil
		},
	}
	_ = r.RenderAll(w, ds)
}

func lintDiagToDiag(ld lint.Diagnostic) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Code:     ld.Analyzer,
		Message:  ld.Message,
		Spans:    []diagnostic.Span{{File: ld.Pos.File, Line: ld.Pos.Line}},
		Notes:    append(append([]string(nil), ld.Notes...), ":reset clears the buffer"),
	}
}
