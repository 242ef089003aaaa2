// Copyright © 2024 The ELPS authors

package lint

import (
	"strings"
)

// AnalyzerFormatting reports files whose layout differs from the formatter's
// output.
var AnalyzerFormatting = &Analyzer{
	Name:     "formatting",
	Doc:      "Report files that are not formatted.\n\nThe diagnostic points at the first line that formatting would change. Run `ablfmt fmt -w` to rewrite the file.",
	Severity: SeverityInfo,
	Run: func(pass *Pass) error {
		if pass.Formatted == pass.Source {
			return nil
		}
		line := firstDiff(strings.Split(pass.Source, "\n"), strings.Split(pass.Formatted, "\n"))
		pass.Reportf(line, "file is not formatted")
		return nil
	},
}

// AnalyzerContentPreservation checks that formatting only changes layout and
// spelling, never the program. The source and the formatted text are lexed
// and compared token by token after keywords are reduced to their normal
// form, identifiers are case folded with - and _ dropped, and whitespace
// inside comments and strings is collapsed.
var AnalyzerContentPreservation = &Analyzer{
	Name:     "content-preservation",
	Doc:      "Check that formatting preserves every token of the program.\n\nKeyword spelling, identifier case and whitespace may change; anything else indicates a formatter defect on this input.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		keywords := pass.Formatter.Keywords()
		src := tokenize(pass.Source)
		out := tokenize(pass.Formatted)
		n := min(len(src), len(out))
		for i := 0; i < n; i++ {
			a, b := canonical(src[i], keywords), canonical(out[i], keywords)
			if a != b {
				pass.Reportf(src[i].line, "formatting changes %q to %q", src[i].text, out[i].text)
				return nil
			}
		}
		switch {
		case len(src) > n:
			pass.Reportf(src[n].line, "formatting drops %q", src[n].text)
		case len(out) > n:
			pass.Reportf(lineCount(pass.Source), "formatting adds %q", out[n].text)
		}
		return nil
	},
}

// AnalyzerIdempotence checks that formatting the formatted text again
// changes nothing.
var AnalyzerIdempotence = &Analyzer{
	Name:     "idempotence",
	Doc:      "Check that formatting is stable.\n\nA second formatting pass over the formatted text must reproduce it exactly.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		again := pass.Formatter.Format(pass.Formatted)
		if again == pass.Formatted {
			return nil
		}
		line := firstDiff(strings.Split(pass.Formatted, "\n"), strings.Split(again, "\n"))
		pass.ReportWithNotes(Diagnostic{
			Pos:     Position{Line: line},
			Message: "a second formatting pass changes the formatted text",
		}, "the line number refers to the formatted output")
		return nil
	},
}

// AnalyzerBlankLines checks that formatting keeps every run of blank lines.
var AnalyzerBlankLines = &Analyzer{
	Name:     "blank-lines",
	Doc:      "Check that formatting preserves blank lines.\n\nEvery run of blank or whitespace-only lines in the source must appear with the same length in the output.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		src := blankRuns(pass.Source)
		out := blankRuns(pass.Formatted)
		for i, r := range src {
			if i >= len(out) {
				pass.Reportf(r.line, "formatting removes a run of %d blank lines", r.count)
				return nil
			}
			if out[i].count != r.count {
				pass.Reportf(r.line, "formatting changes a run of %d blank lines to %d", r.count, out[i].count)
				return nil
			}
		}
		if len(out) > len(src) {
			pass.Reportf(lineCount(pass.Source), "formatting adds %d runs of blank lines", len(out)-len(src))
		}
		return nil
	},
}

// AnalyzerBlockBalance reports blocks that are never closed and END
// statements that close nothing. Both leave the indentation of the rest of
// the file off by a level.
var AnalyzerBlockBalance = &Analyzer{
	Name:     "block-balance",
	Doc:      "Report unbalanced blocks.\n\nA statement ending in a colon opens a block that needs a matching END. An END with no open block is reported where it occurs.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		for _, line := range pass.State.OpenBlocks() {
			pass.Reportf(line, "block opened here is never closed")
		}
		for _, line := range pass.State.UnmatchedEnds() {
			pass.Reportf(line, "END without an open block")
		}
		return nil
	},
}

type blankRun struct {
	line  int // 1-based line of the first blank line
	count int
}

func blankRuns(text string) []blankRun {
	var runs []blankRun
	for i, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].line+runs[n-1].count == i+1 {
			runs[n-1].count++
			continue
		}
		runs = append(runs, blankRun{line: i + 1, count: 1})
	}
	return runs
}

// firstDiff returns the 1-based number of the first line that differs.
func firstDiff(a, b []string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i + 1
		}
	}
	return n + 1
}

func lineCount(text string) int {
	return strings.Count(text, "\n") + 1
}
