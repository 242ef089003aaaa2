// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coimbrox/progress-4gl-formatter/lint"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Exit codes of the check command.
const (
	checkClean    = 0
	checkFindings = 1
	checkBadUsage = 2
)

type checkOptions struct {
	json     bool
	plain    bool
	checks   string
	list     bool
	excludes []string
}

var checkOpts checkOptions

var checkCmd = &cobra.Command{
	Use:   "check [flags] [files...]",
	Short: "Verify that formatting ABL source files is safe",
	Long: `Verify that formatting ABL source files is safe.

Each file is formatted in memory and a set of independent checks compares
the result with the source. The checks report files that are not formatted,
formatter output that would change the program, output that is not stable
under a second pass, lost blank lines and unbalanced blocks. Files are never
modified.

With no files, reads from stdin. With files, checks each file and reports
all findings to stderr.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a specific diagnostic, add a comment on the same line:
  end. /* nolint:block-balance */

To suppress all checks on a line:
  end. /* nolint */

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  ablfmt check file.p                        Check a single file
  ablfmt check src/...                       Check a source tree
  ablfmt check --json file.p                 Output diagnostics as JSON
  ablfmt check --checks=block-balance f.p    Run only specific checks
  ablfmt check --list                        List available checks
  cat file.p | ablfmt check                  Check from stdin`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runCheck(os.Stdin, os.Stdout, os.Stderr, args, checkOpts))
	},
}

// runCheck runs the check command and returns its exit code.
func runCheck(stdin io.Reader, stdout, stderr io.Writer, args []string, opts checkOptions) int {
	if opts.list {
		listChecks(stdout)
		return checkClean
	}

	analyzers := lint.DefaultAnalyzers()
	if opts.checks != "" {
		var err error
		analyzers, err = lint.Select(strings.Split(opts.checks, ","))
		if err != nil {
			fmt.Fprintf(stderr, "ablfmt check: %v\n", err)
			return checkBadUsage
		}
	}

	f, err := newFormatter()
	if err != nil {
		fmt.Fprintf(stderr, "ablfmt check: %v\n", err)
		return checkBadUsage
	}
	l := &lint.Linter{Analyzers: analyzers, Formatter: f}

	var (
		diags    []lint.Diagnostic
		stdinSrc []byte
	)
	if len(args) == 0 {
		stdinSrc, err = io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintln(stderr, errors.Wrap(err, "reading stdin"))
			return checkBadUsage
		}
		diags, err = l.LintFile(stdinSrc, "<stdin>")
		if err != nil {
			fmt.Fprintln(stderr, err)
			return checkBadUsage
		}
	} else {
		expanded, err := expandArgs(args, opts.excludes)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return checkBadUsage
		}
		for _, path := range expanded {
			ds, err := checkFile(l, path)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return checkBadUsage
			}
			diags = append(diags, ds...)
		}
	}

	if len(diags) == 0 {
		return checkClean
	}

	switch {
	case opts.json:
		if err := lint.FormatJSON(stdout, diags); err != nil {
			fmt.Fprintln(stderr, err)
			return checkBadUsage
		}
	case opts.plain:
		lint.FormatText(stderr, diags)
	default:
		r := newRenderer()
		if stdinSrc != nil {
			r.SourceReader = func(name string) ([]byte, error) {
				if name == "<stdin>" {
					return stdinSrc, nil
				}
				return os.ReadFile(name) //nolint:gosec // CLI tool reads user-specified files
			}
		}
		if err := renderLintDiagnostics(stderr, r, diags); err != nil {
			fmt.Fprintln(stderr, err)
			return checkBadUsage
		}
	}
	return checkFindings
}

func checkFile(l *lint.Linter, path string) ([]lint.Diagnostic, error) {
	src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return l.LintFile(src, path)
}

// listChecks prints every check with its full documentation.
func listChecks(w io.Writer) {
	for i, a := range lint.DefaultAnalyzers() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s)\n", a.Name, a.Severity)
		fmt.Fprintln(w, indent.String(wordwrap.String(a.Doc, 72), 2))
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkOpts.json, "json", false,
		"Output diagnostics as JSON.")
	checkCmd.Flags().BoolVar(&checkOpts.plain, "plain", false,
		"Output diagnostics as file:line: message lines.")
	checkCmd.Flags().StringVar(&checkOpts.checks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	checkCmd.Flags().BoolVar(&checkOpts.list, "list", false,
		"List available checks and exit.")
	checkCmd.Flags().StringArrayVar(&checkOpts.excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
}
