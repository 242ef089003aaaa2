// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// fmtMode selects what fmtFile does with a formatted file.
type fmtMode struct {
	write bool
	diff  bool
	list  bool
}

var (
	fmtOpts     fmtMode
	fmtExcludes []string
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] [files...]",
	Short: "Format ABL source files",
	Long: `Format Progress 4GL / OpenEdge ABL source files, similar to gofmt for Go.

Re-indents blocks, normalizes keyword spelling, aligns query clauses,
conditional chains, ASSIGN statements and DEFINE declarations. Comments,
strings and blank lines are kept. The formatter is idempotent.

With no files, reads from stdin and writes to stdout.
With files, prints formatted output to stdout unless -w is given.
A directory argument ending in /... selects every .p, .w, .i and .cls file
below it.

Modes:
  (default)   Print formatted code to stdout
  -w          Write result back to source file
  -d          Display a diff of changes
  -l          List files that would be changed

Examples:
  ablfmt fmt file.p                 Print formatted output
  ablfmt fmt -w file.p              Format in place
  ablfmt fmt -w src/...             Format a source tree in place
  ablfmt fmt -d file.p              Show what would change
  ablfmt fmt -l src/...             List files needing formatting
  cat file.p | ablfmt fmt           Format from stdin
  ablfmt fmt --indent-size 4 f.p    Use 4-space indentation`,
	Run: func(cmd *cobra.Command, args []string) {
		f, err := newFormatter()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if len(args) == 0 {
			if err := fmtStdin(os.Stdin, os.Stdout, f); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}

		expanded, err := expandArgs(args, fmtExcludes)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		exitCode := 0
		for _, path := range expanded {
			changed, err := fmtFile(os.Stdout, f, path, fmtOpts)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				exitCode = 1
			} else if fmtOpts.list && changed {
				exitCode = 1
			}
		}
		os.Exit(exitCode)
	},
}

func fmtStdin(r io.Reader, w io.Writer, f *formatter.Formatter) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading stdin")
	}
	_, err = io.WriteString(w, f.Format(string(src)))
	return err
}

// fmtFile formats the file at path and reports whether formatting changed
// it. Output for the list, diff and default modes goes to w.
func fmtFile(w io.Writer, f *formatter.Formatter, path string, mode fmtMode) (bool, error) {
	src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return false, errors.Wrapf(err, "reading %s", path)
	}
	out := f.Format(string(src))
	changed := string(src) != out

	switch {
	case mode.list:
		if changed {
			fmt.Fprintln(w, path)
		}
		return changed, nil
	case mode.diff:
		if changed {
			return true, printUnifiedDiff(w, path, string(src), out)
		}
		return false, nil
	case mode.write:
		if !changed {
			return false, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return false, errors.Wrapf(err, "stat %s", path)
		}
		if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
			return false, errors.Wrapf(err, "writing %s", path)
		}
		return true, nil
	}

	_, err = io.WriteString(w, out)
	return changed, err
}

func printUnifiedDiff(w io.Writer, path string, original, formatted string) error {
	return difflib.WriteUnifiedDiff(w, difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(formatted),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVarP(&fmtOpts.write, "write", "w", false,
		"Write result to (source) file instead of stdout.")
	fmtCmd.Flags().BoolVarP(&fmtOpts.diff, "diff", "d", false,
		"Display diffs instead of rewriting files.")
	fmtCmd.Flags().BoolVarP(&fmtOpts.list, "list", "l", false,
		"List files whose formatting differs from ablfmt's.")
	fmtCmd.Flags().Int("indent-size", formatter.DefaultConfig().IndentSize,
		"Number of spaces per indentation level.")
	fmtCmd.Flags().StringArrayVar(&fmtExcludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")

	_ = viper.BindPFlag("indent-size", fmtCmd.Flags().Lookup("indent-size"))
}
