// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/coimbrox/progress-4gl-formatter/repl"
	"github.com/spf13/cobra"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Format ABL snippets interactively",
	Long: `Start an interactive session that formats ABL code as it is typed.

Lines are collected until an empty line, then the snippet is formatted and
printed. Keywords complete with Tab. Line editing and command history are
supported via readline. Use Ctrl-D to format what is left and exit.

Commands:
  :check     Report unbalanced blocks in the current snippet
  :state     Show the scanner state after the current snippet
  :reset     Discard the current snippet
  :help      List the commands
  :quit      Exit without formatting the current snippet

Example session:
  ablfmt> define variable itotal as integer no-undo.
  ....... for each order where order.cd-cust = 1:
  ....... display order.num.
  ....... end.
  .......
  def var iTotal                        as integer no-undo.
  for each order
    where order.cd-cust = 1:
    display order.num.
  end.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		f, err := newFormatter()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if err := repl.RunRepl(filepath.Base(os.Args[0])+"> ", repl.WithFormatter(f)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
