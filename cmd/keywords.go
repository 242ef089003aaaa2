// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [words...]",
	Short: "Show the keyword normalization table",
	Long: `Show how ablfmt spells ABL keywords.

With no arguments, lists every normalized form followed by the spellings
that are rewritten to it. With arguments, prints the normalized form of each
word, or the word unchanged when it is not a keyword.

Examples:
  ablfmt keywords                    List the whole table
  ablfmt keywords DEFINE avail       Look up single spellings`,
	Run: func(cmd *cobra.Command, args []string) {
		table := formatter.DefaultKeywords()
		if len(args) > 0 {
			lookupKeywords(cmd.OutOrStdout(), table, args)
			return
		}
		listKeywords(cmd.OutOrStdout(), table)
	},
}

// listKeywords prints each output form with the spellings that map to it.
func listKeywords(w io.Writer, table *formatter.KeywordTable) {
	byForm := make(map[string][]string)
	for _, kw := range table.Entries() {
		byForm[kw.Form] = append(byForm[kw.Form], kw.Key)
	}
	forms := make([]string, 0, len(byForm))
	for form := range byForm {
		forms = append(forms, form)
	}
	sort.Strings(forms)
	for _, form := range forms {
		fmt.Fprintln(w, form)
		keys := strings.Join(byForm[form], ", ")
		fmt.Fprintln(w, indent.String(wordwrap.String(keys, 68), 4))
	}
}

func lookupKeywords(w io.Writer, table *formatter.KeywordTable, words []string) {
	for _, word := range words {
		if form, ok := table.Lookup(word); ok {
			fmt.Fprintf(w, "%s\t%s\n", word, form)
			continue
		}
		fmt.Fprintf(w, "%s\t%s (not a keyword)\n", word, word)
	}
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
}
