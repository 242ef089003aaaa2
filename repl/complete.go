// Copyright © 2024 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
)

// keywordCompleter implements readline.AutoCompleter with the single-word
// spellings of a keyword table.
type keywordCompleter struct {
	words []string // upper case, sorted
}

func newKeywordCompleter(t *formatter.KeywordTable) *keywordCompleter {
	c := &keywordCompleter{}
	for _, e := range t.Entries() {
		if !strings.Contains(e.Key, " ") {
			c.words = append(c.words, e.Key)
		}
	}
	return c
}

func (c *keywordCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed (backwards from cursor to a non-word rune).
	start := pos
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	lower := prefix == strings.ToLower(prefix)
	upper := strings.ToUpper(prefix)
	i := sort.SearchStrings(c.words, upper)
	var result [][]rune
	for ; i < len(c.words) && strings.HasPrefix(c.words[i], upper); i++ {
		word := c.words[i]
		if lower {
			word = strings.ToLower(word)
		}
		if suffix := word[len(prefix):]; suffix != "" {
			result = append(result, []rune(suffix))
		}
	}
	if len(result) == 0 {
		return nil, 0
	}
	return result, len(prefix)
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_'
}
