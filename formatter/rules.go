// Copyright © 2024 The ELPS authors

package formatter

import (
	"regexp"

	"github.com/pkg/errors"
)

// Config holds formatting configuration.
type Config struct {
	IndentSize   int `mapstructure:"indent-size" yaml:"indent-size"`     // spaces per indent level (default: 2)
	NameWidth    int `mapstructure:"name-width" yaml:"name-width"`       // column width of declared names (default: 30)
	ConditionGap int `mapstructure:"condition-gap" yaml:"condition-gap"` // spaces between a chain keyword and its condition (default: 3)

	// Keywords is the normalization table. Nil means DefaultKeywords().
	Keywords *KeywordTable `mapstructure:"-" yaml:"-"`
}

// DefaultConfig returns the default formatting configuration.
func DefaultConfig() *Config {
	return &Config{
		IndentSize:   2,
		NameWidth:    30,
		ConditionGap: 3,
	}
}

// Validate reports the first setting that cannot produce sensible output.
func (c *Config) Validate() error {
	switch {
	case c.IndentSize < 0 || c.IndentSize > 16:
		return errors.Errorf("indent-size must be between 0 and 16, got %d", c.IndentSize)
	case c.NameWidth < 1 || c.NameWidth > 200:
		return errors.Errorf("name-width must be between 1 and 200, got %d", c.NameWidth)
	case c.ConditionGap < 1 || c.ConditionGap > 16:
		return errors.Errorf("condition-gap must be between 1 and 16, got %d", c.ConditionGap)
	}
	return nil
}

func (c *Config) keywords() *KeywordTable {
	if c.Keywords != nil {
		return c.Keywords
	}
	return DefaultKeywords()
}

// Statement words that open a block or a multi-line statement. They are
// matched as leading words, so END does not match END-DATE and FOR does not
// match FORM.
var blockStartWords = []string{
	"DO", "FOR", "REPEAT", "FUNCTION", "PROCEDURE", "IF", "FORM", "THEN",
	"CLASS", "METHOD", "CONSTRUCTOR", "DESTRUCTOR", "CASE", "INTERFACE",
}

var blockEndWords = []string{"END", "ELSE"}

// Trailing words that make the next statement hang one level deeper.
var hangWords = []string{"THEN", "ELSE", "OTHERWISE"}

// Leading words that belong to the statement above them, so they give back
// a pending hang before they are printed.
var releaseWords = []string{"DO", "THEN"}

var (
	queryStarts = []string{"FOR EACH", "FOR FIRST", "FOR LAST", "FOR FIRST-OF", "FOR LAST-OF"}
	chainStarts = []string{"IF", "FOR", "REPEAT"}
	clauseWords = []string{"WHERE", "AND", "OR"}
	chainWords  = []string{"AND", "OR"}
)

// Comparison operators recognized inside conditions, longest spellings
// first so that <= wins over <.
var comparisonOps = []string{
	"MATCHES", "BEGINS", "LIKE",
	">=", "<=", "<>",
	"EQ", "NE", "GT", "GE", "LT", "LE",
	"=", "<", ">",
}

// Hungarian prefixes kept in lower case when a declared name is rewritten.
// Longest first.
var namePrefixes = []string{"dtt", "dec", "dt", "r-", "c", "i", "l", "d", "h", "m", "r", "g"}

const tempTablePrefix = "tt-"

var declModifiers = map[string]bool{
	"NEW": true, "GLOBAL": true, "SHARED": true,
	"INPUT": true, "OUTPUT": true, "INPUT-OUTPUT": true, "RETURN": true,
	"PRIVATE": true, "PROTECTED": true, "PUBLIC": true, "STATIC": true,
	"PACKAGE-PRIVATE": true, "PACKAGE-PROTECTED": true,
	"SERIALIZABLE": true, "NON-SERIALIZABLE": true,
}

var declKinds = map[string]bool{
	"VAR": true, "VARIABLE": true, "PARAM": true, "PARAMETER": true,
	"TEMP-TABLE": true, "BUFFER": true, "STREAM": true,
}

// Parameter forms whose next word is not a name.
var declTableParams = map[string]bool{
	"TABLE": true, "TABLE-HANDLE": true, "DATASET": true, "DATASET-HANDLE": true,
}

var defineStartRE = regexp.MustCompile(`^DEF(INE)?\s+(NEW\b|((GLOBAL|SHARED|INPUT|OUTPUT|INPUT-OUTPUT|RETURN|PRIVATE|PROTECTED|PUBLIC|STATIC)\s+)*(VAR(IABLE)?|TEMP-TABLE|PARAM(ETER)?|BUFFER|STREAM)\b)`)

var assignmentRE = regexp.MustCompile(`^[A-Za-z_][\w\-#$%.:]*(\[[^\]]*\])?\s*=`)

// Words that mark a line as a comparison, where only the first = is an
// assignment candidate.
var comparisonWords = map[string]bool{
	"IF": true, "FOR": true, "WHILE": true, "CASE": true, "WHEN": true,
	"WHERE": true, "UNTIL": true,
	"EQ": true, "NE": true, "GT": true, "GE": true, "LT": true, "LE": true,
}
