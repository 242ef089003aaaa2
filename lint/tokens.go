// Copyright © 2024 The ELPS authors

package lint

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/coimbrox/progress-4gl-formatter/formatter"
)

type tokenKind int

const (
	tokOther tokenKind = iota
	tokComment
	tokString
	tokNumber
	tokIdent
)

// token is a lexeme of ABL source with whitespace elided.
type token struct {
	kind tokenKind
	text string
	line int
}

// ablLexer splits ABL source into coarse tokens. It is only precise enough
// to compare two renditions of the same program; nested comments are not
// balanced and every unrecognized rune is a token of its own.
var ablLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `/\*([^*]|\*+[^*/])*\*+/|//[^\n]*`},
	{Name: "String", Pattern: `"(~[\s\S]|[^"~])*"|'(~[\s\S]|[^'~])*'`},
	{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_\-#$%]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Punct", Pattern: `<>|<=|>=|\S`},
})

var tokenKinds = func() map[lexer.TokenType]tokenKind {
	sym := ablLexer.Symbols()
	return map[lexer.TokenType]tokenKind{
		sym["Comment"]: tokComment,
		sym["String"]:  tokString,
		sym["Number"]:  tokNumber,
		sym["Ident"]:   tokIdent,
		sym["Punct"]:   tokOther,
	}
}()

// tokenize lexes source. Lexing stops quietly at the first error, which the
// catch-all rule makes unreachable in practice.
func tokenize(source string) []token {
	lex, err := ablLexer.LexString("", source)
	if err != nil {
		return nil
	}
	whitespace := ablLexer.Symbols()["Whitespace"]
	var toks []token
	for {
		t, err := lex.Next()
		if err != nil || t.EOF() {
			return toks
		}
		if t.Type == whitespace {
			continue
		}
		toks = append(toks, token{kind: tokenKinds[t.Type], text: t.Value, line: t.Pos.Line})
	}
}

// canonical returns the spelling of tok that formatting must preserve.
// Keywords are reduced to their normalized form, identifiers are compared
// without case and word separators, and whitespace inside comments is
// collapsed. Strings are compared byte for byte.
func canonical(tok token, keywords *formatter.KeywordTable) string {
	switch tok.kind {
	case tokIdent:
		word := tok.text
		if form, ok := keywords.Lookup(word); ok {
			word = form
		}
		word = strings.ToUpper(word)
		return strings.NewReplacer("-", "", "_", "").Replace(word)
	case tokComment:
		return strings.Join(strings.Fields(tok.text), " ")
	default:
		return tok.text
	}
}
