// Copyright © 2024 The ELPS authors

package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodePart(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"x = 1.", "x = 1."},
		{"x = 1.   /* done */", "x = 1."},
		{"DO: // loop", "DO:"},
		{"/* only a comment */", ""},
		{`MESSAGE "/* not a comment */".`, `MESSAGE "/* not a comment */".`},
		{"x /* a /* nested */ comment */ = 1.", "x /* a /* nested */ comment */ = 1."},
		{"DO: /* a /* nested */ comment */", "DO:"},
		{`x = "a~"b".`, `x = "a~"b".`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, codePart(tt.in), "codePart(%q)", tt.in)
	}
}

func TestScanLine(t *testing.T) {
	r := scanLine(`x = "abc`, lexState{})
	assert.Equal(t, lexState{quote: '"'}, r.end)
	assert.Equal(t, 0, r.closeAt)
	assert.Equal(t, 4, r.openAt)

	r = scanLine(`def". y = 1.`, lexState{quote: '"'})
	assert.False(t, r.end.open())
	assert.Equal(t, 4, r.closeAt)
	assert.Equal(t, -1, r.openAt)
	assert.Equal(t, kindString, r.kinds[3])
	assert.Equal(t, kindCode, r.kinds[4])

	r = scanLine("inner /* deeper */ still", lexState{depth: 1})
	assert.Equal(t, lexState{depth: 1}, r.end)
	assert.Equal(t, -1, r.closeAt)
	assert.Equal(t, 0, r.openAt)

	r = scanLine("*/ DO: /* next", lexState{depth: 1})
	assert.Equal(t, 2, r.closeAt)
	assert.Equal(t, 7, r.openAt)
	assert.Equal(t, lexState{depth: 1}, r.end)

	r = scanLine("x = 1. // /* not open", lexState{})
	assert.False(t, r.end.open())
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a = b", collapseSpaces("  a   =\t b "))
	assert.Equal(t, `a = "x   y"`, collapseSpaces(`a   =   "x   y"`))
	assert.Equal(t, "a /* x   y */", collapseSpaces("a   /* x   y */"))
}

func TestSpanWords(t *testing.T) {
	s := `def var "my name" as char`
	var words []string
	for _, sp := range spanWords(s) {
		words = append(words, s[sp[0]:sp[1]])
	}
	assert.Equal(t, []string{"def", "var", `"my name"`, "as", "char"}, words)
}

func TestPadRightDisplayWidth(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcdef", padRight("abcdef", 4))
	assert.Equal(t, "ção ", padRight("ção", 4))
	assert.Equal(t, "日本", padRight("日本", 4))
}

func TestAsciiUpperKeepsOffsets(t *testing.T) {
	s := "ſtraße de"
	assert.Len(t, asciiUpper(s), len(s))
	assert.Equal(t, "ſTRAßE DE", asciiUpper(s))
}

func TestDeclaredName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"cnome-cliente", "cNomeCliente"},
		{"cNomeCliente", "cNomeCliente"},
		{"itotal", "iTotal"},
		{"dtvenda", "dtVenda"},
		{"dttregistro", "dttRegistro"},
		{"decvalor", "decValor"},
		{"r-cust", "r-Cust"},
		{"tt-cliente", "tt-Cliente"},
		{"tt-item_pedido", "tt-ItemPedido"},
		{"nome-cliente", "NomeCliente"},
		{`"nome-cliente"`, `"NomeCliente"`},
		{"c", "C"},
		{"x--y", "XY"},
		{"trailing-", "Trailing-"},
		{`""`, `""`},
	}
	for _, tt := range tests {
		got := declaredName(tt.in)
		assert.Equal(t, tt.want, got, "declaredName(%q)", tt.in)
		assert.Equal(t, got, declaredName(got), "declaredName(%q) not stable", tt.in)
	}
}

func TestNormalizeEquals(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		assign bool
		want   string
	}{
		{"assignment", "x=1.", false, "x = 1."},
		{"assignment keeps later equals", "x=a=b.", false, "x = a=b."},
		{"comparison keeps later equals", "IF a=1 THEN b=2.", false, "IF a = 1 THEN b=2."},
		{"plain line rewrites all", "RUN p (a=1, b=2).", false, "RUN p (a = 1, b = 2)."},
		{"assign mode", "a=b=c", true, "a = b=c"},
		{"relational operators untouched", "x = a <= b.", false, "x = a <= b."},
		{"string untouched", `x = "a=b".`, false, `x = "a=b".`},
		{"trailing equals", "x =", false, "x ="},
		{"no equals", "RUN p.", false, "RUN p."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeEquals(tt.in, tt.assign))
		})
	}
}

func TestAlignAssignment(t *testing.T) {
	got, ok := alignAssignment(`assign cName = "a"`, 8)
	assert.True(t, ok)
	assert.Equal(t, `assign cName    = "a"`, got)

	got, ok = alignAssignment(`cAddr = "b".`, 8)
	assert.True(t, ok)
	assert.Equal(t, `       cAddr    = "b".`, got)

	_, ok = alignAssignment(`RUN p.`, 8)
	assert.False(t, ok)
}

func TestAssignFieldWidth(t *testing.T) {
	w, ok := assignFieldWidth(`assign cName = "a"`)
	assert.True(t, ok)
	assert.Equal(t, 5, w)

	_, ok = assignFieldWidth(`assign`)
	assert.False(t, ok)

	_, ok = assignFieldWidth(`assignment = 1`)
	assert.False(t, ok)
}

func TestIsAssignContinuation(t *testing.T) {
	assert.True(t, isAssignContinuation("cName = 1"))
	assert.True(t, isAssignContinuation("customer.name = 1."))
	assert.False(t, isAssignContinuation("RUN p."))
	assert.False(t, isAssignContinuation("/* x = 1 */"))
	assert.False(t, isAssignContinuation("a <= b"))
}
