// Copyright © 2024 The ELPS authors

package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepDoesNotModifyInputState(t *testing.T) {
	f := Default()
	st := NewState()
	st, out := f.Step(st, "DO:")
	require.Equal(t, []string{"do:"}, out)
	require.Equal(t, 1, st.Depth())

	inner, out := f.Step(st, "DO:")
	assert.Equal(t, []string{"  do:"}, out)
	assert.Equal(t, 2, inner.Depth())

	// Resuming from the saved state gives the same result again.
	closed, out := f.Step(st, "END.")
	assert.Equal(t, []string{"end."}, out)
	assert.Equal(t, 0, closed.Depth())
	assert.Equal(t, 1, st.Depth())
	assert.Equal(t, 2, inner.Depth())
}

func TestStepBuffersChains(t *testing.T) {
	f := Default()
	st := NewState()
	st, out := f.Step(st, "IF a = 1")
	assert.Empty(t, out)
	assert.Equal(t, ModeConditionalChain, st.Mode())

	st, out = f.Step(st, "AND b = 2 THEN")
	assert.Empty(t, out)

	st, out = f.Step(st, "x = 1.")
	assert.Equal(t, []string{"if    a = 1", "and   b = 2 then", "  x = 1."}, out)
	assert.Equal(t, ModeNormal, st.Mode())
	assert.Equal(t, 0, st.Level())
	assert.Equal(t, 3, st.Line())
}

func TestStepModes(t *testing.T) {
	f := Default()
	tests := []struct {
		line string
		mode Mode
	}{
		{"ASSIGN a = 1", ModeAssign},
		{"DEFINE VARIABLE x AS CHARACTER", ModeDefine},
		{"DEF NEW SHARED VAR x AS CHAR", ModeDefine},
		{"FIND FIRST c", ModeFindClause},
		{"x = CAN-FIND(FIRST c)", ModeFindClause},
		{"FOR EACH c", ModeForEachClause},
		{"FOR LAST-OF c", ModeForEachClause},
		{"REPEAT WHILE x", ModeConditionalChain},
		{"DEFINE VARIABLE x AS CHARACTER.", ModeNormal},
		{"RUN p.", ModeNormal},
	}
	for _, tt := range tests {
		st, _ := f.Step(NewState(), tt.line)
		assert.Equal(t, tt.mode, st.Mode(), "mode after %q", tt.line)
	}
}

func TestBlockEndClosesModes(t *testing.T) {
	f := Default()
	st := NewState()
	for _, l := range []string{"DO:", "ASSIGN a = 1"} {
		st, _ = f.Step(st, l)
	}
	require.Equal(t, ModeAssign, st.Mode())
	st, out := f.Step(st, "END.")
	assert.Equal(t, []string{"end."}, out)
	assert.Equal(t, ModeNormal, st.Mode())
}

func TestFinishFlushesBuffer(t *testing.T) {
	f := Default()
	st, out := f.Step(NewState(), "FIND FIRST c WHERE c.a = 1 NO-ERROR.")
	assert.Equal(t, []string{"find first c"}, out)
	st, out = f.Finish(st)
	assert.Equal(t, []string{"  where c.a = 1 no-error."}, out)
	assert.Equal(t, ModeNormal, st.Mode())

	_, out = f.Finish(NewState())
	assert.Empty(t, out)
}

func TestFormatStateBlockBalance(t *testing.T) {
	f := Default()
	_, st := f.FormatState("DO:\nIF a THEN DO:\nx = 1.\nEND.\n")
	assert.Equal(t, []int{1}, st.OpenBlocks())
	assert.Empty(t, st.UnmatchedEnds())

	_, st = f.FormatState("x = 1.\nEND.\nDO:\nEND.\nEND.")
	assert.Empty(t, st.OpenBlocks())
	assert.Equal(t, []int{2, 5}, st.UnmatchedEnds())
}

func TestCommentedOutEndKeepsBlocks(t *testing.T) {
	f := Default()
	_, st := f.FormatState("PROCEDURE p:\nDO:\n/* old code:\nEND.\nFIND x WHERE x.a = 1 AND x.b = 2.\n*/\nx = 1.\nEND.\nEND PROCEDURE.")
	assert.Empty(t, st.OpenBlocks())
	assert.Empty(t, st.UnmatchedEnds())
	assert.False(t, st.InLiteral())
}

func TestStepInsideLiteral(t *testing.T) {
	f := Default()
	st, out := f.Step(NewState(), `MESSAGE "a`)
	assert.Equal(t, []string{`message "a`}, out)
	assert.True(t, st.InLiteral())

	st, out = f.Step(st, `  END.  `)
	assert.Equal(t, []string{`  END.  `}, out)
	assert.True(t, st.InLiteral())
	assert.Empty(t, st.UnmatchedEnds())

	st, out = f.Step(st, `b".`)
	assert.Equal(t, []string{`b".`}, out)
	assert.False(t, st.InLiteral())
	assert.Equal(t, ModeNormal, st.Mode())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "normal", ModeNormal.String())
	assert.Equal(t, "for-each-clause", ModeForEachClause.String())
	assert.Equal(t, "conditional-chain", ModeConditionalChain.String())
	assert.Equal(t, "unknown", Mode(42).String())
}
