package basic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProgramSortsLinesAscending(t *testing.T) {
	prog, err := ParseProgram("20 PRINT 2\n10 PRINT 1\n")
	require.NoError(t, err)
	require.Len(t, prog.Lines, 2)
	assert.Equal(t, 10, prog.Lines[0].Number)
	assert.Equal(t, 20, prog.Lines[1].Number)
}

func TestParseProgramDuplicateLineReplaces(t *testing.T) {
	prog, err := ParseProgram("10 PRINT 1\n10 PRINT 2\n")
	require.NoError(t, err)
	require.Len(t, prog.Lines, 1)
	stmt := prog.Lines[0].Statements[0].(PrintStmt)
	assert.Equal(t, 2.0, stmt.Items[0].Expr.(NumberExpr).Value)
}

func TestParseColonSeparatedStatements(t *testing.T) {
	prog, err := ParseProgram("10 LET A = 1: LET B = 2\n")
	require.NoError(t, err)
	require.Len(t, prog.Lines[0].Statements, 2)
}

func TestParseExpressionPrecedence(t *testing.T) {
	prog, err := ParseProgram("10 PRINT 2 + 3 * 4\n")
	require.NoError(t, err)
	stmt := prog.Lines[0].Statements[0].(PrintStmt)
	bin := stmt.Items[0].Expr.(BinaryExpr)
	assert.Equal(t, "+", bin.Op)
	assert.Equal(t, NumberExpr{Value: 2}, bin.Left)
	rhs := bin.Right.(BinaryExpr)
	assert.Equal(t, "*", rhs.Op)
}

func TestParseDataValuesCollectedInProgramOrder(t *testing.T) {
	prog, err := ParseProgram("10 DATA 1, 2\n5 DATA 0\n")
	require.NoError(t, err)
	require.Len(t, prog.DataValues, 3)
	assert.Equal(t, 0.0, prog.DataValues[0].Num)
	assert.Equal(t, 1.0, prog.DataValues[1].Num)
	assert.Equal(t, 2.0, prog.DataValues[2].Num)
}

func TestParseForNext(t *testing.T) {
	prog, err := ParseProgram("10 FOR I = 1 TO 10 STEP 2\n20 NEXT I\n")
	require.NoError(t, err)
	forStmt := prog.Lines[0].Statements[0].(ForStmt)
	assert.Equal(t, "I", forStmt.Var)
	require.NotNil(t, forStmt.Step)
	assert.Equal(t, 2.0, forStmt.Step.(NumberExpr).Value)

	next := prog.Lines[1].Statements[0].(NextStmt)
	assert.Equal(t, []string{"I"}, next.Vars)
}

func TestParseIfThenTail(t *testing.T) {
	prog, err := ParseProgram("10 IF A = 1 THEN PRINT \"YES\"\n")
	require.NoError(t, err)
	ifStmt := prog.Lines[0].Statements[0].(IfStmt)
	require.Len(t, ifStmt.Then, 1)
	_, ok := ifStmt.Then[0].(PrintStmt)
	assert.True(t, ok)
}

func TestParseMalformedLineIsSyntaxError(t *testing.T) {
	_, err := ParseProgram("10 PRINT (\n")
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
}

func TestParseOnGosub(t *testing.T) {
	prog, err := ParseProgram("10 ON X GOSUB 100, 200\n")
	require.NoError(t, err)
	on := prog.Lines[0].Statements[0].(OnStmt)
	assert.True(t, on.IsGosub)
	assert.Len(t, on.Targets, 2)
}
