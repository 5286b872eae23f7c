package basic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) []Token {
	toks, err := NewLexer(src, 10).Tokenize()
	require.NoError(t, err)
	return toks
}

func TestLexerNumbersAndScientificNotation(t *testing.T) {
	toks := tokenize(t, "3.14 1.5E10 7")
	require.Len(t, toks, 4) // 3 numbers + EOF
	assert.Equal(t, 3.14, toks[0].Num)
	assert.Equal(t, 1.5e10, toks[1].Num)
	assert.Equal(t, 7.0, toks[2].Num)
	assert.Equal(t, EOF, toks[3].Kind)
}

func TestLexerQuestionMarkAliasesPrint(t *testing.T) {
	toks := tokenize(t, "? A$")
	require.Len(t, toks, 3)
	assert.Equal(t, Keyword, toks[0].Kind)
	assert.Equal(t, "PRINT", toks[0].Text)
	assert.Equal(t, "A$", toks[1].Text)
}

func TestLexerIdentifiersUppercased(t *testing.T) {
	toks := tokenize(t, "count$ = 1")
	assert.Equal(t, "COUNT$", toks[0].Text)
}

func TestLexerStringLiteral(t *testing.T) {
	toks := tokenize(t, `"HELLO, WORLD"`)
	require.Len(t, toks, 2)
	assert.Equal(t, String, toks[0].Kind)
	assert.Equal(t, "HELLO, WORLD", toks[0].Text)
}

func TestLexerUnterminatedStringIsSyntaxError(t *testing.T) {
	_, err := NewLexer(`"oops`, 1).Tokenize()
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
}

func TestLexerTwoCharOperators(t *testing.T) {
	toks := tokenize(t, "A <= B <> C >= D")
	var ops []string
	for _, tok := range toks {
		if tok.Kind == Op {
			ops = append(ops, tok.Text)
		}
	}
	assert.Equal(t, []string{"<=", "<>", ">="}, ops)
}

func TestLexerKeywordVsIdentifier(t *testing.T) {
	toks := tokenize(t, "FOR FORK")
	assert.Equal(t, Keyword, toks[0].Kind)
	assert.Equal(t, Ident, toks[1].Kind)
	assert.Equal(t, "FORK", toks[1].Text)
}
