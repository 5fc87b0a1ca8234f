package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dymsrun/dyms/lexer"
)

func TestTokenize_BasicArithmetic(t *testing.T) {
	tokens := lexer.Tokenize("1 + 2 * 3")
	require.Len(t, tokens, 6) // 1 + 2 * 3 EOF

	assert.Equal(t, lexer.Number, tokens[0].Type)
	assert.Equal(t, "1", tokens[0].Value)
	assert.Equal(t, lexer.BinaryOperator, tokens[1].Type)
	assert.Equal(t, "+", tokens[1].Value)
	assert.Equal(t, lexer.EOF, tokens[5].Type)
}

func TestTokenize_Keywords(t *testing.T) {
	tokens := lexer.Tokenize("let x = true")
	require.Len(t, tokens, 5)
	assert.Equal(t, lexer.Let, tokens[0].Type)
	assert.Equal(t, lexer.Identifier, tokens[1].Type)
	assert.Equal(t, lexer.Equals, tokens[2].Type)
	assert.Equal(t, lexer.True, tokens[3].Type)
}

func TestTokenize_CompoundOperators(t *testing.T) {
	cases := []struct {
		src  string
		want lexer.TokenType
	}{
		{"+=", lexer.PlusEquals},
		{"-=", lexer.MinusEquals},
		{"*=", lexer.StarEquals},
		{"/=", lexer.SlashEquals},
		{"%=", lexer.PercentEquals},
		{"++", lexer.Increment},
		{"--", lexer.Decrement},
		{"==", lexer.ComparisonOperator},
		{"!=", lexer.ComparisonOperator},
		{"&&", lexer.LogicalOperator},
		{"||", lexer.LogicalOperator},
		{"=>", lexer.Arrow},
		{"..", lexer.DotDot},
		{"..=", lexer.DotDotEq},
	}
	for _, c := range cases {
		tokens := lexer.Tokenize(c.src)
		require.GreaterOrEqual(t, len(tokens), 1, c.src)
		assert.Equal(t, c.want, tokens[0].Type, c.src)
		assert.Equal(t, c.src, tokens[0].Value, c.src)
	}
}

func TestTokenize_String(t *testing.T) {
	tokens := lexer.Tokenize(`"hello\nworld"`)
	require.Len(t, tokens, 2)
	assert.Equal(t, lexer.String, tokens[0].Type)
	assert.Equal(t, "hello\nworld", tokens[0].Value)
}

func TestTokenize_StringInterpolationMarkerPreserved(t *testing.T) {
	tokens := lexer.Tokenize(`"x = ${x + 1}"`)
	require.Len(t, tokens, 2)
	assert.Equal(t, lexer.String, tokens[0].Type)
	assert.Equal(t, "x = ${x + 1}", tokens[0].Value)
}

func TestTokenize_Float(t *testing.T) {
	tokens := lexer.Tokenize("3.14")
	require.Len(t, tokens, 2)
	assert.Equal(t, lexer.Number, tokens[0].Type)
	assert.Equal(t, "3.14", tokens[0].Value)
}

func TestTokenize_CommentsSkipped(t *testing.T) {
	tokens := lexer.Tokenize("1 // comment\n2 /* block */ 3")
	require.Len(t, tokens, 4)
	assert.Equal(t, "1", tokens[0].Value)
	assert.Equal(t, "2", tokens[1].Value)
	assert.Equal(t, "3", tokens[2].Value)
}

func TestTokenize_LineAndColumnTracking(t *testing.T) {
	tokens := lexer.Tokenize("a\nb")
	require.Len(t, tokens, 3)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[1].Line)
}

func TestTokenize_EnumHashAndPunctuation(t *testing.T) {
	tokens := lexer.Tokenize("Type#Variant(1, 2)")
	types := make([]lexer.TokenType, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Contains(t, types, lexer.Hash)
	assert.Contains(t, types, lexer.OpenParen)
	assert.Contains(t, types, lexer.Comma)
	assert.Contains(t, types, lexer.CloseParen)
}
