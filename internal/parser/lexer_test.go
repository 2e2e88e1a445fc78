package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLexer(t *testing.T) {
	source := "I have :count|plural(=0 {No apples} =1-2 {Apple} other {# apples}) and will attempt to also get more :fruit|capitalize and :cookie|replace|capitalize."

	tokens, err := runLexer(source)
	require.NoError(t, err)

	require.Len(t, tokens, 26)
	require.Equal(t, literal, tokens[0].TokenType)
	require.Equal(t, replacement, tokens[1].TokenType)
	require.Equal(t, transformer, tokens[2].TokenType)

	for _, token := range tokens {
		t.Logf("Type: %s, Data: %q", token.TokenType, token.Data)
	}
}

func TestLexerPlaceholderNames(t *testing.T) {
	tokens, err := runLexer("Hello :first_name2!")
	require.NoError(t, err)

	require.Len(t, tokens, 3)
	require.Equal(t, Token{TokenType: replacement, Data: "first_name2"}, tokens[1])
	require.Equal(t, Token{TokenType: literal, Data: "!"}, tokens[2])
}

func TestLexerEscapedColon(t *testing.T) {
	tokens, err := runLexer(`Time\:user at 12:30`)
	require.NoError(t, err)

	for _, token := range tokens {
		require.Equal(t, literal, token.TokenType)
	}

	var data string
	for _, token := range tokens {
		data += token.Data
	}
	require.Equal(t, "Time:user at 12:30", data)
}

func TestLexerIndexPlaceholders(t *testing.T) {
	tokens, err := runLexer("Hello {0}|capitalize, {12} and {x} or {3")
	require.NoError(t, err)

	require.Equal(t, []Token{
		{TokenType: literal, Data: "Hello "},
		{TokenType: indexReplacement, Data: "0"},
		{TokenType: transformer, Data: "capitalize"},
		{TokenType: literal, Data: ", "},
		{TokenType: indexReplacement, Data: "12"},
		{TokenType: literal, Data: " and "},
		{TokenType: literal, Data: "{x} or "},
		{TokenType: literal, Data: "{3"},
	}, tokens)

	tokens, err = runLexer(`Literal \{0}`)
	require.NoError(t, err)

	for _, token := range tokens {
		require.Equal(t, literal, token.TokenType)
	}
}

func TestLexerErrors(t *testing.T) {
	cases := map[string]string{
		"unknown transformer": "Hello :user|shout",
		"missing name":        "Hello :user|",
		"missing parenthesis": ":count|plural",
		"missing number":      ":count|plural(= {x} other {y})",
		"unterminated case":   ":count|plural(other {y",
	}

	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runLexer(source)
			require.Error(t, err)
		})
	}
}
