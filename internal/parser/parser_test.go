package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	source := "I have :count|plural(=0 {No apples} =1-2 {Apple} other {# apples (# that is)}) and will attempt to also get more :fruit|capitalize and :cookie|replace|capitalize."

	message, err := Parse(source)
	require.NoError(t, err)

	require.Len(t, message.Ops, 7)
	require.Equal(t, LiteralOp{Value: "I have "}, message.Ops[0])

	replacement, ok := message.Ops[1].(ReplacementOp)
	require.True(t, ok)
	require.Equal(t, "count", replacement.Key)

	plural, ok := replacement.Transformers[0].(PluralTransformer)
	require.True(t, ok)
	require.Len(t, plural.Cases, 2)
	require.Len(t, plural.Other, 4)

	require.Equal(t, OpPluralCaseTypeExact, plural.Cases[0].Type)
	require.Equal(t, OpPluralCaseTypeRange, plural.Cases[1].Type)
	require.Equal(t, 1, plural.Cases[1].A)
	require.Equal(t, 2, plural.Cases[1].B)

	require.Equal(t, []string{"count", "fruit", "cookie"}, message.Placeholders())
}

func TestParseRawRoundTrip(t *testing.T) {
	sources := []string{
		"Welcome :user|capitalize",
		"Plain text",
		"Meet at 12:30",
		`Escaped \:user`,
		":count|plural(=0 {none} =2-4 {few} other {# items})",
		":name|lower|upper",
		"Hello {0}, you have {1}|plural(=1 {one message} other {# messages})",
		`Escaped \{0}`,
		"Braces {x} stay",
	}

	for _, source := range sources {
		t.Run(source, func(t *testing.T) {
			message, err := Parse(source)
			require.NoError(t, err)
			require.Equal(t, source, message.Raw())
		})
	}
}

func TestParsePositional(t *testing.T) {
	message, err := Parse("{0} wrote :title|capitalize")
	require.NoError(t, err)

	require.Equal(t, ReplacementOp{Key: "0", Positional: true}, message.Ops[0])
	require.Equal(t, "{0}", message.Ops[0].(ReplacementOp).Placeholder())
	require.Equal(t, []string{"0", "title"}, message.Placeholders())
}

func TestParsePluralErrors(t *testing.T) {
	_, err := Parse(":count|plural(=0 {none})")
	require.Error(t, err)

	_, err = Parse(":count|plural(=5-2 {x} other {y})")
	require.Error(t, err)
}

func TestPluralSelect(t *testing.T) {
	message, err := Parse(":count|plural(=0 {none} =1-3 {few} other {many})")
	require.NoError(t, err)

	plural := message.Ops[0].(ReplacementOp).Transformers[0].(PluralTransformer)

	require.Equal(t, []Op{LiteralOp{Value: "none"}}, plural.Select(0))
	require.Equal(t, []Op{LiteralOp{Value: "few"}}, plural.Select(2))
	require.Equal(t, []Op{LiteralOp{Value: "many"}}, plural.Select(10))
}
