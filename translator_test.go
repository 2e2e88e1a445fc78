package translationloader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslator(t *testing.T) {
	en := Locale{Language: "en"}

	first := NewRegistry("first", WithDefaultLocale(en))
	require.NoError(t, first.Register(en, "hello", "Hello from first"))

	second := NewRegistry("second", WithDefaultLocale(en))
	require.NoError(t, second.RegisterAll(en, map[string]string{
		"hello":   "Hello from second",
		"goodbye": "Goodbye :user|capitalize",
	}))

	tr := NewTranslator()
	require.True(t, tr.AddSource(first))
	require.True(t, tr.AddSource(second))
	require.False(t, tr.AddSource(first))
	require.Len(t, tr.Sources(), 2)

	ctx := WithLanguage(context.Background(), "en")

	// The first source that knows the key wins.
	require.Equal(t, "Hello from first", tr.Message(ctx, "hello", nil))
	require.Equal(t, "Goodbye John", tr.Message(ctx, "goodbye", map[string]any{"user": "john"}))

	_, ok := tr.Translate(ctx, "unknown", nil)
	require.False(t, ok)
	require.Equal(t, "unknown", tr.Message(ctx, "unknown", nil))

	require.True(t, tr.RemoveSource(first))
	require.False(t, tr.RemoveSource(first))
	require.Equal(t, "Hello from second", tr.Message(ctx, "hello", nil))
	require.Equal(t, []TranslationSource{second}, tr.Sources())
}

func TestGlobalTranslator(t *testing.T) {
	require.Same(t, Global(), Global())
}
