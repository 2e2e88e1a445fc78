package i18nbundle

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/SLASH2NL/translationloader"
)

func loadTestBundle(t *testing.T) *Source {
	fs := afero.NewBasePathFs(afero.NewOsFs(), "./testdata")

	bundle, err := LoadBundle(fs, "/", translationloader.Locale{Language: "en"})
	require.NoError(t, err)

	return NewSource("i18n", bundle)
}

func TestSourceTranslate(t *testing.T) {
	src := loadTestBundle(t)
	require.Equal(t, "i18n", src.Name())
	require.NotNil(t, src.Bundle())

	en := translationloader.WithLanguage(context.Background(), "en")
	nl := translationloader.WithLanguage(context.Background(), "nl")

	msg, ok := src.Translate(en, "greeting", map[string]any{"name": "John"})
	require.True(t, ok)
	require.Equal(t, "Hello John", msg)

	msg, ok = src.Translate(nl, "greeting", map[string]any{"name": "Jan"})
	require.True(t, ok)
	require.Equal(t, "Hallo Jan", msg)

	// Falls back to the default language of the bundle.
	msg, ok = src.Translate(nl, "apples", map[string]any{"count": 1})
	require.True(t, ok)
	require.Equal(t, "1 apple", msg)

	msg, ok = src.Translate(context.Background(), "apples", map[string]any{"count": 3})
	require.True(t, ok)
	require.Equal(t, "3 apples", msg)

	_, ok = src.Translate(en, "unknown", nil)
	require.False(t, ok)

	_, ok = src.Translate(en, "", nil)
	require.False(t, ok)
}

func TestSourceInTranslator(t *testing.T) {
	en := translationloader.Locale{Language: "en"}

	r := translationloader.NewRegistry("registry", translationloader.WithDefaultLocale(en))
	require.NoError(t, r.Register(en, "greeting", "Welcome :name"))

	tr := translationloader.NewTranslator()
	tr.AddSource(r)
	tr.AddSource(loadTestBundle(t))

	ctx := translationloader.WithLanguage(context.Background(), "en")

	require.Equal(t, "Welcome John", tr.Message(ctx, "greeting", map[string]any{"name": "John"}))
	require.Equal(t, "2 apples", tr.Message(ctx, "apples", map[string]any{"count": 2}))
}

func TestLoadBundleErrors(t *testing.T) {
	_, err := LoadBundle(afero.NewMemMapFs(), "/", translationloader.Locale{})
	require.Error(t, err)

	_, err = LoadBundle(afero.NewMemMapFs(), "missing", translationloader.Locale{Language: "en"})
	require.Error(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "i18n/active.en.toml", []byte("= broken"), 0o644))

	_, err = LoadBundle(fs, "i18n", translationloader.Locale{Language: "en"})
	require.Error(t, err)
}
