// Package i18nbundle lets a go-i18n bundle answer lookups of a translationloader.Translator.
//
// Applications that already ship go-i18n message files can register them next to
// translation directories while they migrate.
package i18nbundle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/SLASH2NL/translationloader"
)

// PluralCountKey is the replacement that is passed to go-i18n as the plural count.
const PluralCountKey = "count"

// Ensure Source implements the translationloader.TranslationSource interface.
var _ translationloader.TranslationSource = (*Source)(nil)

// Source is a thin wrapper around a go-i18n Bundle.
type Source struct {
	name   string
	bundle *i18n.Bundle
}

func NewSource(name string, bundle *i18n.Bundle) *Source {
	return &Source{name: name, bundle: bundle}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Bundle() *i18n.Bundle {
	return s.bundle
}

// Translate localizes the message for the locale in ctx, falling back to the
// default language of the bundle. replacements are passed as template data.
func (s *Source) Translate(ctx context.Context, key translationloader.Key, replacements map[string]any) (string, bool) {
	if key == "" {
		return "", false
	}

	var languages []string
	if l := translationloader.FromCtx(ctx); !l.Empty() {
		languages = append(languages, l.Tag().String())
	}

	cfg := &i18n.LocalizeConfig{
		MessageID:    string(key),
		TemplateData: replacements,
	}

	if count, ok := replacements[PluralCountKey]; ok {
		cfg.PluralCount = count
	}

	msg, err := i18n.NewLocalizer(s.bundle, languages...).Localize(cfg)
	if err != nil {
		return "", false
	}

	return msg, true
}

// LoadBundle loads every go-i18n message file (toml, yaml, yml or json) in dir.
// The language of a file is taken from its name, e.g. active.en.toml.
func LoadBundle(fs afero.Fs, dir string, defaultLocale translationloader.Locale) (*i18n.Bundle, error) {
	if defaultLocale.Empty() {
		return nil, errors.New("i18nbundle: default locale is required")
	}

	bundle := i18n.NewBundle(defaultLocale.Tag())
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("i18nbundle: unable to read directory %q: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		switch strings.ToLower(translationloader.Extension(entry.Name())) {
		case "toml", "yaml", "yml", "json":
		default:
			continue
		}

		path := filepath.Join(dir, entry.Name())

		buf, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("i18nbundle: unable to read %q: %w", path, err)
		}

		if _, err := bundle.ParseMessageFileBytes(buf, path); err != nil {
			return nil, fmt.Errorf("i18nbundle: unable to parse %q: %w", path, err)
		}
	}

	return bundle, nil
}
