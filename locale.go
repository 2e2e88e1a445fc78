package translationloader

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

var (
	localeKey = ctxKey("locale")
	langRe    = regexp.MustCompile(`(?i)([a-z]{2,8})([-_][a-z]{4})?([-_][a-z]{2}|[-_]\d{3})?`)
)

// Locale identifies the language of a set of messages.
// Region and Variant are optional.
type Locale struct {
	Language string
	Region   string
	Variant  string
}

// ParseLocale parses strings like "en", "ja_JP", "en-US" or "de_DE_1996" into a Locale.
// The language and region must be valid ISO codes, the variant is kept as-is.
func ParseLocale(raw string) (Locale, error) {
	if raw == "" {
		return Locale{}, fmt.Errorf("%w: empty string", ErrInvalidLocale)
	}

	segments := strings.SplitN(strings.ReplaceAll(raw, "-", "_"), "_", 3)

	base, err := language.ParseBase(segments[0])
	if err != nil {
		return Locale{}, fmt.Errorf("%w: %q: %w", ErrInvalidLocale, raw, err)
	}

	l := Locale{Language: base.String()}

	// An empty region is allowed when a variant follows, e.g. "en__POSIX".
	if len(segments) > 1 && (segments[1] != "" || len(segments) == 2) {
		region, err := language.ParseRegion(segments[1])
		if err != nil {
			return Locale{}, fmt.Errorf("%w: %q: %w", ErrInvalidLocale, raw, err)
		}

		l.Region = region.String()
	}

	if len(segments) > 2 {
		l.Variant = segments[2]
	}

	return l, nil
}

// MustParseLocale is like ParseLocale but panics if the locale can not be parsed.
func MustParseLocale(raw string) Locale {
	l, err := ParseLocale(raw)
	if err != nil {
		panic(err)
	}

	return l
}

// LocaleFromFileName parses the locale from everything before the first dot of the file name.
// Both en.yml and en.example.yml resolve to en.
func LocaleFromFileName(name string) (Locale, error) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))

	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	return ParseLocale(base)
}

// Extension returns the text after the last dot of the file name, or an empty string.
func Extension(name string) string {
	if name == "" {
		return ""
	}

	base := path.Base(strings.ReplaceAll(name, "\\", "/"))

	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}

	return base[i+1:]
}

// String returns the locale joined with underscores, as used in file names.
func (l Locale) String() string {
	var b strings.Builder
	b.WriteString(l.Language)

	if l.Region != "" || l.Variant != "" {
		b.WriteByte('_')
		b.WriteString(l.Region)
	}

	if l.Variant != "" {
		b.WriteByte('_')
		b.WriteString(l.Variant)
	}

	return b.String()
}

// Tag returns the BCP 47 tag of the locale. The variant is dropped if it is not a valid BCP 47 variant.
func (l Locale) Tag() language.Tag {
	if l.Empty() {
		return language.Und
	}

	raw := l.Language
	if l.Region != "" {
		raw += "-" + l.Region
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und
	}

	if l.Variant == "" {
		return tag
	}

	variant, err := language.ParseVariant(l.Variant)
	if err != nil {
		return tag
	}

	withVariant, err := language.Compose(tag, variant)
	if err != nil {
		return tag
	}

	return withVariant
}

func (l Locale) Empty() bool {
	return l.Language == "" && l.Region == "" && l.Variant == ""
}

// Match reports whether both locales share a language, and whether they are identical.
func (l Locale) Match(cmp Locale) (match bool, exact bool) {
	if l == cmp {
		return true, true
	}

	if l.Language == cmp.Language {
		return true, false
	}

	return false, false
}

// WithLanguage extracts the first language found in raw and adds it to the ctx.
// raw may be a plain locale or an Accept-Language header.
// If no language can be parsed the ctx is returned unchanged, which makes lookups
// fall back to the default locale.
func WithLanguage(ctx context.Context, raw string) context.Context {
	match := langRe.FindString(raw)
	if match == "" {
		return ctx
	}

	l, err := ParseLocale(match)
	if err != nil {
		return ctx
	}

	return WithLocale(ctx, l)
}

// WithLocale adds the locale to the ctx.
func WithLocale(ctx context.Context, l Locale) context.Context {
	return context.WithValue(ctx, localeKey, l)
}

// FromCtx returns the locale in the ctx or an empty locale if none is set.
func FromCtx(ctx context.Context) Locale {
	l, ok := ctx.Value(localeKey).(Locale)
	if ok {
		return l
	}

	return Locale{}
}

type ctxKey string
