package translationloader

import (
	"fmt"
	"regexp"
)

// DefaultMatcher accepts every file whose name starts with a locale and ends with an extension
// that has a registered codec, e.g. en.yml, ja_JP.properties or de.messages.toml.
var DefaultMatcher FileMatcher = extensionMatcher{}

// FileMatcher is an interface that is used to check if a given file in a directory
// should be loaded, and to get the locale of its messages from the file name.
type FileMatcher interface {
	IsMatch(name string) bool
	Locale(name string) (Locale, error)
}

type extensionMatcher struct{}

func (extensionMatcher) IsMatch(name string) bool {
	_, ok := CodecFor(Extension(name))
	return ok
}

func (extensionMatcher) Locale(name string) (Locale, error) {
	return LocaleFromFileName(name)
}

// NewRegexMatcher creates a new RegexMatcher with the given regex.
func NewRegexMatcher(re *regexp.Regexp) *RegexMatcher {
	return &RegexMatcher{re: re}
}

// RegexMatcher matches all files in the directory that match the regex.
// The first capture group is used to extract the locale.
type RegexMatcher struct {
	re *regexp.Regexp
}

func (m *RegexMatcher) IsMatch(name string) bool {
	return m.re.MatchString(name)
}

func (m *RegexMatcher) Locale(name string) (Locale, error) {
	match := m.re.FindStringSubmatch(name)
	if len(match) < 2 {
		return Locale{}, fmt.Errorf("regex is missing a capture group")
	}

	return ParseLocale(match[1])
}
