package translationloader

import "errors"

var (
	// ErrInvalidLocale is returned when a string can not be parsed into a Locale.
	ErrInvalidLocale = errors.New("invalid locale")
	// ErrNotLoaded is returned when an operation requires loaded messages.
	ErrNotLoaded = errors.New("not loaded")
	// ErrUnsupportedFormat is returned when no codec is registered for a file extension.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrDuplicateKey is returned when a message key is registered twice for the same locale.
	ErrDuplicateKey = errors.New("duplicate message key")
	// ErrDuplicateLocale is returned when a directory holds more than one file for a locale.
	ErrDuplicateLocale = errors.New("duplicate locale")
	// ErrKeyConflict is returned when a message would replace a section of nested messages.
	ErrKeyConflict = errors.New("message key conflicts with a section")
)
