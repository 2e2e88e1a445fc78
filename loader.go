package translationloader

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Loader imports the messages of one locale from a Source.
//
// Nested sections of the source become dotted message keys. The root key "v" holds
// the version of the translation and is not a message.
type Loader struct {
	locale Locale
	source Source

	mu       sync.RWMutex
	doc      map[string]any
	messages map[string]string
	version  string
	loaded   bool
	modified bool
}

// NewLoader creates a loader that reads messages of the locale from source.
func NewLoader(locale Locale, source Source) *Loader {
	return &Loader{
		locale:   locale,
		source:   source,
		messages: make(map[string]string),
	}
}

type loaderOptions struct {
	locale *Locale
	codec  Codec
}

type LoaderOpt func(o *loaderOptions)

// WithLoaderLocale sets the locale instead of parsing it from the file name.
func WithLoaderLocale(l Locale) LoaderOpt {
	return func(o *loaderOptions) {
		o.locale = &l
	}
}

// WithLoaderCodec sets the codec instead of choosing it from the file extension.
func WithLoaderCodec(c Codec) LoaderOpt {
	return func(o *loaderOptions) {
		o.codec = c
	}
}

// NewFileLoader creates a loader for the file at path. The locale is parsed from the
// file name and the codec is chosen by extension unless set with options.
func NewFileLoader(fs afero.Fs, path string, opts ...LoaderOpt) (*Loader, error) {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	locale := Locale{}
	if o.locale != nil {
		locale = *o.locale
	} else {
		l, err := LocaleFromFileName(filepath.Base(path))
		if err != nil {
			return nil, fmt.Errorf("unable to parse locale of %q: %w", path, err)
		}
		locale = l
	}

	if o.codec != nil {
		return NewLoader(locale, NewFileSourceWithCodec(fs, path, o.codec)), nil
	}

	source, err := NewFileSource(fs, path)
	if err != nil {
		return nil, err
	}

	return NewLoader(locale, source), nil
}

// Load reads the source and replaces all messages. IsLoaded reports true only
// if the last Load succeeded.
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.loaded = false
	l.modified = false
	l.version = ""
	l.doc = nil
	l.messages = make(map[string]string)

	doc, err := l.source.Load()
	if err != nil {
		return fmt.Errorf("unable to load messages from %s: %w", l.source.Name(), err)
	}

	flatten(doc, "", l.messages)

	if v, ok := doc[VersionKey]; ok && v != nil {
		l.version = stringify(v)
	}

	l.doc = doc
	l.loaded = true

	return nil
}

func (l *Loader) IsLoaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.loaded
}

func (l *Loader) IsModified() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.modified
}

func (l *Loader) Locale() Locale {
	return l.locale
}

// Name returns the name of the source, usually its file path.
func (l *Loader) Name() string {
	return l.source.Name()
}

// Version returns the version of the translation, or an empty string if not loaded.
func (l *Loader) Version() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.version
}

// SetVersion changes the version. The loader is modified if the version changed.
func (l *Loader) SetVersion(version string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.version != version {
		l.version = version
		l.modified = true
	}
}

// Messages returns a copy of the messages keyed by message key.
func (l *Loader) Messages() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]string, len(l.messages))
	for k, v := range l.messages {
		out[k] = v
	}

	return out
}

func (l *Loader) Message(key string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	msg, ok := l.messages[key]
	return msg, ok
}

// Merge adds the messages of other that this loader is missing and returns how many
// were added. Existing messages are never replaced and other is not changed.
func (l *Loader) Merge(other *Loader) int {
	if other == l {
		return 0
	}

	missing := other.Messages()

	l.mu.Lock()
	defer l.mu.Unlock()

	added := 0
	for key, msg := range missing {
		if _, ok := l.messages[key]; ok {
			continue
		}

		l.messages[key] = msg
		added++
	}

	if added > 0 {
		l.modified = true
	}

	return added
}

// Set adds or replaces a message. The loader is modified if the message changed.
func (l *Loader) Set(key, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.messages[key]; ok && existing == msg {
		return
	}

	l.messages[key] = msg
	l.modified = true
}

// Remove deletes a message. It reports false if there was no message for the key.
func (l *Loader) Remove(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.messages[key]; !ok {
		return false
	}

	delete(l.messages, key)
	l.modified = true

	return true
}

// Save writes the messages and the version back to the source if the loader is modified.
func (l *Loader) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.modified {
		return nil
	}

	if !l.loaded {
		return fmt.Errorf("unable to save %s: %w", l.source.Name(), ErrNotLoaded)
	}

	doc := cloneDocument(l.doc)

	// Only write what changed so lists and value types in the file are kept.
	current := make(map[string]string)
	flatten(doc, "", current)

	for _, key := range sortedKeys(current) {
		if _, ok := l.messages[key]; !ok {
			deletePath(doc, key)
		}
	}

	for _, key := range sortedKeys(l.messages) {
		if msg, ok := current[key]; ok && msg == l.messages[key] {
			continue
		}

		if err := setPath(doc, key, l.messages[key]); err != nil {
			return fmt.Errorf("unable to save %s: %w", l.source.Name(), err)
		}
	}

	if v, ok := doc[VersionKey]; l.version != "" && (!ok || v == nil || stringify(v) != l.version) {
		doc[VersionKey] = l.version
	}

	if err := l.source.Save(doc); err != nil {
		return fmt.Errorf("unable to save messages to %s: %w", l.source.Name(), err)
	}

	l.doc = doc
	l.modified = false

	return nil
}

// Register registers all messages to the registry under the locale of the loader.
func (l *Loader) Register(r *Registry) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.loaded {
		return fmt.Errorf("unable to register %s: %w", l.source.Name(), ErrNotLoaded)
	}

	if err := r.RegisterAll(l.locale, l.messages); err != nil {
		return fmt.Errorf("unable to register %s: %w", l.source.Name(), err)
	}

	return nil
}
