package translationloader

import (
	"context"
	"sync"
)

// TranslationSource is anything a Translator can ask for a message.
// *Registry is a TranslationSource.
type TranslationSource interface {
	Name() string
	Translate(ctx context.Context, key Key, replacements map[string]any) (string, bool)
}

// Translator asks its sources for messages in the order they were added.
// It is safe for concurrent use.
type Translator struct {
	mu      sync.RWMutex
	sources []TranslationSource
}

var global = NewTranslator()

// Global returns the process wide translator that directories register to by default.
func Global() *Translator {
	return global
}

func NewTranslator() *Translator {
	return &Translator{}
}

// AddSource adds src. It reports false if src was already added.
func (t *Translator) AddSource(src TranslationSource) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.sources {
		if s == src {
			return false
		}
	}

	t.sources = append(t.sources, src)

	return true
}

// RemoveSource removes src. It reports false if src was not added.
func (t *Translator) RemoveSource(src TranslationSource) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, s := range t.sources {
		if s == src {
			t.sources = append(t.sources[:i:i], t.sources[i+1:]...)
			return true
		}
	}

	return false
}

// Sources returns the sources in lookup order.
func (t *Translator) Sources() []TranslationSource {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return append([]TranslationSource(nil), t.sources...)
}

// Translate returns the message of the first source that knows the key.
func (t *Translator) Translate(ctx context.Context, key Key, replacements map[string]any) (string, bool) {
	for _, src := range t.Sources() {
		if msg, ok := src.Translate(ctx, key, replacements); ok {
			return msg, true
		}
	}

	return "", false
}

// Message is like Translate but falls back to the key.
func (t *Translator) Message(ctx context.Context, key Key, replacements map[string]any) string {
	msg, ok := t.Translate(ctx, key, replacements)
	if !ok {
		return string(key)
	}

	return msg
}
