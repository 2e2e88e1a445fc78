package translationloader

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/SLASH2NL/translationloader/internal/parser"
)

// Key is a unique identifier for a translation message.
type Key string

// Args returns the replacements for positional placeholders: the first value
// replaces {0}, the second {1} and so on.
func Args(values ...any) map[string]any {
	replacements := make(map[string]any, len(values))
	for i, v := range values {
		replacements[strconv.Itoa(i)] = v
	}

	return replacements
}

// Registry holds parsed messages per locale and formats them.
// It is safe for concurrent use.
type Registry struct {
	name          string
	defaultLocale Locale

	mu       sync.RWMutex
	messages map[Locale]map[Key]*parser.Message
}

type RegistryOpt func(r *Registry)

// WithDefaultLocale sets the locale that is used when the ctx holds no locale
// or no registered locale matches it.
func WithDefaultLocale(l Locale) RegistryOpt {
	return func(r *Registry) {
		r.defaultLocale = l
	}
}

// NewRegistry creates an empty registry. The name identifies the registry in a Translator.
func NewRegistry(name string, opts ...RegistryOpt) *Registry {
	r := &Registry{
		name:     name,
		messages: make(map[Locale]map[Key]*parser.Message),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Registry) Name() string {
	return r.name
}

func (r *Registry) DefaultLocale() Locale {
	return r.defaultLocale
}

// Register parses template and registers it for the locale.
func (r *Registry) Register(locale Locale, key Key, template string) error {
	return r.RegisterAll(locale, map[string]string{string(key): template})
}

// RegisterAll parses and registers all messages for the locale.
// Nothing is registered if a template can not be parsed or a key is already registered.
func (r *Registry) RegisterAll(locale Locale, messages map[string]string) error {
	parsed := make(map[Key]*parser.Message, len(messages))

	for _, key := range sortedKeys(messages) {
		msg, err := parser.Parse(messages[key])
		if err != nil {
			return fmt.Errorf("unable to parse message %q (%s): %w", key, locale, err)
		}

		parsed[Key(key)] = msg
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	scope, ok := r.messages[locale]
	if !ok {
		scope = make(map[Key]*parser.Message, len(parsed))
	}

	for key := range parsed {
		if _, ok := scope[key]; ok {
			return fmt.Errorf("%w: %q (%s)", ErrDuplicateKey, key, locale)
		}
	}

	for key, msg := range parsed {
		scope[key] = msg
	}

	r.messages[locale] = scope

	return nil
}

// Unregister removes the key from every locale.
func (r *Registry) Unregister(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for locale, scope := range r.messages {
		delete(scope, key)

		if len(scope) == 0 {
			delete(r.messages, locale)
		}
	}
}

// Contains reports whether any locale has a message for the key.
func (r *Registry) Contains(key Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, scope := range r.messages {
		if _, ok := scope[key]; ok {
			return true
		}
	}

	return false
}

// Locales returns the registered locales sorted by their string form.
func (r *Registry) Locales() []Locale {
	r.mu.RLock()
	defer r.mu.RUnlock()

	locales := make([]Locale, 0, len(r.messages))
	for l := range r.messages {
		locales = append(locales, l)
	}

	sortLocales(locales)

	return locales
}

// Translate formats the message for the key in the locale of the ctx.
// A key missing in the resolved locale is looked up in the language only locale
// and then in the default locale. It reports false if none of them has the key.
func (r *Registry) Translate(ctx context.Context, key Key, replacements map[string]any) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, locale := range r.fallbackLocales(ctx) {
		scope := r.messages[locale]

		if msg, ok := scope[key]; ok {
			return newFormatter(locale, scope).format(msg, replacements), true
		}
	}

	return "", false
}

// fallbackLocales returns the registered locales a key is looked up in, in order.
func (r *Registry) fallbackLocales(ctx context.Context) []Locale {
	scoped := r.scopedLocale(ctx)
	if scoped.Empty() {
		return nil
	}

	locales := []Locale{scoped}
	add := func(l Locale) {
		if _, ok := r.messages[l]; !ok {
			return
		}

		for _, existing := range locales {
			if existing == l {
				return
			}
		}

		locales = append(locales, l)
	}

	wanted := FromCtx(ctx)
	if wanted.Empty() {
		wanted = r.defaultLocale
	}

	add(Locale{Language: wanted.Language})
	add(Locale{Language: scoped.Language})
	add(r.defaultLocale)

	return locales
}

// Message formats the message for the key or returns the key if there is none.
func (r *Registry) Message(ctx context.Context, key Key, replacements map[string]any) string {
	msg, ok := r.Translate(ctx, key, replacements)
	if !ok {
		return string(key)
	}

	return msg
}

// Scope returns a registry type with the ctx embedded.
func (r *Registry) Scope(ctx context.Context) *ScopedRegistry {
	return &ScopedRegistry{
		ctx: ctx,
		r:   r,
	}
}

// ScopedLocale returns the registered locale that serves the ctx.
// An exact match wins over a language match, then the default locale is used.
// Returns an empty Locale if no locale can be resolved.
func (r *Registry) ScopedLocale(ctx context.Context) Locale {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.scopedLocale(ctx)
}

func (r *Registry) scopedLocale(ctx context.Context) Locale {
	wanted := FromCtx(ctx)
	if wanted.Empty() {
		wanted = r.defaultLocale
	}

	if wanted.Empty() {
		return Locale{}
	}

	if _, ok := r.messages[wanted]; ok {
		return wanted
	}

	// Sort candidates so the language fallback does not depend on map order.
	candidates := make([]Locale, 0, len(r.messages))
	for l := range r.messages {
		candidates = append(candidates, l)
	}
	sortLocales(candidates)

	for _, l := range candidates {
		if match, _ := l.Match(wanted); match {
			return l
		}
	}

	if _, ok := r.messages[r.defaultLocale]; ok {
		return r.defaultLocale
	}

	return Locale{}
}

// Raw returns the templates of all messages per locale.
func (r *Registry) Raw() map[Locale]map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw := make(map[Locale]map[string]string, len(r.messages))
	for locale, messages := range r.messages {
		raw[locale] = make(map[string]string, len(messages))

		for key, message := range messages {
			raw[locale][string(key)] = message.Raw()
		}
	}

	return raw
}

type ScopedRegistry struct {
	ctx context.Context
	r   *Registry
}

func (s *ScopedRegistry) Message(key Key, replacements map[string]any) string {
	return s.r.Message(s.ctx, key, replacements)
}

func sortLocales(locales []Locale) {
	sort.Slice(locales, func(i, j int) bool {
		return locales[i].String() < locales[j].String()
	})
}

// formatter writes a parsed message with its replacements for one locale.
type formatter struct {
	locale   Locale
	messages map[Key]*parser.Message
	printer  valuePrinter
}

func newFormatter(locale Locale, messages map[Key]*parser.Message) *formatter {
	return &formatter{
		locale:   locale,
		messages: messages,
		printer:  newValuePrinter(locale),
	}
}

func (f *formatter) format(msg *parser.Message, replacements map[string]any) string {
	var b strings.Builder

	for _, op := range msg.Ops {
		switch v := op.(type) {
		case parser.LiteralOp:
			b.WriteString(v.Value)
		case parser.ReplacementOp:
			raw, ok := replacements[v.Key]
			if !ok {
				// If no replacement provided, leave the placeholder as-is.
				b.WriteString(v.Placeholder())
				continue
			}

			b.WriteString(f.transform(raw, v.Transformers))
		}
	}

	return b.String()
}

func (f *formatter) transform(raw any, transformers []parser.Transformer) string {
	value := f.printer.format(raw)

	for _, transformer := range transformers {
		switch t := transformer.(type) {
		case parser.CapitalizeTransformer:
			r, size := utf8.DecodeRuneInString(value)
			if size > 0 {
				value = string(unicode.ToUpper(r)) + value[size:]
			}
		case parser.UpperTransformer:
			value = strings.ToUpper(value)
		case parser.LowerTransformer:
			value = strings.ToLower(value)
		case parser.ReplaceTransformer:
			if rep, ok := f.messages[Key(value)]; ok {
				// Only the literal text of the referenced message is used.
				value = literalText(rep)
			}
		case parser.PluralTransformer:
			count := pluralCount(raw, value)

			var pb strings.Builder
			for _, op := range t.Select(count) {
				switch op := op.(type) {
				case parser.LiteralOp:
					pb.WriteString(op.Value)
				case parser.PluralCountOp:
					pb.WriteString(f.printer.format(count))
				}
			}
			value = pb.String()
		}
	}

	return value
}

// pluralCount returns the count a plural case is selected with. Values that are not
// numbers count as 0.
func pluralCount(raw any, formatted string) int {
	switch v := raw.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	}

	count, err := strconv.Atoi(formatted)
	if err != nil {
		return 0
	}

	return count
}

func literalText(msg *parser.Message) string {
	var b strings.Builder
	for _, op := range msg.Ops {
		switch v := op.(type) {
		case parser.LiteralOp:
			b.WriteString(v.Value)
		case parser.ReplacementOp:
			b.WriteString(v.Placeholder())
		}
	}

	return b.String()
}
