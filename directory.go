package translationloader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Merger returns a loaded Loader that holds the messages a translation file of the
// locale should contain. A nil Loader means there is nothing to merge.
type Merger func(locale Locale) (*Loader, error)

// Directory loads every translation file in a directory into a fresh Registry and adds
// that registry to a Translator.
//
// If a version is set together with a Merger, translation files with a different version
// get the missing messages of the merger loader added and are saved with its version.
type Directory struct {
	fs   afero.Fs
	dir  string
	name string

	newRegistry        func() *Registry
	onDirectoryCreated func(fs afero.Fs, dir string) error
	version            string
	merger             Merger
	translator         *Translator
	matcher            FileMatcher
	logger             *log.Logger

	mu            sync.Mutex
	registry      *Registry
	loadedLocales map[Locale]struct{}
}

type DirectoryOpt func(d *Directory)

// WithRegistryFactory sets the function that creates the registry on every Load.
func WithRegistryFactory(f func() *Registry) DirectoryOpt {
	return func(d *Directory) {
		d.newRegistry = f
	}
}

// OnDirectoryCreated sets a hook that runs after Load created the missing directory,
// e.g. to copy default translation files into it.
func OnDirectoryCreated(f func(fs afero.Fs, dir string) error) DirectoryOpt {
	return func(d *Directory) {
		d.onDirectoryCreated = f
	}
}

// WithVersion sets the expected translation version.
func WithVersion(version string) DirectoryOpt {
	return func(d *Directory) {
		d.version = version
	}
}

// WithMerger sets the Merger that supplies missing messages for outdated files.
func WithMerger(m Merger) DirectoryOpt {
	return func(d *Directory) {
		d.merger = m
	}
}

// WithTranslator sets the translator the registry is added to. Defaults to Global().
func WithTranslator(t *Translator) DirectoryOpt {
	return func(d *Directory) {
		d.translator = t
	}
}

// WithFileMatcher sets the matcher that selects files and parses their locale.
func WithFileMatcher(m FileMatcher) DirectoryOpt {
	return func(d *Directory) {
		d.matcher = m
	}
}

// WithLogger sets the logger for skipped and updated files. Logs are discarded by default.
func WithLogger(l *log.Logger) DirectoryOpt {
	return func(d *Directory) {
		d.logger = l
	}
}

// NewDirectory creates a Directory for dir in fs. name is used for the registries it creates.
func NewDirectory(fs afero.Fs, dir string, name string, opts ...DirectoryOpt) *Directory {
	d := &Directory{
		fs:            fs,
		dir:           dir,
		name:          name,
		translator:    Global(),
		matcher:       DefaultMatcher,
		logger:        log.New(io.Discard, "", 0),
		loadedLocales: make(map[Locale]struct{}),
	}

	d.newRegistry = func() *Registry {
		return NewRegistry(d.name)
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Load unloads previously loaded messages and loads all translation files of the directory.
// The directory is created if it does not exist.
// On error nothing stays registered.
func (d *Directory) Load() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.unload()

	if err := d.createDirectoryIfNotExists(); err != nil {
		return err
	}

	files, err := d.findFiles()
	if err != nil {
		return err
	}

	registry := d.newRegistry()
	loaded := make(map[Locale]struct{}, len(files))

	for _, locale := range sortedLocaleKeys(files) {
		loader, err := NewFileLoader(d.fs, files[locale], WithLoaderLocale(locale))
		if err != nil {
			return err
		}

		if err := loader.Load(); err != nil {
			return err
		}

		if err := d.update(loader); err != nil {
			return err
		}

		if err := loader.Register(registry); err != nil {
			return err
		}

		loaded[locale] = struct{}{}
		d.logger.Printf("loaded %d messages from %s (%s)", len(loader.Messages()), loader.Name(), locale)
	}

	d.registry = registry
	d.loadedLocales = loaded
	d.translator.AddSource(registry)

	return nil
}

// Unload removes the registry from the translator. It is a no-op if nothing is loaded.
func (d *Directory) Unload() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.unload()
}

func (d *Directory) unload() {
	if d.registry != nil {
		d.translator.RemoveSource(d.registry)
	}

	d.registry = nil
	d.loadedLocales = make(map[Locale]struct{})
}

func (d *Directory) Dir() string {
	return d.dir
}

// Registry returns the registry of the last successful Load.
func (d *Directory) Registry() (*Registry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.registry == nil {
		return nil, fmt.Errorf("registry of %q is not created: %w", d.dir, ErrNotLoaded)
	}

	return d.registry, nil
}

// LoadedLocales returns the locales of the last successful Load.
func (d *Directory) LoadedLocales() []Locale {
	d.mu.Lock()
	defer d.mu.Unlock()

	locales := make([]Locale, 0, len(d.loadedLocales))
	for l := range d.loadedLocales {
		locales = append(locales, l)
	}
	sortLocales(locales)

	return locales
}

func (d *Directory) createDirectoryIfNotExists() error {
	isDir, err := afero.IsDir(d.fs, d.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to stat directory %q: %w", d.dir, err)
	}

	if isDir {
		return nil
	}

	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("unable to create directory %q: %w", d.dir, err)
	}

	d.logger.Printf("created directory %s", d.dir)

	if d.onDirectoryCreated != nil {
		if err := d.onDirectoryCreated(d.fs, d.dir); err != nil {
			return fmt.Errorf("directory created hook for %q: %w", d.dir, err)
		}
	}

	return nil
}

// findFiles returns the path of the translation file of every locale in the directory.
func (d *Directory) findFiles() (map[Locale]string, error) {
	entries, err := afero.ReadDir(d.fs, d.dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory %q: %w", d.dir, err)
	}

	files := make(map[Locale]string)
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}

		if !d.matcher.IsMatch(entry.Name()) {
			d.logger.Printf("skipping %s: not a translation file", entry.Name())
			continue
		}

		if _, ok := CodecFor(Extension(entry.Name())); !ok {
			d.logger.Printf("skipping %s: %v", entry.Name(), ErrUnsupportedFormat)
			continue
		}

		locale, err := d.matcher.Locale(entry.Name())
		if err != nil {
			d.logger.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}

		if existing, ok := files[locale]; ok {
			return nil, fmt.Errorf("%w: %q and %q are both %s", ErrDuplicateLocale, filepath.Base(existing), entry.Name(), locale)
		}

		files[locale] = filepath.Join(d.dir, entry.Name())
	}

	return files, nil
}

// update merges missing messages into an outdated translation file and saves it.
func (d *Directory) update(loader *Loader) error {
	if d.merger == nil || d.version == "" || loader.Version() == d.version {
		return nil
	}

	other, err := d.merger(loader.Locale())
	if err != nil {
		return fmt.Errorf("could not get the merger (%s): %w", loader.Locale(), err)
	}

	if other == nil || !other.IsLoaded() {
		return nil
	}

	added := loader.Merge(other)
	loader.SetVersion(other.Version())

	if err := loader.Save(); err != nil {
		return fmt.Errorf("could not save %s: %w", loader.Name(), err)
	}

	d.logger.Printf("updated %s to version %q, added %d messages", loader.Name(), loader.Version(), added)

	return nil
}

// DirectoryMerger returns a Merger that loads the file of the locale from dir in fs.
// Locales without a file are not merged. Use afero.FromIOFS to merge from an embed.FS.
func DirectoryMerger(fs afero.Fs, dir string, matcher FileMatcher) Merger {
	if matcher == nil {
		matcher = DefaultMatcher
	}

	return func(locale Locale) (*Loader, error) {
		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			return nil, fmt.Errorf("unable to read directory %q: %w", dir, err)
		}

		for _, entry := range entries {
			if !entry.Mode().IsRegular() || !matcher.IsMatch(entry.Name()) {
				continue
			}

			l, err := matcher.Locale(entry.Name())
			if err != nil || l != locale {
				continue
			}

			loader, err := NewFileLoader(fs, filepath.Join(dir, entry.Name()), WithLoaderLocale(locale))
			if err != nil {
				return nil, err
			}

			if err := loader.Load(); err != nil {
				return nil, err
			}

			return loader, nil
		}

		return nil, nil
	}
}

func sortedLocaleKeys[V any](m map[Locale]V) []Locale {
	keys := make([]Locale, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sortLocales(keys)

	return keys
}
