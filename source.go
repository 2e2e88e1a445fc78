package translationloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Source reads and writes the document a Loader imports messages from.
type Source interface {
	// Name describes the source in logs and errors, usually the file path.
	Name() string
	Load() (map[string]any, error)
	Save(doc map[string]any) error
}

// FileSource is a file in an afero.Fs encoded with a Codec.
type FileSource struct {
	fs    afero.Fs
	path  string
	codec Codec
}

// NewFileSource creates a FileSource for path. The codec is chosen from the file extension.
func NewFileSource(fs afero.Fs, path string) (*FileSource, error) {
	codec, ok := CodecFor(Extension(path))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}

	return NewFileSourceWithCodec(fs, path, codec), nil
}

// NewFileSourceWithCodec creates a FileSource for path that uses the given codec.
func NewFileSourceWithCodec(fs afero.Fs, path string, codec Codec) *FileSource {
	return &FileSource{fs: fs, path: path, codec: codec}
}

func (s *FileSource) Name() string {
	return s.path
}

// Load decodes the file. A missing file loads as an empty document.
func (s *FileSource) Load() (map[string]any, error) {
	f, err := s.fs.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open file %q: %w", s.path, err)
	}
	defer f.Close()

	doc, err := s.codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("unable to read file %q: %w", s.path, err)
	}

	return doc, nil
}

// Save encodes doc and replaces the file, creating parent directories as needed.
func (s *FileSource) Save(doc map[string]any) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create directory %q: %w", dir, err)
		}
	}

	f, err := s.fs.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("unable to open file %q: %w", s.path, err)
	}

	if err := s.codec.Encode(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("unable to write file %q: %w", s.path, err)
	}

	return f.Close()
}

// MapSource keeps a document in memory.
type MapSource struct {
	name string

	mu  sync.Mutex
	doc map[string]any
}

// NewMapSource creates a MapSource holding doc. Dotted keys in doc are kept as-is.
func NewMapSource(name string, doc map[string]any) *MapSource {
	if doc == nil {
		doc = make(map[string]any)
	}

	return &MapSource{name: name, doc: cloneDocument(doc)}
}

func (s *MapSource) Name() string {
	return s.name
}

func (s *MapSource) Load() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneDocument(s.doc), nil
}

func (s *MapSource) Save(doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = cloneDocument(doc)
	return nil
}

// Document returns a copy of the document held by the source.
func (s *MapSource) Document() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneDocument(s.doc)
}
