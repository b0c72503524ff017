// Package loader reads raw configuration maps from files and the environment.
//
// TOML, YAML and Lua files are supported and selected by extension. Every
// loader returns the map a file describes without interpreting it; decoding
// into override layers happens in the layer package.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/imgclip/internal/script"
)

var (
	// ErrUnsupportedFormat indicates a file extension no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrNoRuntime indicates a Lua file was loaded without a script runtime.
	ErrNoRuntime = errors.New("lua config requires a script runtime")
)

// Extensions lists the supported file extensions in lookup order.
var Extensions = []string{".toml", ".yaml", ".yml", ".lua"}

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads the source. It returns nil, nil when the source does not exist.
	Load() (map[string]any, error)
}

// FileLoader is a Loader backed by a file.
type FileLoader interface {
	Loader

	// LoadFrom reads a specific path.
	LoadFrom(path string) (map[string]any, error)

	// Path returns the configured path.
	Path() string
}

// ReaderLoader reads configuration from an io.Reader.
type ReaderLoader interface {
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem abstracts file access for tests.
type FileSystem interface {
	fs.FS
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// Options holds settings shared by file loaders.
type Options struct {
	FS      FileSystem
	Runtime *script.Runtime
}

// Option configures file loaders created by ForPath.
type Option func(*Options)

// WithFS reads files through fsys.
func WithFS(fsys FileSystem) Option {
	return func(o *Options) {
		if fsys != nil {
			o.FS = fsys
		}
	}
}

// WithRuntime evaluates Lua files in rt.
func WithRuntime(rt *script.Runtime) Option {
	return func(o *Options) {
		o.Runtime = rt
	}
}

// ForPath returns the loader for path based on its extension.
func ForPath(path string, opts ...Option) (FileLoader, error) {
	o := Options{FS: DefaultFS()}
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTOMLLoaderWithFS(o.FS, path), nil
	case ".yaml", ".yml":
		return NewYAMLLoaderWithFS(o.FS, path), nil
	case ".lua":
		if o.Runtime == nil {
			return nil, ErrNoRuntime
		}
		return NewLuaLoaderWithFS(o.FS, o.Runtime, path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Find returns the first existing file named base plus one of Extensions
// inside dir, or "" when there is none.
func Find(fsys FileSystem, dir, base string) string {
	if fsys == nil {
		fsys = DefaultFS()
	}
	for _, ext := range Extensions {
		path := filepath.Join(dir, base+ext)
		if info, err := fsys.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// readFile reads path, mapping a missing file to nil data and no error.
func readFile(fsys FileSystem, path string) ([]byte, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return data, nil
}

// ParseError describes a configuration file that could not be parsed.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
