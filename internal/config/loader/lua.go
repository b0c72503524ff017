package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/dshills/imgclip/internal/script"
)

// LuaLoader loads configuration from a Lua chunk that returns a table.
// Functions in the table become computed values evaluated by the runtime.
type LuaLoader struct {
	fs   FileSystem
	rt   *script.Runtime
	path string
}

// NewLuaLoader creates a Lua loader for path.
func NewLuaLoader(rt *script.Runtime, path string) *LuaLoader {
	return NewLuaLoaderWithFS(DefaultFS(), rt, path)
}

// NewLuaLoaderWithFS creates a Lua loader reading through fsys.
func NewLuaLoaderWithFS(fsys FileSystem, rt *script.Runtime, path string) *LuaLoader {
	return &LuaLoader{fs: fsys, rt: rt, path: path}
}

// Path returns the configured path.
func (l *LuaLoader) Path() string {
	return l.path
}

// Load reads the configured path.
func (l *LuaLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads a specific path.
func (l *LuaLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := readFile(l.fs, path)
	if err != nil || data == nil {
		return nil, err
	}
	return l.eval(path, string(data))
}

// LoadFromReader reads a Lua chunk from r.
func (l *LuaLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.eval("<reader>", string(data))
}

func (l *LuaLoader) eval(source, code string) (map[string]any, error) {
	if l.rt == nil {
		return nil, ErrNoRuntime
	}

	result, err := l.rt.EvalString(context.Background(), source, code)
	if err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}

	switch v := result.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case []any:
		if len(v) == 0 {
			return map[string]any{}, nil
		}
	}
	return nil, &ParseError{Path: source, Message: fmt.Sprintf("chunk must return a table, got %T", result)}
}
