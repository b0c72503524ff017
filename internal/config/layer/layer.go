// Package layer provides the configuration layers for imgclip.
//
// Two kinds of layering live here. Source layers (Layer, Manager) stack raw
// configuration maps read from files, the environment and the command line;
// higher priority sources override lower ones when merged. Override layers
// (Node, Entry, Custom) are the typed custom/files/dirs/filetypes/default
// scopes the resolver consults for a single option in a fixed precedence.
package layer

// Layer is one raw configuration source.
type Layer struct {
	// Name identifies the layer (e.g., "user", "project", "env").
	Name string

	// Priority determines merge order (higher overrides lower).
	Priority int

	// Source indicates where this layer was loaded from.
	Source Source

	// Path is the file path (if loaded from file).
	Path string

	// Data holds the configuration values as a nested map.
	Data map[string]any
}

// NewLayer creates an empty layer.
func NewLayer(name string, source Source, priority int) *Layer {
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: priority,
		Data:     make(map[string]any),
	}
}

// NewLayerWithData creates a layer holding data.
func NewLayerWithData(name string, source Source, priority int, data map[string]any) *Layer {
	if data == nil {
		data = make(map[string]any)
	}
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: priority,
		Data:     data,
	}
}

// Clone creates a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	return &Layer{
		Name:     l.Name,
		Priority: l.Priority,
		Source:   l.Source,
		Path:     l.Path,
		Data:     cloneMap(l.Data),
	}
}

// Source indicates where a configuration layer came from.
type Source uint8

const (
	// SourceUser represents the user config file (~/.config/imgclip/).
	SourceUser Source = iota
	// SourceProject represents a project config file in the working directory.
	SourceProject
	// SourceEnv represents environment variables.
	SourceEnv
	// SourceArgs represents command-line --set overrides.
	SourceArgs
	// SourceSession represents in-memory overrides set by the embedding program.
	SourceSession
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceUser:
		return "user"
	case SourceProject:
		return "project"
	case SourceEnv:
		return "environment"
	case SourceArgs:
		return "arguments"
	case SourceSession:
		return "session"
	default:
		return "unknown"
	}
}
