// Package source loads imgclip configuration from files, the environment,
// command-line overrides and in-memory session settings, and keeps a
// Resolver configured with the combined result.
//
// Sources are stacked by priority:
//
//	┌──────────────────────────────┐
//	│  session   (Set)             │  ← highest
//	├──────────────────────────────┤
//	│  arguments (--set)           │
//	├──────────────────────────────┤
//	│  environment (IMGCLIP_*)     │
//	├──────────────────────────────┤
//	│  project   (.imgclip.*)      │
//	├──────────────────────────────┤
//	│  user      (config.*)        │  ← lowest
//	└──────────────────────────────┘
//
// Each source is decoded into override layers on its own and the results
// are merged in priority order before being handed to the Resolver, whose
// built-in defaults sit beneath everything.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/imgclip/internal/config"
	"github.com/dshills/imgclip/internal/config/layer"
	"github.com/dshills/imgclip/internal/config/loader"
	"github.com/dshills/imgclip/internal/config/registry"
	"github.com/dshills/imgclip/internal/config/watcher"
	"github.com/dshills/imgclip/internal/logging"
	"github.com/dshills/imgclip/internal/script"
)

// Layer names.
const (
	LayerUser    = "user"
	LayerProject = "project"
	LayerEnv     = "environment"
	LayerArgs    = "arguments"
	LayerSession = "session"
)

const (
	userConfigBase    = "config"
	projectConfigBase = ".imgclip"
)

// ErrInvalidPath is returned by Set for an empty or malformed path.
var ErrInvalidPath = errors.New("invalid configuration path")

// Stack owns the configuration sources of one resolver.
type Stack struct {
	mu sync.Mutex

	resolver *config.Resolver
	layers   *layer.Manager
	registry *registry.Registry
	runtime  *script.Runtime
	ownsRT   bool
	watcher  *watcher.Watcher
	fs       loader.FileSystem
	logger   *slog.Logger

	userConfigDir string
	projectDir    string
	configFile    string

	// files maps the absolute path of every tracked config file to the
	// layer it feeds; tracked is the reverse, by layer name. A file stays
	// tracked after it is removed so that recreating it reloads the layer.
	files   map[string]fileLayer
	tracked map[string]string

	envPrefix  string
	envMapping map[string]string
	args       map[string]any

	enableWatcher bool
	loaded        bool
}

type fileLayer struct {
	name   string
	source layer.Source
}

// Option configures a Stack.
type Option func(*Stack)

// WithUserConfigDir sets the directory searched for config.{toml,yaml,yml,lua}.
func WithUserConfigDir(dir string) Option {
	return func(s *Stack) {
		s.userConfigDir = dir
	}
}

// WithProjectDir sets the directory searched for .imgclip.{toml,yaml,yml,lua}.
// An empty dir disables the project layer.
func WithProjectDir(dir string) Option {
	return func(s *Stack) {
		s.projectDir = dir
	}
}

// WithConfigFile loads path as the user layer instead of searching the user
// config directory. A missing file is an error.
func WithConfigFile(path string) Option {
	return func(s *Stack) {
		s.configFile = path
	}
}

// WithEnvPrefix sets the prefix of environment variables. An empty prefix
// disables the environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(s *Stack) {
		s.envPrefix = prefix
	}
}

// WithArgs sets the command-line override layer.
func WithArgs(args map[string]any) Option {
	return func(s *Stack) {
		s.args = args
	}
}

// WithWatcher enables reloading files when they change.
func WithWatcher(enable bool) Option {
	return func(s *Stack) {
		s.enableWatcher = enable
	}
}

// WithRuntime evaluates Lua config files in rt. The caller keeps ownership.
func WithRuntime(rt *script.Runtime) Option {
	return func(s *Stack) {
		if rt != nil {
			s.runtime = rt
			s.ownsRT = false
		}
	}
}

// WithLogger sets the logger for load and reload diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stack) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFS reads config files through fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(s *Stack) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// New creates a stack that configures r. Call Load to read the sources.
func New(r *config.Resolver, opts ...Option) *Stack {
	s := &Stack{
		resolver:   r,
		layers:     layer.NewManager(),
		registry:   registry.NewWithDefaults(),
		fs:         loader.DefaultFS(),
		logger:     logging.NewNop(),
		envPrefix:  loader.DefaultEnvPrefix,
		projectDir: ".",
		files:      make(map[string]fileLayer),
		tracked:    make(map[string]string),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.userConfigDir == "" {
		s.userConfigDir = DefaultUserConfigDir()
	}
	if s.runtime == nil {
		s.runtime = script.New(script.WithLogger(s.logger))
		s.ownsRT = true
	}
	if s.envPrefix != "" {
		s.envMapping = config.EnvMapping(s.envPrefix)
	}

	return s
}

// Load reads every source and configures the resolver. A missing user or
// project file is not an error; a file that fails to parse is.
func (s *Stack) Load(_ context.Context) error {
	s.mu.Lock()

	if s.enableWatcher && s.watcher == nil {
		w, err := watcher.New(watcher.WithLogger(s.logger))
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("starting config watcher: %w", err)
		}
		w.OnChange(s.handleFileChange)
		s.watcher = w
	}

	if err := s.loadUser(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.loadProject(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.loadEnvironment(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.loadArgs()

	s.loaded = true
	s.applyLocked()

	// Start the watcher outside the lock; its callbacks take it.
	w := s.watcher
	s.mu.Unlock()

	if w != nil {
		w.Start()
	}
	return nil
}

// Reload re-reads the user and project files and the environment.
func (s *Stack) Reload(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadUser(); err != nil {
		return err
	}
	if err := s.loadProject(); err != nil {
		return err
	}
	if err := s.loadEnvironment(); err != nil {
		return err
	}
	s.applyLocked()
	return nil
}

// Set stores value at the dotted path in the session layer and
// reconfigures the resolver. Values for built-in options are type checked.
// Paths address the raw configuration, e.g. "default.dir_path" or
// "filetypes.markdown.template".
func (s *Stack) Set(path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.layers.GetLayer(LayerSession)
	if session == nil {
		session = layer.NewLayer(LayerSession, layer.SourceSession, layer.DefaultPriority(layer.SourceSession))
	} else {
		session = session.Clone()
	}

	if key := optionKey(path); key != "" {
		if err := s.registry.Validate(key, value); err != nil {
			return err
		}
	}
	if err := setPath(session.Data, path, value); err != nil {
		return err
	}
	s.layers.SetLayer(session)
	s.applyLocked()
	return nil
}

// ClearSession drops every session override.
func (s *Stack) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.layers.RemoveLayer(LayerSession) {
		s.applyLocked()
	}
}

// Layers returns the loaded source layers in priority order.
func (s *Stack) Layers() []*layer.Layer {
	return s.layers.Layers()
}

// WatchedFiles returns the config files being watched, sorted. It is
// empty unless the stack was created WithWatcher(true).
func (s *Stack) WatchedFiles() []string {
	s.mu.Lock()
	w := s.watcher
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.WatchedFiles()
}

// Resolver returns the configured resolver.
func (s *Stack) Resolver() *config.Resolver {
	return s.resolver
}

// Close stops watching and releases the script runtime if the stack created it.
func (s *Stack) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	var errs []error
	if w != nil {
		errs = append(errs, w.Stop())
	}
	if s.ownsRT {
		errs = append(errs, s.runtime.Close())
	}
	return errors.Join(errs...)
}

// applyLocked decodes every layer and configures the resolver with the
// merge. s.mu must be held.
func (s *Stack) applyLocked() {
	if !s.loaded {
		return
	}

	var merged *layer.Node
	for _, l := range s.layers.Layers() {
		node, issues := layer.Decode(l.Data)
		for _, issue := range issues {
			s.logger.Warn("skipping malformed configuration",
				"layer", l.Name,
				"path", issue.Path,
				"reason", issue.Reason,
			)
		}
		for _, err := range s.registry.ValidateNode(node) {
			s.logger.Warn("option has the wrong type", "layer", l.Name, "error", err)
		}
		merged = layer.Merge(merged, node)
	}
	s.resolver.ConfigureNode(merged)
}

func (s *Stack) loadUser() error {
	path := s.configFile
	if path == "" {
		path = loader.Find(s.fs, s.userConfigDir, userConfigBase)
	} else if _, err := s.fs.Stat(path); err != nil {
		return &config.SourceError{Source: LayerUser, Path: path, Err: err}
	}
	return s.loadFile(LayerUser, layer.SourceUser, path)
}

func (s *Stack) loadProject() error {
	if s.projectDir == "" {
		return nil
	}
	path := loader.Find(s.fs, s.projectDir, projectConfigBase)
	return s.loadFile(LayerProject, layer.SourceProject, path)
}

// loadFile replaces the named layer with the contents of path. An empty
// path or a missing file removes the layer.
func (s *Stack) loadFile(name string, source layer.Source, path string) error {
	if path == "" {
		s.untrack(name)
		s.layers.RemoveLayer(name)
		return nil
	}

	abs := absPath(path)
	s.track(name, source, abs)

	data, err := s.readFile(abs)
	if err != nil {
		return &config.SourceError{Source: name, Path: path, Err: err}
	}
	if data == nil {
		s.layers.RemoveLayer(name)
		return nil
	}

	l := layer.NewLayerWithData(name, source, layer.DefaultPriority(source), data)
	l.Path = abs
	s.layers.SetLayer(l)
	s.logger.Debug("loaded config file", "layer", name, "path", abs)
	return nil
}

// track records abs as the file behind the named layer and watches it.
// A different file previously behind the layer is released.
func (s *Stack) track(name string, source layer.Source, abs string) {
	if old, ok := s.tracked[name]; ok && old != abs {
		s.untrack(name)
	}
	s.tracked[name] = abs
	s.files[abs] = fileLayer{name: name, source: source}

	if s.watcher != nil {
		if err := s.watcher.Watch(abs); err != nil {
			s.logger.Warn("cannot watch config file", "path", abs, "error", err)
		}
	}
}

func (s *Stack) untrack(name string) {
	abs, ok := s.tracked[name]
	if !ok {
		return
	}
	delete(s.tracked, name)
	delete(s.files, abs)

	if s.watcher != nil {
		if err := s.watcher.Unwatch(abs); err != nil {
			s.logger.Warn("cannot stop watching config file", "path", abs, "error", err)
		}
	}
}

func (s *Stack) readFile(path string) (map[string]any, error) {
	fl, err := loader.ForPath(path, loader.WithFS(s.fs), loader.WithRuntime(s.runtime))
	if err != nil {
		return nil, err
	}
	return fl.Load()
}

func (s *Stack) loadEnvironment() error {
	if s.envPrefix == "" {
		return nil
	}

	data, err := loader.NewEnvLoader(s.envPrefix,
		loader.WithEnvMapping(s.envMapping),
		loader.WithValueParser(s.parseEnvValue),
	).Load()
	if err != nil {
		return &config.SourceError{Source: LayerEnv, Err: err}
	}

	if len(data) == 0 {
		s.layers.RemoveLayer(LayerEnv)
		return nil
	}
	s.layers.SetLayer(layer.NewLayerWithData(LayerEnv, layer.SourceEnv, layer.DefaultPriority(layer.SourceEnv), data))
	return nil
}

// parseEnvValue reads raw as the type registered for path, so that
// IMGCLIP_DEBUG=1 is a boolean. Unregistered paths use loader.ParseValue.
func (s *Stack) parseEnvValue(path, raw string) any {
	if key := optionKey(path); key != "" {
		if v, ok := s.registry.Parse(key, raw); ok {
			return v
		}
	}
	return loader.ParseValue(raw)
}

func (s *Stack) loadArgs() {
	if len(s.args) == 0 {
		return
	}
	s.layers.SetLayer(layer.NewLayerWithData(LayerArgs, layer.SourceArgs, layer.DefaultPriority(layer.SourceArgs), s.args))
}

// handleFileChange reloads the layer fed by the changed file. A file that
// was removed and comes back is loaded again.
func (s *Stack) handleFileChange(event watcher.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fl, ok := s.files[event.Path]
	if !ok {
		return
	}

	if event.Op == watcher.OpRemove || event.Op == watcher.OpRename {
		if s.layers.RemoveLayer(fl.name) {
			s.logger.Info("config file removed", "layer", fl.name, "path", event.Path)
			s.applyLocked()
		}
		return
	}

	data, err := s.readFile(event.Path)
	if err != nil {
		if s.layers.LayerByPath(event.Path) != nil {
			s.logger.Warn("keeping previous configuration", "layer", fl.name, "path", event.Path, "error", err)
		} else {
			s.logger.Warn("cannot load config file", "layer", fl.name, "path", event.Path, "error", err)
		}
		return
	}
	if data == nil {
		return
	}

	next := layer.NewLayerWithData(fl.name, fl.source, layer.DefaultPriority(fl.source), data)
	next.Path = event.Path
	s.layers.SetLayer(next)
	s.logger.Info("config file reloaded", "layer", fl.name, "path", event.Path)
	s.applyLocked()
}

// DefaultUserConfigDir returns $XDG_CONFIG_HOME/imgclip, falling back to
// ~/.config/imgclip.
func DefaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "imgclip")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "imgclip")
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// optionKey returns the option addressed by a default or filetype path:
// "default.dir_path" and "filetypes.markdown.dir_path" both give "dir_path".
// Other paths give "".
func optionKey(path string) string {
	if rest, ok := strings.CutPrefix(path, "default."); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(path, "filetypes."); ok {
		if _, key, ok := strings.Cut(rest, "."); ok {
			return key
		}
	}
	return ""
}

// setPath stores value at a dotted path, creating intermediate maps.
func setPath(m map[string]any, path string, value any) error {
	if path == "" {
		return ErrInvalidPath
	}
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, exists := current[part]
		if !exists {
			child := make(map[string]any)
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %q is not a table", ErrInvalidPath, part)
		}
		current = child
	}

	current[parts[len(parts)-1]] = value
	return nil
}
