package registry

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/dshills/imgclip/internal/config"
	"github.com/dshills/imgclip/internal/config/layer"
	"github.com/dshills/imgclip/internal/config/value"
)

// ErrSettingAlreadyRegistered is returned when attempting to register a duplicate setting.
var ErrSettingAlreadyRegistered = errors.New("setting already registered")

// Registry holds the known option definitions.
type Registry struct {
	mu       sync.RWMutex
	settings map[string]*Setting
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		settings: make(map[string]*Setting),
	}
}

// NewWithDefaults creates a registry holding every built-in option.
func NewWithDefaults() *Registry {
	r := New()
	r.RegisterDefaults()
	return r
}

// Register adds a setting definition.
func (r *Registry) Register(setting Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.settings[setting.Path]; exists {
		return fmt.Errorf("%w: %s", ErrSettingAlreadyRegistered, setting.Path)
	}

	r.settings[setting.Path] = &setting
	return nil
}

// MustRegister registers a setting and panics on error.
func (r *Registry) MustRegister(setting Setting) {
	if err := r.Register(setting); err != nil {
		panic(err)
	}
}

// Get returns the definition for path, or nil.
func (r *Registry) Get(path string) *Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings[path]
}

// Has reports whether path is registered.
func (r *Registry) Has(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.settings[path]
	return exists
}

// All returns all settings sorted by path.
func (r *Registry) All() []*Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Setting, 0, len(r.settings))
	for _, s := range r.settings {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result
}

// Parse converts raw text, such as an environment variable, to the type
// declared for path. It reports false for unknown paths and for text the
// declared type cannot hold, leaving the caller to fall back to untyped
// parsing.
func (r *Registry) Parse(path, raw string) (any, bool) {
	s := r.Get(path)
	if s == nil {
		return nil, false
	}
	v, err := s.Parse(raw)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Validate checks value against the definition of path. Unknown paths are
// accepted since users may define options of their own.
func (r *Registry) Validate(path string, value any) error {
	s := r.Get(path)
	if s == nil {
		return nil
	}
	if err := s.Validate(value); err != nil {
		return &ValidationError{Path: path, Err: err}
	}
	return nil
}

// ValidateNode checks every literal option in n and the bodies of its
// entries. Computed values are not checked since they are only known at
// lookup time.
func (r *Registry) ValidateNode(n *layer.Node) []error {
	var errs []error
	r.validateNode(n, "", &errs)
	return errs
}

func (r *Registry) validateNode(n *layer.Node, prefix string, errs *[]error) {
	if n == nil {
		return
	}

	r.validateTree(n.Default, join(prefix, "default"), errs)

	fts := make([]string, 0, len(n.Filetypes))
	for ft := range n.Filetypes {
		fts = append(fts, ft)
	}
	sort.Strings(fts)
	for _, ft := range fts {
		r.validateTree(n.Filetypes[ft], join(prefix, "filetypes."+ft), errs)
	}

	for _, e := range n.Files {
		r.validateNode(e.Node, join(prefix, "files["+e.Pattern+"]"), errs)
	}
	for _, e := range n.Dirs {
		r.validateNode(e.Node, join(prefix, "dirs["+e.Pattern+"]"), errs)
	}
	for i, c := range n.Custom {
		r.validateNode(c.Node, join(prefix, "custom["+strconv.Itoa(i)+"]"), errs)
	}
}

func (r *Registry) validateTree(t value.Tree, prefix string, errs *[]error) {
	if len(t) == 0 {
		return
	}
	for _, s := range r.All() {
		lit, ok := value.Lookup(t, s.Path).(value.Literal)
		if !ok {
			continue
		}
		if err := s.Validate(lit.V); err != nil {
			*errs = append(*errs, &ValidationError{Path: prefix + "." + s.Path, Err: err})
		}
	}
}

// ValidationError reports an option value of the wrong type or range.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RegisterDefaults registers every built-in option with its default value.
func (r *Registry) RegisterDefaults() {
	defaults := value.TreeOf(config.DefaultConfig()["default"].(map[string]any))

	for _, key := range config.Keys {
		def := value.Materialize(value.Lookup(defaults, key), value.Context{})
		s := Setting{
			Path:        key,
			Type:        TypeOf(def),
			Default:     def,
			Description: descriptions[key],
		}
		if key == config.KeyMaxBase64Size {
			s.Minimum = MinValue(0)
		}
		r.MustRegister(s)
	}
}

var descriptions = map[string]string{
	config.KeyDebug:                     "Log debug messages",
	config.KeyDirPath:                   "Directory images are saved to",
	config.KeyFileName:                  "strftime pattern for image file names",
	config.KeyURLEncodePath:             "Percent-encode the inserted path",
	config.KeyUseAbsolutePath:           "Insert absolute paths",
	config.KeyRelativeToCurrentFile:     "Save images relative to the current file",
	config.KeyRelativeTemplatePath:      "Make $FILE_PATH relative to the current file",
	config.KeyPromptForFileName:         "Ask for a file name before saving",
	config.KeyShowDirPathInPrompt:       "Show the directory in the file name prompt",
	config.KeyUseCursorInTemplate:       "Place the cursor at $CURSOR after inserting",
	config.KeyInsertModeAfterPaste:      "Enter insert mode after pasting",
	config.KeyTemplate:                  "Text inserted for a pasted image",
	config.KeyEmbedImageAsBase64:        "Embed images as base64 instead of saving them",
	config.KeyMaxBase64Size:             "Largest image in KB embedded as base64",
	config.KeyDragAndDropEnabled:        "Handle dropped images",
	config.KeyDragAndDropInsertMode:     "Handle drops in insert mode",
	config.KeyDragAndDropCopyImages:     "Copy dropped local images into dir_path",
	config.KeyDragAndDropDownloadImages: "Download dropped image URLs into dir_path",
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
