package loader

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of imgclip environment variables.
const DefaultEnvPrefix = "IMGCLIP_"

// EnvLoader loads configuration from environment variables.
//
// Mapped variables are stored at their configured path. Other prefixed
// variables land under "default" with the remainder lowercased, so
// IMGCLIP_DIR_PATH sets default.dir_path. A mapping to the empty path
// ignores the variable.
type EnvLoader struct {
	prefix  string            // e.g. "IMGCLIP_"
	mapping map[string]string // env var -> config path
	parse   func(path, raw string) any
	environ func() []string
}

// EnvOption configures an EnvLoader.
type EnvOption func(*EnvLoader)

// WithEnvMapping stores the listed variables at explicit config paths.
func WithEnvMapping(mapping map[string]string) EnvOption {
	return func(l *EnvLoader) {
		for k, v := range mapping {
			l.mapping[k] = v
		}
	}
}

// WithValueParser replaces ParseValue for converting variable text. The
// parser receives the config path the value will be stored at.
func WithValueParser(parse func(path, raw string) any) EnvOption {
	return func(l *EnvLoader) {
		l.parse = parse
	}
}

// NewEnvLoader creates an environment loader. The prefix should include
// the trailing underscore.
func NewEnvLoader(prefix string, opts ...EnvOption) *EnvLoader {
	l := &EnvLoader{
		prefix:  prefix,
		mapping: make(map[string]string),
		parse:   func(_, raw string) any { return ParseValue(raw) },
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the environment. Empty values are kept as empty strings.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	env := l.environ()
	sort.Strings(env)

	for _, kv := range env {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, l.parse(path, val))
	}

	return config, nil
}

// envToPath converts IMGCLIP_FILE_NAME to default.file_name.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	if name == "" {
		return ""
	}
	return "default." + name
}

// ParseValue converts a string from the environment or the command line
// into a bool, number, JSON array or object, or leaves it a string.
func ParseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Only with a decimal point so that version-like strings stay strings.
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if (strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")) && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}
