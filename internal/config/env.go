package config

import "strings"

// Environment variables read by the command rather than the configuration.
const (
	EnvConfigFile = "CONFIG"
	EnvLogLevel   = "LOG_LEVEL"
	EnvLogFormat  = "LOG_FORMAT"
)

// EnvMapping maps prefixed environment variables to default option paths.
// Nested keys join their parts with underscores, so with the prefix
// "IMGCLIP_" the variable IMGCLIP_DRAG_AND_DROP_ENABLED sets
// default.drag_and_drop.enabled. Variables the command reads itself map to
// the empty path and are ignored by the loader.
func EnvMapping(prefix string) map[string]string {
	m := make(map[string]string, len(Keys)+3)
	for _, key := range Keys {
		m[EnvName(prefix, key)] = "default." + key
	}
	for _, name := range []string{EnvConfigFile, EnvLogLevel, EnvLogFormat} {
		m[prefix+name] = ""
	}
	return m
}

// EnvName returns the environment variable for key.
func EnvName(prefix, key string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
