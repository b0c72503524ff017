package config

import (
	"math"
)

// GetString returns the effective string value of key.
func (r *Resolver) GetString(key string) (string, error) {
	v, ok := r.Get(key, nil, nil)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Key: key, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetBool returns the effective boolean value of key.
func (r *Resolver) GetBool(key string) (bool, error) {
	v, ok := r.Get(key, nil, nil)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Key: key, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetInt returns the effective integer value of key.
// Whole floats are accepted since Lua and YAML sources may produce them.
func (r *Resolver) GetInt(key string) (int, error) {
	v, ok := r.Get(key, nil, nil)
	if !ok {
		return 0, ErrSettingNotFound
	}
	i, ok := toInt(v)
	if !ok {
		return 0, &TypeError{Key: key, Expected: "int", Actual: typeName(v)}
	}
	return i, nil
}

// GetFloat returns the effective numeric value of key as a float64.
func (r *Resolver) GetFloat(key string) (float64, error) {
	v, ok := r.Get(key, nil, nil)
	if !ok {
		return 0, ErrSettingNotFound
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, &TypeError{Key: key, Expected: "float64", Actual: typeName(v)}
	}
	return f, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// typeName returns a short type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
