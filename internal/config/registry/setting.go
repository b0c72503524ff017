// Package registry describes the options imgclip understands: their types,
// built-in defaults and documentation. It validates literal values found in
// configuration sources before they reach the resolver.
package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// Setting defines one option.
type Setting struct {
	// Path is the dotted option key (e.g., "drag_and_drop.enabled").
	Path string

	Type SettingType

	// Default is the built-in default value.
	Default any

	// Description is human-readable documentation.
	Description string

	// Minimum for numeric types (nil means no minimum).
	Minimum *float64
}

// Validate checks if a value is valid for this setting.
func (s *Setting) Validate(value any) error {
	if err := s.validateType(value); err != nil {
		return err
	}
	if s.Type == TypeInt || s.Type == TypeFloat {
		return s.validateRange(value)
	}
	return nil
}

// Parse converts raw text to the setting's type. Booleans accept
// true/false, yes/no, on/off and 1/0. Tables cannot be parsed.
func (s *Setting) Parse(raw string) (any, error) {
	text := strings.TrimSpace(raw)
	switch s.Type {
	case TypeString:
		return raw, nil
	case TypeBool:
		switch strings.ToLower(text) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return nil, fmt.Errorf("expected boolean, got %q", raw)
	case TypeInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected integer, got %q", raw)
		}
		return i, nil
	case TypeFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", raw)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot parse %s from text", s.Type)
	}
}

func (s *Setting) validateType(value any) error {
	switch s.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case TypeInt:
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		case float64:
			// Lua and YAML may produce whole floats.
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
		default:
			return fmt.Errorf("expected integer, got %T", value)
		}
	case TypeFloat:
		switch value.(type) {
		case float32, float64, int, int64:
		default:
			return fmt.Errorf("expected number, got %T", value)
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	case TypeObject:
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("expected table, got %T", value)
		}
	}
	return nil
}

func (s *Setting) validateRange(value any) error {
	if s.Minimum == nil {
		return nil
	}

	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return nil
	}

	if f < *s.Minimum {
		return fmt.Errorf("value %v is below minimum %v", f, *s.Minimum)
	}
	return nil
}

// SettingType represents the data type of a setting.
type SettingType uint8

const (
	// TypeString represents a string value.
	TypeString SettingType = iota
	// TypeInt represents an integer value.
	TypeInt
	// TypeFloat represents a floating-point value.
	TypeFloat
	// TypeBool represents a boolean value.
	TypeBool
	// TypeObject represents a nested table.
	TypeObject
)

// String returns the string representation of the type.
func (t SettingType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeObject:
		return "table"
	default:
		return "unknown"
	}
}

// TypeOf returns the setting type matching a Go value.
func TypeOf(v any) SettingType {
	switch v.(type) {
	case bool:
		return TypeBool
	case int, int32, int64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case map[string]any:
		return TypeObject
	default:
		return TypeString
	}
}

// MinValue creates a pointer to a float64 for use as Minimum.
func MinValue(v float64) *float64 {
	return &v
}
