package layer

import (
	"reflect"
	"testing"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		dst      map[string]any
		src      map[string]any
		expected map[string]any
	}{
		{
			name:     "nil dst",
			dst:      nil,
			src:      map[string]any{"a": 1},
			expected: map[string]any{"a": 1},
		},
		{
			name:     "nil src",
			dst:      map[string]any{"a": 1},
			src:      nil,
			expected: map[string]any{"a": 1},
		},
		{
			name:     "src overrides dst",
			dst:      map[string]any{"a": 1},
			src:      map[string]any{"a": 2},
			expected: map[string]any{"a": 2},
		},
		{
			name: "nested merge",
			dst: map[string]any{
				"default": map[string]any{"dir_path": "assets"},
			},
			src: map[string]any{
				"default": map[string]any{"debug": true},
			},
			expected: map[string]any{
				"default": map[string]any{"dir_path": "assets", "debug": true},
			},
		},
		{
			name:     "list replaced",
			dst:      map[string]any{"custom": []any{1, 2}},
			src:      map[string]any{"custom": []any{3}},
			expected: map[string]any{"custom": []any{3}},
		},
		{
			name:     "map replaced by scalar",
			dst:      map[string]any{"default": map[string]any{"a": 1}},
			src:      map[string]any{"default": "broken"},
			expected: map[string]any{"default": "broken"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DeepMerge(tt.dst, tt.src)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("DeepMerge() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDeepMerge_ClonesSource(t *testing.T) {
	src := map[string]any{"default": map[string]any{"dir_path": "assets"}}
	dst := DeepMerge(nil, src)

	dst["default"].(map[string]any)["dir_path"] = "changed"
	if src["default"].(map[string]any)["dir_path"] != "assets" {
		t.Error("DeepMerge should not alias source maps")
	}
}
