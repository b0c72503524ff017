package value

import (
	"sort"
	"strings"
)

// ComputedMarker stands in for a Computed value wherever a tree is rendered
// without a context, such as in Flatten and Raw.
const ComputedMarker = "<computed>"

// SplitKey splits a dot-separated key path into its segments.
// Empty segments from leading, trailing or doubled dots are dropped.
func SplitKey(key string) []string {
	return strings.FieldsFunc(key, func(r rune) bool { return r == '.' })
}

// Lookup walks t along the dot-separated key and returns the value found
// there, or nil when any segment is missing. A non-Tree node met before the
// last segment also yields nil. The result may itself be a Tree.
func Lookup(t Tree, key string) Value {
	segments := SplitKey(key)
	if len(segments) == 0 {
		return nil
	}

	var current Value = t
	for _, segment := range segments {
		node, ok := current.(Tree)
		if !ok {
			return nil
		}

		next := node[segment]
		if next == nil {
			return nil
		}
		current = next
	}

	return current
}

// Set stores v at the dot-separated key, creating intermediate trees.
// Existing non-Tree nodes on the path are replaced.
func Set(t Tree, key string, v Value) {
	segments := SplitKey(key)
	if t == nil || len(segments) == 0 {
		return
	}

	current := t
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(Tree)
		if !ok {
			next = make(Tree)
			current[segment] = next
		}
		current = next
	}

	current[segments[len(segments)-1]] = v
}

// Merge returns a new tree holding dst overlaid with src.
// Trees on both sides merge recursively; any other src value replaces dst.
// Neither input is modified.
func Merge(dst, src Tree) Tree {
	result := Clone(dst)
	if result == nil {
		result = make(Tree, len(src))
	}

	for key, srcVal := range src {
		srcTree, srcIsTree := srcVal.(Tree)
		dstTree, dstIsTree := result[key].(Tree)
		if srcIsTree && dstIsTree {
			result[key] = Merge(dstTree, srcTree)
			continue
		}
		result[key] = cloneValue(srcVal)
	}

	return result
}

// Clone returns a deep copy of t. Literal and Computed values are shared.
func Clone(t Tree) Tree {
	if t == nil {
		return nil
	}

	dst := make(Tree, len(t))
	for key, val := range t {
		dst[key] = cloneValue(val)
	}
	return dst
}

func cloneValue(v Value) Value {
	if t, ok := v.(Tree); ok {
		return Clone(t)
	}
	return v
}

// Raw converts t to plain nested maps without evaluating anything.
// Computed values are rendered as ComputedMarker.
func Raw(t Tree) map[string]any {
	if t == nil {
		return nil
	}

	result := make(map[string]any, len(t))
	for key, val := range t {
		switch v := val.(type) {
		case Tree:
			result[key] = Raw(v)
		case Literal:
			result[key] = v.V
		case Computed:
			result[key] = ComputedMarker
		}
	}
	return result
}

// Flatten returns t as a single-level map keyed by full dot paths.
// Computed values are rendered as ComputedMarker.
func Flatten(t Tree) map[string]any {
	result := make(map[string]any)
	flattenInto(t, "", result)
	return result
}

func flattenInto(t Tree, prefix string, result map[string]any) {
	for key, val := range t {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := val.(type) {
		case Tree:
			flattenInto(v, fullKey, result)
		case Literal:
			result[fullKey] = v.V
		case Computed:
			result[fullKey] = ComputedMarker
		}
	}
}

// Keys returns the sorted full dot paths of every leaf in t.
func Keys(t Tree) []string {
	flat := Flatten(t)
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Diff returns the leaf paths that differ between two trees.
// Each returned slice is sorted.
func Diff(old, new Tree) (added, modified, removed []string) {
	oldFlat := Flatten(old)
	newFlat := Flatten(new)

	for path, newVal := range newFlat {
		if oldVal, exists := oldFlat[path]; exists {
			if !Equal(oldVal, newVal) {
				modified = append(modified, path)
			}
		} else {
			added = append(added, path)
		}
	}

	for path := range oldFlat {
		if _, exists := newFlat[path]; !exists {
			removed = append(removed, path)
		}
	}

	sort.Strings(added)
	sort.Strings(modified)
	sort.Strings(removed)
	return added, modified, removed
}

// Equal compares two raw values, descending into maps and slices.
func Equal(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	switch va := a.(type) {
	case map[string]any:
		vb, ok := b.(map[string]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for k, x := range va {
			y, ok := vb[k]
			if !ok || !Equal(x, y) {
				return false
			}
		}
		return true
	case []any:
		vb, ok := b.([]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !Equal(va[i], vb[i]) {
				return false
			}
		}
		return true
	case []string:
		vb, ok := b.([]string)
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if va[i] != vb[i] {
				return false
			}
		}
		return true
	}

	return isScalar(a) && isScalar(b) && a == b
}

// isScalar reports whether == on v is safe at run time.
func isScalar(v any) bool {
	switch v.(type) {
	case bool, string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}
