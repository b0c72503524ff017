package layer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/imgclip/internal/config/value"
)

// Reserved keys of a raw configuration node.
const (
	defaultKey   = "default"
	filetypesKey = "filetypes"
	filesKey     = "files"
	dirsKey      = "dirs"
	customKey    = "custom"
	triggerKey   = "trigger"
	patternKey   = "pattern"
)

// Issue describes part of a raw configuration that Decode skipped.
type Issue struct {
	// Path locates the offending value (e.g. "files[2]").
	Path string
	// Reason says what was wrong with it.
	Reason string
}

// String formats the issue for logging.
func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Reason)
}

// Decode converts a raw configuration map into a Node.
//
// Keys other than default, filetypes, files, dirs and custom are options and
// are folded into Default, where they win over the same key inside an
// explicit default block. A files or dirs mapping is ordered longest pattern
// first, then lexicographically; a files or dirs list keeps its order and
// takes each entry's pattern from its "pattern" key. Patterns starting with
// "~/" are expanded to the home directory.
//
// Malformed parts are skipped and reported as issues; Decode never fails.
func Decode(raw map[string]any) (*Node, []Issue) {
	d := &decoder{}
	return d.node(raw, ""), d.issues
}

type decoder struct {
	issues []Issue
}

func (d *decoder) report(path, format string, args ...any) {
	d.issues = append(d.issues, Issue{Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (d *decoder) node(raw map[string]any, path string) *Node {
	n := &Node{}
	var options value.Tree

	for key, val := range raw {
		if val == nil {
			continue
		}

		switch key {
		case defaultKey:
			m, ok := asMap(val)
			if !ok {
				d.report(join(path, key), "expected a table, got %T", val)
				continue
			}
			n.Default = value.Merge(n.Default, value.TreeOf(m))

		case filetypesKey:
			n.Filetypes = d.filetypes(val, join(path, key))

		case filesKey:
			n.Files = d.entries(val, join(path, key))

		case dirsKey:
			n.Dirs = d.entries(val, join(path, key))

		case customKey:
			n.Custom = d.customs(val, join(path, key))

		default:
			if options == nil {
				options = make(value.Tree)
			}
			options[key] = value.Of(val)
		}
	}

	if options != nil {
		n.Default = value.Merge(n.Default, options)
	}

	return n
}

func (d *decoder) filetypes(val any, path string) map[string]value.Tree {
	m, ok := asMap(val)
	if !ok {
		d.report(path, "expected a table, got %T", val)
		return nil
	}

	out := make(map[string]value.Tree, len(m))
	for ft, sub := range m {
		opts, ok := asMap(sub)
		if !ok {
			d.report(join(path, ft), "expected a table, got %T", sub)
			continue
		}
		out[ft] = value.TreeOf(opts)
	}
	return out
}

func (d *decoder) entries(val any, path string) []Entry {
	if m, ok := asMap(val); ok {
		patterns := make([]string, 0, len(m))
		for pattern := range m {
			patterns = append(patterns, pattern)
		}
		sort.Strings(patterns)

		entries := make([]Entry, 0, len(patterns))
		for _, pattern := range patterns {
			body, ok := asMap(m[pattern])
			if !ok {
				d.report(join(path, pattern), "expected a table, got %T", m[pattern])
				continue
			}
			entries = append(entries, Entry{
				Pattern: expandHome(pattern),
				Node:    d.node(body, join(path, pattern)),
			})
		}
		SortEntries(entries)
		return entries
	}

	list, ok := asList(val)
	if !ok {
		d.report(path, "expected a table or list, got %T", val)
		return nil
	}

	entries := make([]Entry, 0, len(list))
	for i, item := range list {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		body, ok := asMap(item)
		if !ok {
			d.report(itemPath, "expected a table, got %T", item)
			continue
		}
		pattern, ok := body[patternKey].(string)
		if !ok || pattern == "" {
			d.report(itemPath, "missing %q", patternKey)
			continue
		}
		entries = append(entries, Entry{
			Pattern: expandHome(pattern),
			Node:    d.node(without(body, patternKey), itemPath),
			Listed:  true,
		})
	}
	return entries
}

func (d *decoder) customs(val any, path string) []Custom {
	list, ok := asList(val)
	if !ok {
		d.report(path, "expected a list, got %T", val)
		return nil
	}

	customs := make([]Custom, 0, len(list))
	for i, item := range list {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		body, ok := asMap(item)
		if !ok {
			d.report(itemPath, "expected a table, got %T", item)
			continue
		}
		trigger := value.Of(body[triggerKey])
		if trigger == nil {
			d.report(itemPath, "missing %q", triggerKey)
			continue
		}
		customs = append(customs, Custom{
			Trigger: trigger,
			Node:    d.node(without(body, triggerKey), itemPath),
		})
	}
	return customs
}

// asMap accepts raw maps and value.Trees. An empty list counts as an empty
// map since Lua cannot tell them apart.
func asMap(val any) (map[string]any, bool) {
	switch m := val.(type) {
	case map[string]any:
		return m, true
	case value.Tree:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	case []any:
		if len(m) == 0 {
			return map[string]any{}, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func asList(val any) ([]any, bool) {
	switch l := val.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	case map[string]any:
		if len(l) == 0 {
			return nil, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func without(m map[string]any, key string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// expandHome replaces a leading ~ with the home directory. A trailing
// separator survives, so "~/proj/" does not also match "~/project".
func expandHome(pattern string) string {
	if pattern != "~" && !strings.HasPrefix(pattern, "~/") {
		return pattern
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return pattern
	}
	expanded := filepath.Join(home, strings.TrimPrefix(pattern, "~"))
	if strings.HasSuffix(pattern, "/") && !strings.HasSuffix(expanded, string(filepath.Separator)) {
		expanded += string(filepath.Separator)
	}
	return expanded
}
