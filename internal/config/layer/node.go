package layer

import (
	"sort"

	"github.com/dshills/imgclip/internal/config/value"
)

// Node is one configuration scope: a set of default options plus the
// override layers that may replace them for particular files, directories,
// filetypes or custom conditions.
//
// The root configuration is a Node, and so is the body of every files,
// dirs and custom entry, which is what lets the resolver recurse into a
// matching entry with the same algorithm it uses at the root.
type Node struct {
	// Default holds the options that apply when no override matches.
	Default value.Tree

	// Filetypes maps a filetype name to the options for that filetype.
	Filetypes map[string]value.Tree

	// Files are checked in order; the pattern must be a suffix of the
	// file path or file name.
	Files []Entry

	// Dirs are checked in order; the pattern must be a prefix of the
	// directory path or directory name.
	Dirs []Entry

	// Custom entries are checked in order; the first whose trigger is
	// truthy applies.
	Custom []Custom
}

// Entry is a files or dirs override.
type Entry struct {
	Pattern string
	Node    *Node

	// Listed is set when the entry was written in list form, whose order
	// is kept. Entries written as a mapping are kept longest pattern first.
	Listed bool
}

// Custom is an override guarded by a trigger.
type Custom struct {
	// Trigger decides whether the entry applies. Usually Computed.
	Trigger value.Value
	Node    *Node
}

// Clone returns a deep copy of n. Literal and Computed values are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	c := &Node{
		Default: value.Clone(n.Default),
		Files:   cloneEntries(n.Files),
		Dirs:    cloneEntries(n.Dirs),
	}

	if n.Filetypes != nil {
		c.Filetypes = make(map[string]value.Tree, len(n.Filetypes))
		for ft, tree := range n.Filetypes {
			c.Filetypes[ft] = value.Clone(tree)
		}
	}

	if n.Custom != nil {
		c.Custom = make([]Custom, len(n.Custom))
		for i, entry := range n.Custom {
			c.Custom[i] = Custom{Trigger: entry.Trigger, Node: entry.Node.Clone()}
		}
	}

	return c
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Pattern: e.Pattern, Node: e.Node.Clone(), Listed: e.Listed}
	}
	return out
}

// Merge returns a new node holding base overlaid with over.
//
// Default and per-filetype trees merge deeply with over winning on leaves.
// Files and dirs entries with the same pattern merge recursively. When
// every entry came from a mapping the result is ordered longest pattern
// first, so a more specific pattern from either side wins; once a list is
// involved, new patterns are appended in the order over gives them. A
// non-empty custom list in over replaces the base list. Neither input is
// modified.
func Merge(base, over *Node) *Node {
	result := base.Clone()
	if result == nil {
		result = &Node{}
	}
	if over == nil {
		return result
	}

	if over.Default != nil {
		result.Default = value.Merge(result.Default, over.Default)
	}

	if len(over.Filetypes) > 0 {
		if result.Filetypes == nil {
			result.Filetypes = make(map[string]value.Tree, len(over.Filetypes))
		}
		for ft, tree := range over.Filetypes {
			result.Filetypes[ft] = value.Merge(result.Filetypes[ft], tree)
		}
	}

	result.Files = mergeEntries(result.Files, over.Files)
	result.Dirs = mergeEntries(result.Dirs, over.Dirs)

	if len(over.Custom) > 0 {
		result.Custom = over.Clone().Custom
	}

	return result
}

func mergeEntries(base, over []Entry) []Entry {
	for _, entry := range over {
		merged := false
		for i := range base {
			if base[i].Pattern == entry.Pattern {
				base[i].Node = Merge(base[i].Node, entry.Node)
				merged = true
				break
			}
		}
		if !merged {
			base = append(base, Entry{Pattern: entry.Pattern, Node: entry.Node.Clone(), Listed: entry.Listed})
		}
	}

	for _, entry := range base {
		if entry.Listed {
			return base
		}
	}
	SortEntries(base)
	return base
}

// SortEntries orders entries longest pattern first, then lexically.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := entries[i].Pattern, entries[j].Pattern
		if len(pi) != len(pj) {
			return len(pi) > len(pj)
		}
		return pi < pj
	})
}

// Raw renders n back into plain maps, the shape Decode accepts.
// Computed values, including custom triggers, appear as value.ComputedMarker.
func (n *Node) Raw() map[string]any {
	out := make(map[string]any)
	if n == nil {
		return out
	}

	if len(n.Default) > 0 {
		out[defaultKey] = value.Raw(n.Default)
	}

	if len(n.Filetypes) > 0 {
		fts := make(map[string]any, len(n.Filetypes))
		for ft, tree := range n.Filetypes {
			fts[ft] = value.Raw(tree)
		}
		out[filetypesKey] = fts
	}

	if len(n.Files) > 0 {
		out[filesKey] = rawEntries(n.Files)
	}
	if len(n.Dirs) > 0 {
		out[dirsKey] = rawEntries(n.Dirs)
	}

	if len(n.Custom) > 0 {
		customs := make([]any, len(n.Custom))
		for i, entry := range n.Custom {
			body := entry.Node.Raw()
			body[triggerKey] = rawTrigger(entry.Trigger)
			customs[i] = body
		}
		out[customKey] = customs
	}

	return out
}

func rawEntries(entries []Entry) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		body := e.Node.Raw()
		body[patternKey] = e.Pattern
		out[i] = body
	}
	return out
}

func rawTrigger(v value.Value) any {
	switch t := v.(type) {
	case value.Literal:
		return t.V
	case nil:
		return nil
	default:
		return value.ComputedMarker
	}
}

// FiletypeNames returns the sorted names of the filetypes n defines.
func (n *Node) FiletypeNames() []string {
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.Filetypes))
	for ft := range n.Filetypes {
		names = append(names, ft)
	}
	sort.Strings(names)
	return names
}
