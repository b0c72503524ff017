package layer

import (
	"reflect"
	"testing"

	"github.com/dshills/imgclip/internal/config/value"
)

func lit(v any) value.Literal { return value.Literal{V: v} }

func patterns(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Pattern
	}
	return out
}

func TestMerge_Nodes(t *testing.T) {
	base := &Node{
		Default: value.Tree{"dir_path": lit("assets"), "debug": lit(false)},
		Filetypes: map[string]value.Tree{
			"markdown": {"template": lit("![$CURSOR]($FILE_PATH)")},
		},
		Files: []Entry{
			{Pattern: "README.md", Node: &Node{Default: value.Tree{"dir_path": lit("docs")}}},
		},
		Custom: []Custom{{Trigger: lit(true), Node: &Node{}}},
	}
	over := &Node{
		Default: value.Tree{"dir_path": lit("img")},
		Filetypes: map[string]value.Tree{
			"markdown": {"url_encode_path": lit(true)},
			"html":     {"template": lit("<img>")},
		},
		Files: []Entry{
			{Pattern: "README.md", Node: &Node{Default: value.Tree{"template": lit("x")}}},
			{Pattern: "notes.md", Node: &Node{}},
		},
		Dirs: []Entry{{Pattern: "/work", Node: &Node{}}},
	}

	merged := Merge(base, over)

	if got := value.Materialize(value.Lookup(merged.Default, "dir_path"), value.Context{}); got != "img" {
		t.Errorf("dir_path = %v, want img", got)
	}
	if got := value.Materialize(value.Lookup(merged.Default, "debug"), value.Context{}); got != false {
		t.Errorf("debug = %v, want false", got)
	}

	md := value.Raw(merged.Filetypes["markdown"])
	if md["template"] != "![$CURSOR]($FILE_PATH)" || md["url_encode_path"] != true {
		t.Errorf("markdown = %v, want merged template and url_encode_path", md)
	}
	if _, ok := merged.Filetypes["html"]; !ok {
		t.Error("html filetype should be added")
	}

	if got := patterns(merged.Files); !reflect.DeepEqual(got, []string{"README.md", "notes.md"}) {
		t.Errorf("files = %v", got)
	}
	readme := value.Raw(merged.Files[0].Node.Default)
	if readme["dir_path"] != "docs" || readme["template"] != "x" {
		t.Errorf("README.md entry = %v, want merged entry", readme)
	}

	if len(merged.Custom) != 1 {
		t.Errorf("custom = %d entries, want base list kept when override is empty", len(merged.Custom))
	}
	if got := patterns(merged.Dirs); !reflect.DeepEqual(got, []string{"/work"}) {
		t.Errorf("dirs = %v", got)
	}

	// Inputs are untouched.
	if got := value.Materialize(value.Lookup(base.Default, "dir_path"), value.Context{}); got != "assets" {
		t.Errorf("base modified: dir_path = %v", got)
	}
	if len(base.Files) != 1 {
		t.Errorf("base files modified: %v", patterns(base.Files))
	}
}

func TestMerge_EntryOrder(t *testing.T) {
	entry := func(pattern string, listed bool) Entry {
		return Entry{Pattern: pattern, Node: &Node{}, Listed: listed}
	}

	tests := []struct {
		name string
		base []Entry
		over []Entry
		want []string
	}{
		{
			name: "longer override pattern moves ahead",
			base: []Entry{entry(".md", false)},
			over: []Entry{entry("notes/todo.md", false)},
			want: []string{"notes/todo.md", ".md"},
		},
		{
			name: "longer base pattern stays ahead",
			base: []Entry{entry("notes/todo.md", false)},
			over: []Entry{entry(".md", false)},
			want: []string{"notes/todo.md", ".md"},
		},
		{
			name: "ties are lexical",
			base: []Entry{entry("b.md", false)},
			over: []Entry{entry("a.md", false)},
			want: []string{"a.md", "b.md"},
		},
		{
			name: "listed override appends",
			base: []Entry{entry(".md", false)},
			over: []Entry{entry("notes/todo.md", true)},
			want: []string{".md", "notes/todo.md"},
		},
		{
			name: "listed base keeps order",
			base: []Entry{entry("/z", true), entry("/a", true)},
			over: []Entry{entry("/long/path", false)},
			want: []string{"/z", "/a", "/long/path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(&Node{Files: tt.base}, &Node{Files: tt.over})
			if got := patterns(merged.Files); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("files = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge_CustomReplaced(t *testing.T) {
	base := &Node{Custom: []Custom{{Trigger: lit(true), Node: &Node{}}, {Trigger: lit(true), Node: &Node{}}}}
	over := &Node{Custom: []Custom{{Trigger: lit(false), Node: &Node{}}}}

	merged := Merge(base, over)
	if len(merged.Custom) != 1 {
		t.Fatalf("custom = %d entries, want 1", len(merged.Custom))
	}
	if merged.Custom[0].Trigger != value.Value(lit(false)) {
		t.Errorf("trigger = %v, want override trigger", merged.Custom[0].Trigger)
	}
}

func TestMerge_Nil(t *testing.T) {
	if Merge(nil, nil) == nil {
		t.Error("Merge(nil, nil) should return an empty node")
	}
	base := &Node{Default: value.Tree{"a": lit(1)}}
	if got := Merge(base, nil); got == base {
		t.Error("Merge(base, nil) should return a copy")
	}
}

func TestNode_Raw(t *testing.T) {
	n := &Node{
		Default:   value.Tree{"dir_path": lit("assets")},
		Filetypes: map[string]value.Tree{"html": {"template": lit("<img>")}},
		Files:     []Entry{{Pattern: "a.md", Node: &Node{Default: value.Tree{"debug": lit(true)}}}},
		Custom: []Custom{{
			Trigger: value.Computed(func(value.Context) any { return true }),
			Node:    &Node{Default: value.Tree{"template": lit("t")}},
		}},
	}

	raw := n.Raw()
	want := map[string]any{
		"default":   map[string]any{"dir_path": "assets"},
		"filetypes": map[string]any{"html": map[string]any{"template": "<img>"}},
		"files": []any{map[string]any{
			"pattern": "a.md",
			"default": map[string]any{"debug": true},
		}},
		"custom": []any{map[string]any{
			"trigger": value.ComputedMarker,
			"default": map[string]any{"template": "t"},
		}},
	}
	if !reflect.DeepEqual(raw, want) {
		t.Errorf("Raw() = %#v\nwant %#v", raw, want)
	}

	// Raw output decodes back to the same shape.
	decoded, issues := Decode(raw)
	if len(issues) != 0 {
		t.Fatalf("Decode(Raw()) issues = %v", issues)
	}
	if got := patterns(decoded.Files); !reflect.DeepEqual(got, []string{"a.md"}) {
		t.Errorf("round trip files = %v", got)
	}
}

func TestNode_FiletypeNames(t *testing.T) {
	n := &Node{Filetypes: map[string]value.Tree{"tex": nil, "html": nil, "md": nil}}
	if got := n.FiletypeNames(); !reflect.DeepEqual(got, []string{"html", "md", "tex"}) {
		t.Errorf("FiletypeNames() = %v", got)
	}
}

func TestKind_String(t *testing.T) {
	want := []string{"custom", "file", "file-name", "dir", "dir-name", "filetype", "default"}
	for i, k := range Precedence {
		if k.String() != want[i] {
			t.Errorf("Precedence[%d] = %q, want %q", i, k, want[i])
		}
	}
	if KindNone.String() != "none" {
		t.Errorf("KindNone = %q", KindNone)
	}
}
