package host

import "testing"

func TestStatic_Derived(t *testing.T) {
	h := Static{Path: "/home/user/notes/today.md"}

	if got := h.FilePath(); got != "/home/user/notes/today.md" {
		t.Errorf("FilePath() = %q", got)
	}
	if got := h.FileName(); got != "today.md" {
		t.Errorf("FileName() = %q, want %q", got, "today.md")
	}
	if got := h.DirPath(); got != "/home/user/notes" {
		t.Errorf("DirPath() = %q, want %q", got, "/home/user/notes")
	}
	if got := h.DirName(); got != "notes" {
		t.Errorf("DirName() = %q, want %q", got, "notes")
	}
	if got := h.Filetype(); got != "markdown" {
		t.Errorf("Filetype() = %q, want %q", got, "markdown")
	}
}

func TestStatic_Explicit(t *testing.T) {
	h := Static{Path: "/tmp/a.md", Dir: "/work/project/src", Type: "rmd"}

	if got := h.DirPath(); got != "/work/project/src" {
		t.Errorf("DirPath() = %q", got)
	}
	if got := h.DirName(); got != "src" {
		t.Errorf("DirName() = %q", got)
	}
	if got := h.Filetype(); got != "rmd" {
		t.Errorf("Filetype() = %q", got)
	}
}

func TestStatic_Empty(t *testing.T) {
	var h Static
	if h.FileName() != "" || h.DirPath() != "" || h.DirName() != "" || h.Filetype() != "" {
		t.Errorf("empty Static should answer empty strings, got %+v", h)
	}
}

func TestDetectFiletype(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.md", "markdown"},
		{"A.MARKDOWN", "markdown"},
		{"paper.tex", "tex"},
		{"doc.typ", "typst"},
		{"index.htm", "html"},
		{"notes.org", "org"},
		{"README.rst", "rst"},
		{"guide.adoc", "asciidoc"},
		{"main.go", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectFiletype(tt.path); got != tt.want {
				t.Errorf("DetectFiletype(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
