// Package host describes the editor-side inputs a resolution depends on.
//
// A Host answers the questions the resolver asks about the buffer being
// edited: where the file lives, what directory it is in, and what filetype
// the editor assigned to it. Every accessor is queried fresh on each
// resolution; implementations must not assume results are cached.
package host

import (
	"path/filepath"
	"strings"
)

// Host supplies the current file and directory for a resolution.
type Host interface {
	// FilePath returns the full path of the current file.
	FilePath() string

	// FileName returns the base name of the current file.
	FileName() string

	// DirPath returns the full path of the current directory.
	DirPath() string

	// DirName returns the base name of the current directory.
	DirName() string

	// Filetype returns the filetype identifier of the current buffer.
	Filetype() string
}

// Static is a Host backed by plain fields.
//
// Empty fields are derived where possible: FileName from Path, Dir from
// the directory of Path, and Type from the file extension.
type Static struct {
	Path string
	Dir  string
	Type string
}

// FilePath returns the full file path.
func (s Static) FilePath() string {
	return s.Path
}

// FileName returns the base name of Path.
func (s Static) FileName() string {
	if s.Path == "" {
		return ""
	}
	return filepath.Base(s.Path)
}

// DirPath returns Dir, or the directory containing Path.
func (s Static) DirPath() string {
	if s.Dir != "" {
		return s.Dir
	}
	if s.Path == "" {
		return ""
	}
	return filepath.Dir(s.Path)
}

// DirName returns the base name of DirPath.
func (s Static) DirName() string {
	dir := s.DirPath()
	if dir == "" {
		return ""
	}
	return filepath.Base(dir)
}

// Filetype returns Type, or the filetype detected from Path.
func (s Static) Filetype() string {
	if s.Type != "" {
		return s.Type
	}
	return DetectFiletype(s.Path)
}

// Nop is a Host with no file, no directory and no filetype.
type Nop struct{}

func (Nop) FilePath() string { return "" }
func (Nop) FileName() string { return "" }
func (Nop) DirPath() string { return "" }
func (Nop) DirName() string { return "" }
func (Nop) Filetype() string { return "" }

// DetectFiletype returns the filetype for a path based on its extension.
// Returns an empty string when the extension is not recognized.
func DetectFiletype(path string) string {
	if path == "" {
		return ""
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "markdown"
	case ".rmd":
		return "rmd"
	case ".html", ".htm":
		return "html"
	case ".tex":
		return "tex"
	case ".typ":
		return "typst"
	case ".rst":
		return "rst"
	case ".adoc", ".asciidoc", ".asc":
		return "asciidoc"
	case ".org":
		return "org"
	case ".txt":
		return "text"
	default:
		return ""
	}
}
