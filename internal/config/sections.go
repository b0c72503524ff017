package config

import (
	"github.com/dshills/imgclip/internal/config/value"
	"github.com/dshills/imgclip/internal/host"
)

// Options is a snapshot of every built-in option resolved for one context.
// Mutating it does not modify the configuration.
type Options struct {
	// Debug enables debug logging in the paste workflow.
	Debug bool

	// DirPath is the directory images are saved to.
	DirPath string

	// FileName is the strftime pattern for generated file names.
	FileName string

	// URLEncodePath percent-encodes the inserted path.
	URLEncodePath bool

	// UseAbsolutePath inserts absolute paths.
	UseAbsolutePath bool

	// RelativeToCurrentFile saves images relative to the current file
	// rather than the working directory.
	RelativeToCurrentFile bool

	// RelativeTemplatePath makes $FILE_PATH relative to the current file.
	RelativeTemplatePath bool

	PromptForFileName   bool
	ShowDirPathInPrompt bool

	// UseCursorInTemplate places the cursor at $CURSOR after insertion.
	UseCursorInTemplate  bool
	InsertModeAfterPaste bool

	// Template is the text inserted for a pasted image.
	Template string

	EmbedImageAsBase64 bool

	// MaxBase64Size is the largest image, in KB, that is embedded as base64.
	MaxBase64Size int

	DragAndDrop DragAndDropOptions
}

// DragAndDropOptions controls drag and drop handling.
type DragAndDropOptions struct {
	Enabled        bool
	InsertMode     bool
	CopyImages     bool
	DownloadImages bool
}

// Options resolves every built-in option for h and args. A nil host uses
// the resolver's host. Values of the wrong type fall back to the built-in
// default and are logged.
func (r *Resolver) Options(h host.Host, args value.Args) Options {
	s := sectionReader{r: r, host: h, args: args, defaults: defaultNode().Default}

	return Options{
		Debug:                 s.getBool(KeyDebug),
		DirPath:               s.getString(KeyDirPath),
		FileName:              s.getString(KeyFileName),
		URLEncodePath:         s.getBool(KeyURLEncodePath),
		UseAbsolutePath:       s.getBool(KeyUseAbsolutePath),
		RelativeToCurrentFile: s.getBool(KeyRelativeToCurrentFile),
		RelativeTemplatePath:  s.getBool(KeyRelativeTemplatePath),
		PromptForFileName:     s.getBool(KeyPromptForFileName),
		ShowDirPathInPrompt:   s.getBool(KeyShowDirPathInPrompt),
		UseCursorInTemplate:   s.getBool(KeyUseCursorInTemplate),
		InsertModeAfterPaste:  s.getBool(KeyInsertModeAfterPaste),
		Template:              s.getString(KeyTemplate),
		EmbedImageAsBase64:    s.getBool(KeyEmbedImageAsBase64),
		MaxBase64Size:         s.getInt(KeyMaxBase64Size),
		DragAndDrop: DragAndDropOptions{
			Enabled:        s.getBool(KeyDragAndDropEnabled),
			InsertMode:     s.getBool(KeyDragAndDropInsertMode),
			CopyImages:     s.getBool(KeyDragAndDropCopyImages),
			DownloadImages: s.getBool(KeyDragAndDropDownloadImages),
		},
	}
}

type sectionReader struct {
	r        *Resolver
	host     host.Host
	args     value.Args
	defaults value.Tree
}

func (s sectionReader) get(key string) (any, bool) {
	res := s.r.Resolve(Request{Key: key, Args: s.args, Host: s.host})
	return res.Value, res.Found
}

// builtin returns the value key has in DefaultConfig's default section.
func (s sectionReader) builtin(key string) any {
	return value.Materialize(value.Lookup(s.defaults, key), value.Context{})
}

func (s sectionReader) mismatch(key, expected string, v any) {
	s.r.logger.Warn("ignoring option with wrong type",
		"error", &TypeError{Key: key, Expected: expected, Actual: typeName(v)},
	)
}

func (s sectionReader) getString(key string) string {
	if v, ok := s.get(key); ok {
		if str, ok := v.(string); ok {
			return str
		}
		s.mismatch(key, "string", v)
	}
	str, _ := s.builtin(key).(string)
	return str
}

func (s sectionReader) getBool(key string) bool {
	if v, ok := s.get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
		s.mismatch(key, "bool", v)
	}
	b, _ := s.builtin(key).(bool)
	return b
}

func (s sectionReader) getInt(key string) int {
	if v, ok := s.get(key); ok {
		if i, ok := toInt(v); ok {
			return i
		}
		s.mismatch(key, "int", v)
	}
	i, _ := toInt(s.builtin(key))
	return i
}
