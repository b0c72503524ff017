package config

import (
	"github.com/dshills/imgclip/internal/config/layer"
)

// Option keys understood by the built-in configuration.
const (
	KeyDebug                 = "debug"
	KeyDirPath               = "dir_path"
	KeyFileName              = "file_name"
	KeyURLEncodePath         = "url_encode_path"
	KeyUseAbsolutePath       = "use_absolute_path"
	KeyRelativeToCurrentFile = "relative_to_current_file"
	KeyRelativeTemplatePath  = "relative_template_path"
	KeyPromptForFileName     = "prompt_for_file_name"
	KeyShowDirPathInPrompt   = "show_dir_path_in_prompt"
	KeyUseCursorInTemplate   = "use_cursor_in_template"
	KeyInsertModeAfterPaste  = "insert_mode_after_paste"
	KeyTemplate              = "template"
	KeyEmbedImageAsBase64    = "embed_image_as_base64"
	KeyMaxBase64Size         = "max_base64_size"

	KeyDragAndDrop               = "drag_and_drop"
	KeyDragAndDropEnabled        = "drag_and_drop.enabled"
	KeyDragAndDropInsertMode     = "drag_and_drop.insert_mode"
	KeyDragAndDropCopyImages     = "drag_and_drop.copy_images"
	KeyDragAndDropDownloadImages = "drag_and_drop.download_images"
)

// Keys lists every leaf option of the built-in configuration in display order.
var Keys = []string{
	KeyDebug,
	KeyDirPath,
	KeyFileName,
	KeyURLEncodePath,
	KeyUseAbsolutePath,
	KeyRelativeToCurrentFile,
	KeyRelativeTemplatePath,
	KeyPromptForFileName,
	KeyShowDirPathInPrompt,
	KeyUseCursorInTemplate,
	KeyInsertModeAfterPaste,
	KeyTemplate,
	KeyEmbedImageAsBase64,
	KeyMaxBase64Size,
	KeyDragAndDropEnabled,
	KeyDragAndDropInsertMode,
	KeyDragAndDropCopyImages,
	KeyDragAndDropDownloadImages,
}

// Templates for the built-in filetypes.
const (
	markdownTemplate = "![$CURSOR]($FILE_PATH)"
	htmlTemplate     = `<img src="$FILE_PATH" alt="$CURSOR">`
	texTemplate      = `\begin{figure}[h]
  \centering
  \includegraphics[width=0.8\textwidth]{$FILE_PATH}
  \caption{$CURSOR}
  \label{fig:$LABEL}
\end{figure}
    `
	typstTemplate = `#figure(
  image("$FILE_PATH", width: 80%),
  caption: [$CURSOR],
) <fig-$LABEL>
    `
	rstTemplate = `.. image:: $FILE_PATH
   :alt: $CURSOR
   :width: 80%
    `
	asciidocTemplate = `image::$FILE_PATH[width=80%, alt="$CURSOR"]`
	orgTemplate      = `#+BEGIN_FIGURE
[[file:$FILE_PATH]]
#+CAPTION: $CURSOR
#+NAME: fig:$LABEL
#+END_FIGURE
    `
)

// DefaultConfig returns the built-in configuration as a raw map.
// Every call returns a fresh copy that the caller may modify.
func DefaultConfig() map[string]any {
	markdown := map[string]any{
		KeyURLEncodePath: true,
		KeyTemplate:      markdownTemplate,
		KeyDragAndDrop: map[string]any{
			"download_images": false,
		},
	}
	tex := map[string]any{
		KeyRelativeTemplatePath: false,
		KeyTemplate:             texTemplate,
	}

	return map[string]any{
		"default": map[string]any{
			KeyDebug:                 false,
			KeyDirPath:               "assets",
			KeyFileName:              "%Y-%m-%d-%H-%M-%S",
			KeyURLEncodePath:         false,
			KeyUseAbsolutePath:       false,
			KeyRelativeToCurrentFile: false,
			KeyRelativeTemplatePath:  true,
			KeyPromptForFileName:     true,
			KeyShowDirPathInPrompt:   false,
			KeyUseCursorInTemplate:   true,
			KeyInsertModeAfterPaste:  true,
			KeyTemplate:              "$FILE_PATH",
			KeyEmbedImageAsBase64:    false,
			KeyMaxBase64Size:         int64(10),
			KeyDragAndDrop: map[string]any{
				"enabled":         true,
				"insert_mode":     false,
				"copy_images":     false,
				"download_images": true,
			},
		},
		"filetypes": map[string]any{
			"markdown": layer.DeepMerge(nil, markdown),
			"md":       layer.DeepMerge(nil, markdown),
			"rmd":      layer.DeepMerge(nil, markdown),
			"html":     map[string]any{KeyTemplate: htmlTemplate},
			"tex":      layer.DeepMerge(nil, tex),
			"plaintex": layer.DeepMerge(nil, tex),
			"typst":    map[string]any{KeyTemplate: typstTemplate},
			"rst":      map[string]any{KeyTemplate: rstTemplate},
			"asciidoc": map[string]any{KeyTemplate: asciidocTemplate},
			"org":      map[string]any{KeyTemplate: orgTemplate},
		},
		"files":  map[string]any{},
		"dirs":   map[string]any{},
		"custom": []any{},
	}
}

// defaultNode decodes the built-in configuration.
func defaultNode() *layer.Node {
	n, _ := layer.Decode(DefaultConfig())
	return n
}
