package config

import (
	"strconv"
	"strings"

	"github.com/dshills/imgclip/internal/config/layer"
	"github.com/dshills/imgclip/internal/config/value"
)

// match records which layer produced a value.
type match struct {
	kind    layer.Kind
	pattern string
}

// lookup finds the raw value for key in node, consulting the layers in
// precedence order and returning the first non-nil result.
//
// The node is the configuration currently in effect: the merged base at the
// top level, or the body of a matching custom, file or dir entry when called
// recursively. Host state is read fresh on every call.
func lookup(key string, node *layer.Node, ctx value.Context) (value.Value, match) {
	if node == nil {
		return nil, match{}
	}

	if v, m := matchCustom(key, node, ctx); v != nil {
		return v, m
	}

	h := ctx.Host
	if v, m := matchEntries(key, node.Files, ctx, h.FilePath(), layer.KindFilePath, strings.HasSuffix); v != nil {
		return v, m
	}
	if v, m := matchEntries(key, node.Files, ctx, h.FileName(), layer.KindFileName, strings.HasSuffix); v != nil {
		return v, m
	}
	if v, m := matchEntries(key, node.Dirs, ctx, h.DirPath(), layer.KindDirPath, strings.HasPrefix); v != nil {
		return v, m
	}
	if v, m := matchEntries(key, node.Dirs, ctx, h.DirName(), layer.KindDirName, strings.HasPrefix); v != nil {
		return v, m
	}

	if ft := h.Filetype(); ft != "" {
		if v := value.Lookup(node.Filetypes[ft], key); v != nil {
			return v, match{kind: layer.KindFiletype, pattern: ft}
		}
	}

	if v := value.Lookup(node.Default, key); v != nil {
		return v, match{kind: layer.KindDefault}
	}

	return nil, match{}
}

// matchCustom evaluates triggers in order. The first truthy trigger decides
// the layer: its entry is searched and later entries are never consulted,
// even when the entry does not define key.
func matchCustom(key string, node *layer.Node, ctx value.Context) (value.Value, match) {
	for i, entry := range node.Custom {
		if !value.Truthy(value.Materialize(entry.Trigger, ctx)) {
			continue
		}
		v, _ := lookup(key, entry.Node, ctx)
		return v, match{kind: layer.KindCustom, pattern: strconv.Itoa(i)}
	}
	return nil, match{}
}

// matchEntries finds the first entry whose pattern matches subject and
// searches its body. Files match by suffix and dirs by prefix. An empty
// subject or pattern never matches.
func matchEntries(
	key string,
	entries []layer.Entry,
	ctx value.Context,
	subject string,
	kind layer.Kind,
	matches func(subject, pattern string) bool,
) (value.Value, match) {
	if subject == "" {
		return nil, match{}
	}
	for _, entry := range entries {
		if entry.Pattern == "" || !matches(subject, entry.Pattern) {
			continue
		}
		v, _ := lookup(key, entry.Node, ctx)
		return v, match{kind: kind, pattern: entry.Pattern}
	}
	return nil, match{}
}
