package main

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/imgclip/internal/config/loader"
	"github.com/dshills/imgclip/internal/config/value"
)

// parseSets assembles --set path=value pairs into a configuration map.
// Paths use sjson syntax, so a literal dot in a file pattern is escaped:
// --set 'files./notes/todo\.md.dir_path=img'.
func parseSets(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}

	doc := "{}"
	for _, set := range sets {
		path, raw, ok := strings.Cut(set, "=")
		path = strings.TrimSpace(path)
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --set %q: want path=value", set)
		}

		var err error
		doc, err = sjson.Set(doc, path, loader.ParseValue(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", set, err)
		}
	}

	m, ok := gjson.Parse(doc).Value().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid --set overrides: %s", doc)
	}
	return m, nil
}

// parseArgs turns --arg key=value pairs into the args handed to computed values.
func parseArgs(pairs []string) (value.Args, error) {
	args := value.Args{}
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --arg %q: want key=value", pair)
		}
		args[k] = loader.ParseValue(v)
	}
	return args, nil
}
