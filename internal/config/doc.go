// Package config resolves imgclip options for the current file.
//
// A single option is looked up through a fixed stack of override layers,
// highest first:
//
//	┌─────────────────────────────┐
//	│  1. custom                  │  ← first entry whose trigger is truthy
//	├─────────────────────────────┤
//	│  2. files (full path)       │  ← pattern is a suffix of the file path
//	├─────────────────────────────┤
//	│  3. files (file name)       │
//	├─────────────────────────────┤
//	│  4. dirs (full path)        │  ← pattern is a prefix of the directory
//	├─────────────────────────────┤
//	│  5. dirs (dir name)         │
//	├─────────────────────────────┤
//	│  6. filetypes.<ft>          │
//	├─────────────────────────────┤
//	│  7. default                 │  ← lowest
//	└─────────────────────────────┘
//
// The body of a custom, files or dirs entry is itself a full configuration
// and is searched with the same algorithm. The first layer producing a
// non-nil value answers. Within one layer the first matching entry decides,
// even when it does not define the option.
//
// Values may be deferred: functions (from Go or Lua) are called on every
// lookup with the caller's args and the current host, so nothing is cached.
//
// # Sub-packages
//
//   - value: the Literal, Computed and Tree value types and key paths
//   - layer: typed override layers, decoding and source layer merging
//   - loader: TOML, YAML, Lua and environment loaders
//   - source: the user, project, environment, argument and session stack
//   - watcher: file watching for live reload
//   - notify: change notification and observer pattern
//
// # Basic Usage
//
//	r := config.New(config.WithHost(host.Static{Path: "/notes/todo.md"}))
//	defer r.Close()
//
//	r.Configure(map[string]any{
//	    "filetypes": map[string]any{
//	        "markdown": map[string]any{"dir_path": "images"},
//	    },
//	})
//
//	dir, ok := r.Get("dir_path", nil, nil) // "images", true
//
//	// Typed access
//	enabled, err := r.GetBool("drag_and_drop.enabled")
//	opts := r.Options(nil, nil)
//
// # Error Handling
//
// Lookups never fail: a missing or malformed option resolves as not found.
// The typed getters report ErrSettingNotFound and *TypeError, which matches
// ErrTypeMismatch.
package config
