package config

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/dshills/imgclip/internal/config/layer"
	"github.com/dshills/imgclip/internal/config/notify"
	"github.com/dshills/imgclip/internal/config/value"
	"github.com/dshills/imgclip/internal/host"
	"github.com/dshills/imgclip/internal/logging"
)

// sourceConfigure is the change source reported by Configure.
const sourceConfigure = "configure"

// Resolver owns the base configuration and answers option lookups.
// It is safe for concurrent use.
type Resolver struct {
	mu   sync.RWMutex
	base *layer.Node

	host     host.Host
	logger   *slog.Logger
	notifier *notify.Notifier
	ownsNote bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHost sets the host consulted when a request carries none.
func WithHost(h host.Host) Option {
	return func(r *Resolver) {
		if h != nil {
			r.host = h
		}
	}
}

// WithLogger sets the logger for configuration diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithNotifier publishes option changes through n instead of a private notifier.
// The caller keeps ownership and must close it.
func WithNotifier(n *notify.Notifier) Option {
	return func(r *Resolver) {
		if n != nil {
			r.notifier = n
			r.ownsNote = false
		}
	}
}

// New creates a Resolver holding the built-in defaults.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		base:     defaultNode(),
		host:     host.Nop{},
		logger:   logging.NewNop(),
		notifier: notify.New(),
		ownsNote: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Close releases the resolver's notifier if it created one.
func (r *Resolver) Close() {
	if r.ownsNote {
		r.notifier.Close()
	}
}

// Notifier returns the notifier that receives option changes.
func (r *Resolver) Notifier() *notify.Notifier {
	return r.notifier
}

// Configure replaces the base configuration with the built-in defaults
// overlaid with overrides. Malformed parts of overrides are logged and
// skipped. The last call wins; Configure(nil) restores the defaults.
func (r *Resolver) Configure(overrides map[string]any) {
	node, issues := layer.Decode(overrides)
	r.logIssues(issues, sourceConfigure)
	r.ConfigureNode(node)
}

// ConfigureNode is Configure for an already decoded node.
func (r *Resolver) ConfigureNode(overrides *layer.Node) {
	next := layer.Merge(defaultNode(), overrides)

	r.mu.Lock()
	prev := r.base
	r.base = next
	r.mu.Unlock()

	r.publish(prev, next)
}

// Base returns a copy of the current base configuration.
func (r *Resolver) Base() *layer.Node {
	return r.snapshot().Clone()
}

// snapshot returns the current base. Published nodes are never mutated,
// so the pointer can be read after the lock is released.
func (r *Resolver) snapshot() *layer.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.base
}

// Request describes one option lookup.
type Request struct {
	// Key is the dotted option key, e.g. "drag_and_drop.enabled".
	Key string

	// Overrides is a raw configuration merged over the base for this lookup only.
	Overrides map[string]any

	// Args is passed to computed values.
	Args value.Args

	// Host overrides the resolver's host for this lookup.
	Host host.Host
}

// Result is the outcome of a lookup.
type Result struct {
	// Value is the materialized value, nil when Found is false.
	Value any

	Found bool

	// Kind is the outermost layer that answered the lookup.
	Kind layer.Kind

	// Pattern identifies the entry within Kind: the file or dir pattern,
	// the filetype name, or the index of a custom entry.
	Pattern string
}

// Get returns the effective value of key. The boolean is false when no
// layer defines it.
func (r *Resolver) Get(key string, overrides map[string]any, args value.Args) (any, bool) {
	res := r.Resolve(Request{Key: key, Overrides: overrides, Args: args})
	return res.Value, res.Found
}

// Resolve looks up req.Key and reports which layer answered.
func (r *Resolver) Resolve(req Request) Result {
	node := r.snapshot()
	if len(req.Overrides) > 0 {
		over, issues := layer.Decode(req.Overrides)
		r.logIssues(issues, "overrides")
		node = layer.Merge(node, over)
	}

	h := req.Host
	if h == nil {
		h = r.host
	}
	args := req.Args
	if args == nil {
		args = value.Args{}
	}
	ctx := value.Context{Args: args, Host: h}

	raw, m := lookup(req.Key, node, ctx)
	v := value.Materialize(raw, ctx)
	if v == nil {
		m = match{}
	}

	r.logger.Debug("resolved option",
		"key", req.Key,
		"layer", m.kind.String(),
		"pattern", m.pattern,
		"found", v != nil,
	)

	return Result{
		Value:   v,
		Found:   v != nil,
		Kind:    m.kind,
		Pattern: m.pattern,
	}
}

// Explain resolves key against every layer and reports each layer that
// defines it, in precedence order. The first element is the effective value.
func (r *Resolver) Explain(key string, h host.Host, args value.Args) []Result {
	if h == nil {
		h = r.host
	}
	if args == nil {
		args = value.Args{}
	}
	ctx := value.Context{Args: args, Host: h}
	node := r.snapshot()

	var results []Result
	add := func(v value.Value, m match) {
		if got := value.Materialize(v, ctx); got != nil {
			results = append(results, Result{Value: got, Found: true, Kind: m.kind, Pattern: m.pattern})
		}
	}

	add(matchCustom(key, node, ctx))
	add(matchEntries(key, node.Files, ctx, h.FilePath(), layer.KindFilePath, strings.HasSuffix))
	add(matchEntries(key, node.Files, ctx, h.FileName(), layer.KindFileName, strings.HasSuffix))
	add(matchEntries(key, node.Dirs, ctx, h.DirPath(), layer.KindDirPath, strings.HasPrefix))
	add(matchEntries(key, node.Dirs, ctx, h.DirName(), layer.KindDirName, strings.HasPrefix))
	if ft := h.Filetype(); ft != "" {
		add(value.Lookup(node.Filetypes[ft], key), match{kind: layer.KindFiletype, pattern: ft})
	}
	add(value.Lookup(node.Default, key), match{kind: layer.KindDefault})

	return results
}

func (r *Resolver) logIssues(issues []layer.Issue, source string) {
	for _, issue := range issues {
		r.logger.Debug("skipping malformed configuration",
			"source", source,
			"path", issue.Path,
			"reason", issue.Reason,
		)
	}
}

// publish reports the default options that differ between prev and next,
// followed by a reload event.
func (r *Resolver) publish(prev, next *layer.Node) {
	added, modified, removed := value.Diff(prev.Default, next.Default)
	oldFlat := value.Flatten(prev.Default)
	newFlat := value.Flatten(next.Default)

	batch := r.notifier.NewBatch()
	for _, key := range added {
		batch.Set(key, nil, newFlat[key], sourceConfigure)
	}
	for _, key := range modified {
		batch.Set(key, oldFlat[key], newFlat[key], sourceConfigure)
	}
	for _, key := range removed {
		batch.Delete(key, oldFlat[key], sourceConfigure)
	}
	batch.Reload(sourceConfigure)

	if n := batch.Len() - 1; n > 0 {
		r.logger.Info("configuration changed", "options", n)
	}
	batch.Commit()
}
