// Package script runs Lua configuration files.
//
// A Lua configuration is a chunk that returns a table. Functions found in the
// table become computed configuration values: they are called with the
// caller's args table each time the option is resolved and can query the
// current file through the imgclip module:
//
//	local imgclip = require("imgclip")
//	return {
//	  dir_path = function(args)
//	    return imgclip.dir_name() .. "-assets"
//	  end,
//	  custom = {
//	    { trigger = function() return imgclip.filetype() == "markdown" end,
//	      template = "![$CURSOR]($FILE_PATH)" },
//	  },
//	}
//
// gopher-lua states are not goroutine-safe, so every call into a Runtime is
// serialized by its mutex.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/imgclip/internal/config/value"
	"github.com/dshills/imgclip/internal/host"
	"github.com/dshills/imgclip/internal/logging"
)

// DefaultTimeout bounds a single chunk or function call.
const DefaultTimeout = 2 * time.Second

// Runtime is a sandboxed Lua state.
type Runtime struct {
	mu sync.Mutex
	L  *lua.LState

	timeout time.Duration
	logger  *slog.Logger

	// current is the host of the call in progress. Only read while mu is held.
	current host.Host

	closed bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout sets the deadline for each call. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = d
	}
}

// WithLogger sets the logger for failures inside computed values.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a sandboxed runtime with the imgclip module installed.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
		current: host.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.installHostModule()
	installSandbox(r.L)

	return r
}

// EvalString runs code and returns its first result converted to Go.
// Functions in the result become value.Computed values bound to r.
func (r *Runtime) EvalString(ctx context.Context, name, code string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrStateClosed
	}

	fn, err := r.L.Load(strings.NewReader(code), name)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}

	results, err := r.call(ctx, fn)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return r.toGo(results[0]), nil
}

// Call invokes fn with the args of vctx as a Lua table. While it runs, the
// imgclip module answers for the host of vctx.
func (r *Runtime) Call(ctx context.Context, fn lua.LValue, vctx value.Context) (any, error) {
	lfn, ok := fn.(*lua.LFunction)
	if !ok {
		return nil, ErrNotFunction
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrStateClosed
	}

	if vctx.Host != nil {
		r.current = vctx.Host
		defer func() { r.current = host.Nop{} }()
	}

	results, err := r.call(ctx, lfn, r.toLua(map[string]any(vctx.Args)))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return r.toGo(results[0]), nil
}

// Computed wraps fn as a configuration value. Lua errors are logged and
// produce nil, which resolves as not found.
func (r *Runtime) Computed(fn *lua.LFunction) value.Computed {
	return func(vctx value.Context) any {
		v, err := r.Call(context.Background(), fn, vctx)
		if err != nil {
			r.logger.Warn("lua function failed", "error", err)
			return nil
		}
		return v
	}
}

// call runs fn with args under the configured deadline. r.mu must be held.
func (r *Runtime) call(ctx context.Context, fn *lua.LFunction, args ...lua.LValue) (results []lua.LValue, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	top := r.L.GetTop()
	r.L.Push(fn)
	for _, arg := range args {
		r.L.Push(arg)
	}

	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("lua panic: %v", p)
			}
		}()
		err = r.L.PCall(len(args), lua.MultRet, nil)
	}()

	if err != nil {
		r.L.SetTop(top)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
		}
		return nil, err
	}

	n := r.L.GetTop() - top
	results = make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		results[i] = r.L.Get(top + i + 1)
	}
	r.L.Pop(n)

	return results, nil
}

// Close releases the Lua state. Computed values created by r resolve as
// not found afterwards.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}
