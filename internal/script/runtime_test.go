package script

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dshills/imgclip/internal/config/value"
	"github.com/dshills/imgclip/internal/host"
)

func TestEvalString_Table(t *testing.T) {
	r := New()
	defer r.Close()

	got, err := r.EvalString(context.Background(), "config.lua", `
		return {
			dir_path = "img",
			max_base64_size = 20,
			ratio = 0.5,
			debug = true,
			list = { "a", "b" },
			drag_and_drop = { enabled = false },
		}
	`)
	if err != nil {
		t.Fatalf("EvalString() error = %v", err)
	}

	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("result = %T, want map", got)
	}
	if m["dir_path"] != "img" || m["max_base64_size"] != int64(20) || m["ratio"] != 0.5 || m["debug"] != true {
		t.Errorf("scalars = %v", m)
	}
	if list, ok := m["list"].([]any); !ok || len(list) != 2 || list[1] != "b" {
		t.Errorf("list = %#v", m["list"])
	}
	if dnd, ok := m["drag_and_drop"].(map[string]any); !ok || dnd["enabled"] != false {
		t.Errorf("drag_and_drop = %#v", m["drag_and_drop"])
	}
}

func TestEvalString_Errors(t *testing.T) {
	r := New()
	defer r.Close()

	if _, err := r.EvalString(context.Background(), "bad.lua", "return {"); err == nil {
		t.Error("syntax error should fail")
	}
	if _, err := r.EvalString(context.Background(), "boom.lua", `error("boom")`); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("runtime error = %v", err)
	}
	got, err := r.EvalString(context.Background(), "empty.lua", "local x = 1")
	if err != nil || got != nil {
		t.Errorf("chunk without return = %v, %v", got, err)
	}
}

func TestFunctionsBecomeComputed(t *testing.T) {
	r := New()
	defer r.Close()

	got, err := r.EvalString(context.Background(), "config.lua", `
		local n = 0
		return {
			counter = function() n = n + 1; return "computed-" .. n end,
			from_args = function(args) return args.name end,
		}
	`)
	if err != nil {
		t.Fatalf("EvalString() error = %v", err)
	}
	m := got.(map[string]any)

	counter, ok := m["counter"].(value.Computed)
	if !ok {
		t.Fatalf("counter = %T, want value.Computed", m["counter"])
	}
	if first, second := counter(value.Context{}), counter(value.Context{}); first == second {
		t.Errorf("counter returned %v twice", first)
	}

	fromArgs := m["from_args"].(value.Computed)
	if got := fromArgs(value.Context{Args: value.Args{"name": "shot"}}); got != "shot" {
		t.Errorf("from_args = %v, want shot", got)
	}
	if got := fromArgs(value.Context{}); got != nil {
		t.Errorf("from_args without args = %v, want nil", got)
	}
}

func TestHostModule(t *testing.T) {
	r := New()
	defer r.Close()

	got, err := r.EvalString(context.Background(), "config.lua", `
		local imgclip = require("imgclip")
		return function()
			return imgclip.filetype() .. ":" .. imgclip.file_name() .. ":" .. imgclip.dir_name()
		end
	`)
	if err != nil {
		t.Fatalf("EvalString() error = %v", err)
	}
	fn := got.(value.Computed)

	h := host.Static{Path: "/home/u/notes/todo.md"}
	if v := fn(value.Context{Host: h}); v != "markdown:todo.md:notes" {
		t.Errorf("host accessors = %v", v)
	}
	if v := fn(value.Context{}); v != "::" {
		t.Errorf("nop host = %q, want empty accessors", v)
	}
}

func TestSandbox(t *testing.T) {
	r := New()
	defer r.Close()

	for _, code := range []string{
		`return require("os")`,
		`return require("io")`,
		`return dofile("/etc/passwd")`,
		`return load("return 1")`,
		`return io.open("/etc/passwd")`,
		`return os.getenv("HOME")`,
	} {
		if _, err := r.EvalString(context.Background(), "sandbox.lua", code); err == nil {
			t.Errorf("%s should fail in the sandbox", code)
		}
	}

	if _, err := r.EvalString(context.Background(), "ok.lua", `return require("string").upper("x")`); err != nil {
		t.Errorf("require(string) error = %v", err)
	}
}

func TestComputedErrorIsNil(t *testing.T) {
	r := New()
	defer r.Close()

	got, err := r.EvalString(context.Background(), "config.lua", `return function() error("nope") end`)
	if err != nil {
		t.Fatalf("EvalString() error = %v", err)
	}
	if v := got.(value.Computed)(value.Context{}); v != nil {
		t.Errorf("failing function = %v, want nil", v)
	}
}

func TestTimeout(t *testing.T) {
	r := New(WithTimeout(50 * time.Millisecond))
	defer r.Close()

	_, err := r.EvalString(context.Background(), "loop.lua", `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("error = %v, want ErrExecutionTimeout", err)
	}

	// The state stays usable.
	if got, err := r.EvalString(context.Background(), "after.lua", `return 1`); err != nil || got != int64(1) {
		t.Errorf("after timeout = %v, %v", got, err)
	}
}

func TestCall_NotFunction(t *testing.T) {
	r := New()
	defer r.Close()

	if _, err := r.Call(context.Background(), nil, value.Context{}); !errors.Is(err, ErrNotFunction) {
		t.Errorf("error = %v, want ErrNotFunction", err)
	}
}

func TestClose(t *testing.T) {
	r := New()
	got, err := r.EvalString(context.Background(), "config.lua", `return function() return 1 end`)
	if err != nil {
		t.Fatalf("EvalString() error = %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := r.EvalString(context.Background(), "x.lua", "return 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("EvalString after Close = %v, want ErrStateClosed", err)
	}
	if v := got.(value.Computed)(value.Context{}); v != nil {
		t.Errorf("computed after Close = %v, want nil", v)
	}
}

func TestToGo_CyclesAndKeys(t *testing.T) {
	r := New()
	defer r.Close()

	got, err := r.EvalString(context.Background(), "cycle.lua", `
		local t = { name = "root" }
		t.self = t
		return { t, [10] = "sparse" }
	`)
	if err != nil {
		t.Fatalf("EvalString() error = %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("sparse table = %T, want map", got)
	}
	if m["10"] != "sparse" {
		t.Errorf("numeric key = %#v", m)
	}
	inner := m["1"].(map[string]any)
	if inner["self"] != nil {
		t.Errorf("cycle = %#v, want nil", inner["self"])
	}
}
