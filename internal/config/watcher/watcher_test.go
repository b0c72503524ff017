package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func newWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Operation
		ok   bool
	}{
		{fsnotify.Write, OpWrite, true},
		{fsnotify.Create, OpCreate, true},
		{fsnotify.Create | fsnotify.Write, OpCreate, true},
		{fsnotify.Remove, OpRemove, true},
		{fsnotify.Rename, OpRename, true},
		{fsnotify.Chmod, 0, false},
	}

	for _, tt := range tests {
		got, ok := convertOp(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("convertOp(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestWatcher_WatchAndUnwatch(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(existing, []byte("debug = true"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, ".imgclip.yaml")

	w := newWatcher(t)

	if err := w.Watch(existing); err != nil {
		t.Fatalf("Watch(existing) error = %v", err)
	}
	if err := w.Watch(missing); err != nil {
		t.Fatalf("Watch(missing) error = %v", err)
	}
	if err := w.Watch(existing); err != nil {
		t.Errorf("second Watch() error = %v", err)
	}
	if got := w.WatchedFiles(); len(got) != 2 {
		t.Errorf("WatchedFiles() = %v, want 2 files", got)
	}
	if w.dirs[dir] != 2 {
		t.Errorf("dir refcount = %d, want 2", w.dirs[dir])
	}

	if err := w.Unwatch(existing); err != nil {
		t.Errorf("Unwatch() error = %v", err)
	}
	if err := w.Unwatch(existing); err != nil {
		t.Errorf("second Unwatch() error = %v", err)
	}
	if got := w.WatchedFiles(); len(got) != 1 {
		t.Errorf("WatchedFiles() = %v, want 1 file", got)
	}
}

func TestWatcher_WatchMissingDir(t *testing.T) {
	w := newWatcher(t)
	if err := w.Watch(filepath.Join(t.TempDir(), "nope", "config.toml")); err == nil {
		t.Error("Watch() in a missing directory should fail")
	}
}

func TestWatcher_QueueCoalesces(t *testing.T) {
	w := newWatcher(t, WithDebounce(time.Hour))
	base := time.Now()

	tests := []struct {
		name string
		ops  []Operation
		want Operation
	}{
		{"write write", []Operation{OpWrite, OpWrite}, OpWrite},
		{"create write", []Operation{OpCreate, OpWrite}, OpCreate},
		{"write remove", []Operation{OpWrite, OpRemove}, OpRemove},
		{"rename write", []Operation{OpRename, OpWrite}, OpCreate},
		{"remove create", []Operation{OpRemove, OpCreate}, OpCreate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/cfg/" + tt.name
			for i, op := range tt.ops {
				w.queueEvent(Event{Path: path, Op: op, Time: base.Add(time.Duration(i) * time.Millisecond)})
			}
			if got := w.pending[path].Op; got != tt.want {
				t.Errorf("pending op = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatcher_FlushPending(t *testing.T) {
	w := newWatcher(t, WithDebounce(50*time.Millisecond))

	var got []Event
	w.OnChange(func(e Event) { got = append(got, e) })

	now := time.Now()
	w.queueEvent(Event{Path: "/cfg/old.toml", Op: OpWrite, Time: now.Add(-time.Second)})
	w.queueEvent(Event{Path: "/cfg/new.toml", Op: OpWrite, Time: now})

	w.flushPending(now)

	if len(got) != 1 || got[0].Path != "/cfg/old.toml" {
		t.Fatalf("delivered = %v, want only the quiet file", got)
	}
	if _, ok := w.pending["/cfg/new.toml"]; !ok {
		t.Error("recent event should stay pending")
	}
}

func TestWatcher_HandlerPanicRecovered(t *testing.T) {
	w := newWatcher(t, WithDebounce(0))

	called := false
	w.OnChange(func(Event) { panic("boom") })
	w.OnChange(func(Event) { called = true })

	w.emitEvent(Event{Path: "/cfg/config.toml", Op: OpWrite})
	if !called {
		t.Error("handler after a panicking one was not called")
	}
}

func TestWatcher_DeliversFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("debug = false"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, WithDebounce(20*time.Millisecond))
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	events := make(chan Event, 16)
	w.OnChange(func(e Event) {
		select {
		case events <- e:
		default:
		}
	})
	w.Start()
	w.Start()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("debug = true"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		abs, _ := filepath.Abs(path)
		if e.Path != abs {
			t.Errorf("Path = %q, want %q", e.Path, abs)
		}
		if e.Op != OpWrite && e.Op != OpCreate {
			t.Errorf("Op = %v, want write", e.Op)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change event")
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.Start()

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
	if w.running {
		t.Error("watcher still running after Stop")
	}
	if err := w.Watch(filepath.Join(t.TempDir(), "x.toml")); err != ErrWatcherClosed {
		t.Errorf("Watch() after Stop = %v, want ErrWatcherClosed", err)
	}
}
