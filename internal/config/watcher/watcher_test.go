package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestOperationString(t *testing.T) {
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
			t.Errorf("Operation(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestOpFromFSNotify(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Operation
		ok   bool
	}{
		{fsnotify.Write, OpWrite, true},
		{fsnotify.Create | fsnotify.Write, OpCreate, true},
		{fsnotify.Remove, OpRemove, true},
		{fsnotify.Rename, OpRename, true},
		{fsnotify.Chmod, 0, false},
	}
	for _, tt := range tests {
		got, ok := opFromFSNotify(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("opFromFSNotify(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestQueueEventCoalescing(t *testing.T) {
	w := &Watcher{pendingFiles: make(map[string]pendingEvent), debounce: time.Second}
	base := time.Unix(1000, 0)

	w.queueEvent(Event{Path: "/a", Op: OpCreate, Time: base})
	w.queueEvent(Event{Path: "/a", Op: OpWrite, Time: base.Add(time.Millisecond)})
	if got := w.pendingFiles["/a"]; got.Op != OpCreate || !got.Time.Equal(base.Add(time.Millisecond)) {
		t.Errorf("create + write = %+v, want create at latest time", got)
	}

	w.queueEvent(Event{Path: "/a", Op: OpRemove, Time: base.Add(2 * time.Millisecond)})
	if got := w.pendingFiles["/a"]; got.Op != OpRemove {
		t.Errorf("any + remove = %v, want remove", got.Op)
	}

	var emitted []Event
	w.handlers = []Handler{func(e Event) { emitted = append(emitted, e) }}

	// Not yet stable.
	w.processPendingEvents(base.Add(500 * time.Millisecond))
	if len(emitted) != 0 {
		t.Fatalf("emitted %d events before debounce elapsed", len(emitted))
	}

	w.processPendingEvents(base.Add(2 * time.Second))
	if len(emitted) != 1 || emitted[0].Op != OpRemove {
		t.Errorf("emitted = %v, want one remove", emitted)
	}
	if len(w.pendingFiles) != 0 {
		t.Error("pending events should be drained")
	}
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	w := &Watcher{}
	var called bool
	w.handlers = []Handler{
		func(Event) { panic("boom") },
		func(Event) { called = true },
	}
	w.emitEvent(Event{Path: "/a"})
	if !called {
		t.Error("handlers after a panicking one should still run")
	}
}

func TestWatchFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.toml")
	other := filepath.Join(dir, "other.toml")

	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Stop()

	var mu sync.Mutex
	var events []Event
	w.OnChange(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if got := w.WatchedFiles(); len(got) != 1 {
		t.Errorf("WatchedFiles() = %v", got)
	}

	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[editor]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(events)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1: %v", len(events), events)
	}
	if events[0].Path != path {
		t.Errorf("event path = %q, want %q", events[0].Path, path)
	}
}

func TestStop(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if !w.IsRunning() {
		t.Error("new watcher should be running")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if w.IsRunning() {
		t.Error("watcher should stop")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop failed: %v", err)
	}
	if err := w.Watch(filepath.Join(t.TempDir(), "x")); err != ErrNotRunning {
		t.Errorf("Watch after Stop = %v, want ErrNotRunning", err)
	}
}
