// Package watcher reports changes to preference files for live reload.
//
// Files are watched through their parent directory, so editors that save
// by writing a new file and renaming it over the old one are still seen.
// Rapid bursts of events for the same file are debounced into one.
package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNotRunning is returned by Watch after Stop.
var ErrNotRunning = errors.New("watcher is not running")

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the event occurred.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// opFromFSNotify maps an fsnotify operation set to the most significant
// Operation. ok is false for chmod-only events.
func opFromFSNotify(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// ErrorHandler is called when the underlying watcher reports an error.
type ErrorHandler func(err error)

// Watcher monitors files for changes.
type Watcher struct {
	mu sync.RWMutex

	fsw *fsnotify.Watcher

	// Watched files and the number of files per watched directory
	files map[string]bool
	dirs  map[string]int

	// Handlers to call on file changes
	handlers []Handler
	onError  ErrorHandler

	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc

	// Wait group for shutdown
	wg sync.WaitGroup

	// Running state
	running bool

	// Debounce settings
	debounce     time.Duration
	pendingMu    sync.Mutex
	pendingFiles map[string]pendingEvent
}

// pendingEvent stores a pending event with its operation for debouncing.
type pendingEvent struct {
	Op   Operation
	Time time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
// Zero delivers every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets the callback for errors from the file system
// notifier.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Watcher) {
		w.onError = h
	}
}

// New creates a new file watcher and starts its event loop.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:          fsw,
		files:        make(map[string]bool),
		dirs:         make(map[string]int),
		debounce:     100 * time.Millisecond,
		pendingFiles: make(map[string]pendingEvent),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.running = true

	w.wg.Add(1)
	go w.eventLoop()

	if w.debounce > 0 {
		w.wg.Add(1)
		go w.debounceLoop()
	}

	return w, nil
}

// Watch adds a file to the watch list. The file need not exist yet, but
// its directory must.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return ErrNotRunning
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[absPath] {
		return nil
	}
	delete(w.files, absPath)

	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		if w.running {
			return w.fsw.Remove(dir)
		}
	}
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Stop stops watching files and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// eventLoop forwards fsnotify events for watched files.
func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.mu.RLock()
			onError := w.onError
			w.mu.RUnlock()
			if onError != nil {
				onError(err)
			}
		}
	}
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	op, ok := opFromFSNotify(ev.Op)
	if !ok {
		return
	}

	path, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.RLock()
	watched := w.files[path]
	w.mu.RUnlock()
	if !watched {
		return
	}

	event := Event{Path: path, Op: op, Time: time.Now()}
	if w.debounce > 0 {
		w.queueEvent(event)
	} else {
		w.emitEvent(event)
	}
}

// queueEvent queues an event for debounced delivery.
// It coalesces events:
// - create + write => create
// - write + write => write (latest time)
// - any + remove => remove
func (w *Watcher) queueEvent(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	existing, exists := w.pendingFiles[event.Path]
	if !exists {
		w.pendingFiles[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
		return
	}

	switch event.Op {
	case OpRemove, OpCreate:
		w.pendingFiles[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
	case OpWrite:
		// Write doesn't override create or remove
		w.pendingFiles[event.Path] = pendingEvent{Op: existing.Op, Time: event.Time}
	default:
		w.pendingFiles[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
	}
}

// debounceLoop processes debounced events.
func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case now := <-ticker.C:
			w.processPendingEvents(now)
		}
	}
}

// processPendingEvents emits events that have been stable for the
// debounce duration as of now.
func (w *Watcher) processPendingEvents(now time.Time) {
	w.pendingMu.Lock()
	stableThreshold := now.Add(-w.debounce)

	var toEmit []Event
	for path, pending := range w.pendingFiles {
		if pending.Time.Before(stableThreshold) {
			toEmit = append(toEmit, Event{
				Path: path,
				Op:   pending.Op,
				Time: pending.Time,
			})
			delete(w.pendingFiles, path)
		}
	}
	w.pendingMu.Unlock()

	for _, event := range toEmit {
		w.emitEvent(event)
	}
}

// emitEvent calls all handlers with the event.
func (w *Watcher) emitEvent(event Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, handler := range handlers {
		w.safeCallHandler(handler, event)
	}
}

// safeCallHandler calls a handler with panic recovery so that a faulty
// handler cannot stop the watcher goroutine.
func (w *Watcher) safeCallHandler(handler Handler, event Event) {
	defer func() {
		_ = recover()
	}()
	handler(event)
}
