package history

import (
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/engine/notify"
	"github.com/dshills/tempomap/internal/engine/timeline"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is the snapshot limit used when none is given.
const DefaultMaxEntries = 1000

// Snapshot is an immutable copy of the timeline state and the target of
// the edit that produced it.
type Snapshot struct {
	State  timeline.State
	Target uuid.UUID
}

// History manages undo/redo snapshots for a timeline.
//
// History is not safe for concurrent use; it runs on the timeline's
// goroutine.
type History struct {
	tl  *timeline.Timeline
	log logrus.FieldLogger

	entries []Snapshot
	cursor  int

	// lastTarget is the target of the most recent recorded edit. It is
	// reset by undo, redo and clear so that coalescing never rewrites a
	// snapshot that was reached by moving the cursor.
	lastTarget uuid.UUID

	// restoring suppresses recording while a snapshot is applied.
	restoring bool

	// Grouping state
	grouping    int
	groupTarget uuid.UUID
	groupDirty  bool

	sub *notify.Subscription

	// Configuration
	maxEntries int
	limit      func() int
}

// Option configures a History.
type Option func(*History)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(h *History) {
		if log != nil {
			h.log = log
		}
	}
}

// WithLimit makes the snapshot limit follow limit, which is read before
// every record. Non-positive results keep the current limit.
func WithLimit(limit func() int) Option {
	return func(h *History) {
		h.limit = limit
	}
}

// New creates a history for tl whose first snapshot is the current state.
// A non-positive maxEntries selects DefaultMaxEntries.
func New(tl *timeline.Timeline, maxEntries int, opts ...Option) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	h := &History{
		tl:         tl,
		log:        discard,
		maxEntries: maxEntries,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.entries = []Snapshot{{State: tl.Snapshot()}}
	return h
}

// Attach subscribes the history to the timeline's notifier so that every
// finalized change is recorded. It is a no-op if already attached.
func (h *History) Attach() {
	if h.sub != nil {
		return
	}
	h.sub = h.tl.Notifier().Subscribe(func(ev notify.Event) {
		switch ev.Kind {
		case notify.TimingChanged, notify.PointCountChanged:
			h.Record(ev.Target)
		}
	})
}

// Detach stops recording notifications.
func (h *History) Detach() {
	if h.sub == nil {
		return
	}
	h.sub.Unsubscribe()
	h.sub = nil
}

// Record pushes the current timeline state, tagged with target.
//
// Any redo history is discarded. If target is non-nil and equals the
// target of the previous record, the top snapshot is overwritten instead.
// Nothing is recorded while a snapshot is being restored or when the state
// equals the current snapshot.
func (h *History) Record(target uuid.UUID) {
	if h.restoring {
		return
	}
	if h.grouping > 0 {
		h.groupDirty = true
		if h.groupTarget == uuid.Nil {
			h.groupTarget = target
		}
		return
	}
	h.record(target)
}

func (h *History) record(target uuid.UUID) {
	state := h.tl.Snapshot()
	if state.Equal(h.entries[h.cursor].State) {
		return
	}

	h.refreshLimit()

	// Truncate redo history
	h.entries = h.entries[:h.cursor+1]

	if target != uuid.Nil && target == h.lastTarget && h.cursor > 0 {
		h.entries[h.cursor] = Snapshot{State: state, Target: target}
		return
	}

	h.entries = append(h.entries, Snapshot{State: state, Target: target})
	h.cursor++
	h.lastTarget = target

	// Enforce max entries
	if excess := len(h.entries) - h.maxEntries; excess > 0 {
		h.entries = h.entries[excess:]
		h.cursor -= excess
	}
}

// Undo restores the snapshot before the current one.
func (h *History) Undo() error {
	if h.cursor == 0 {
		return ErrNothingToUndo
	}
	if err := h.restore(h.cursor - 1); err != nil {
		return err
	}
	h.log.WithField("remaining", h.cursor).Debug("undo")
	return nil
}

// Redo restores the snapshot after the current one.
func (h *History) Redo() error {
	if h.cursor >= len(h.entries)-1 {
		return ErrNothingToRedo
	}
	if err := h.restore(h.cursor + 1); err != nil {
		return err
	}
	h.log.WithField("remaining", len(h.entries)-1-h.cursor).Debug("redo")
	return nil
}

// restore applies entry i to the timeline and moves the cursor to it.
func (h *History) restore(i int) error {
	h.restoring = true
	defer func() { h.restoring = false }()

	if err := h.tl.Restore(h.entries[i].State); err != nil {
		h.log.WithError(err).Error("history snapshot rejected")
		return err
	}
	h.cursor = i
	h.lastTarget = uuid.Nil
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	return h.cursor
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	return len(h.entries) - 1 - h.cursor
}

// Current returns the snapshot at the cursor.
func (h *History) Current() Snapshot {
	s := h.entries[h.cursor]
	return Snapshot{State: s.State.Clone(), Target: s.Target}
}

// MaxEntries returns the snapshot limit.
func (h *History) MaxEntries() int {
	h.refreshLimit()
	return h.maxEntries
}

func (h *History) refreshLimit() {
	if h.limit == nil {
		return
	}
	if n := h.limit(); n > 0 && n != h.maxEntries {
		h.SetMaxEntries(n)
	}
}

// SetMaxEntries changes the snapshot limit, dropping the oldest snapshots
// if the history is already longer. Non-positive values are ignored.
func (h *History) SetMaxEntries(n int) {
	if n <= 0 {
		return
	}
	h.maxEntries = n
	if excess := len(h.entries) - n; excess > 0 {
		drop := excess
		if drop > h.cursor {
			drop = h.cursor
		}
		h.entries = h.entries[drop:]
		h.cursor -= drop
		if len(h.entries) > n {
			h.entries = h.entries[:n]
		}
	}
}

// Clear discards all history. The current timeline state becomes the only
// snapshot.
func (h *History) Clear() {
	h.entries = []Snapshot{{State: h.tl.Snapshot()}}
	h.cursor = 0
	h.lastTarget = uuid.Nil
}
