// Package selection maintains a contiguous range of timing points and
// applies range-scoped edits through the timeline.
package selection

import (
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/engine/notify"
	"github.com/dshills/tempomap/internal/engine/point"
	"github.com/dshills/tempomap/internal/engine/timeline"
)

// State is the selection state.
type State int

const (
	// Empty means nothing is selected.
	Empty State = iota
	// Selecting means a selector band is being dragged.
	Selecting
	// Selected means a range is frozen.
	Selected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Selecting:
		return "selecting"
	case Selected:
		return "selected"
	default:
		return "unknown"
	}
}

// Band is the selector band in music positions.
// Anchor is where the drag started; Head is the current pointer position.
// Band is an immutable value type.
type Band struct {
	Anchor float64
	Head   float64
}

// Lo returns the lower bound of the band.
func (b Band) Lo() float64 {
	return math.Min(b.Anchor, b.Head)
}

// Hi returns the upper bound of the band.
func (b Band) Hi() float64 {
	return math.Max(b.Anchor, b.Head)
}

// Manager tracks a contiguous selection over a timeline's points.
//
// The range is held by the IDs of its end points, so it follows them
// across inserts, deletes and undo. If either end point disappears the
// selection is cleared.
type Manager struct {
	tl  *timeline.Timeline
	log logrus.FieldLogger

	state State
	band  Band

	// first and last identify the end points; both are uuid.Nil when no
	// point lies in the band.
	first uuid.UUID
	last  uuid.UUID

	// target identifies the current range object for history coalescing.
	target uuid.UUID

	sub *notify.Subscription
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// New creates an empty selection over tl.
// Call Close to stop tracking point changes.
func New(tl *timeline.Timeline, opts ...Option) *Manager {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	m := &Manager{
		tl:  tl,
		log: discard,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sub = tl.Notifier().SubscribeKind(notify.PointCountChanged, func(notify.Event) {
		m.revalidate()
	})
	return m
}

// Close stops tracking the timeline.
func (m *Manager) Close() {
	if m.sub != nil {
		m.sub.Unsubscribe()
		m.sub = nil
	}
}

// State returns the selection state.
func (m *Manager) State() State {
	return m.state
}

// Band returns the selector band.
func (m *Manager) Band() Band {
	return m.band
}

// Target returns the identity of the current range object. Edits made
// through the manager carry it so a history coalesces them.
func (m *Manager) Target() uuid.UUID {
	return m.target
}

// Range returns the first and last selected indices. ok is false if the
// selection holds no points.
func (m *Manager) Range() (first, last int, ok bool) {
	if m.state == Empty || m.first == uuid.Nil {
		return -1, -1, false
	}
	first = m.tl.IndexOf(m.first)
	last = m.tl.IndexOf(m.last)
	if first < 0 || last < 0 || first > last {
		return -1, -1, false
	}
	return first, last, true
}

// Contains returns true if index i is selected.
func (m *Manager) Contains(i int) bool {
	first, last, ok := m.Range()
	return ok && i >= first && i <= last
}

// Len returns the number of selected points.
func (m *Manager) Len() int {
	first, last, ok := m.Range()
	if !ok {
		return 0
	}
	return last - first + 1
}

// ============================================================================
// Transitions
// ============================================================================

// Begin starts dragging a selector band at pos.
//
// Clicking inside an existing selection keeps it and moves the anchor to
// whichever end is farther from pos, so the drag grows or shrinks the
// selection from there. Otherwise a new range is started.
func (m *Manager) Begin(pos float64) {
	if lo, hi, ok := m.positions(); ok && m.state != Empty && pos >= lo && pos <= hi {
		anchor := lo
		if pos-lo < hi-pos {
			anchor = hi
		}
		m.band = Band{Anchor: anchor, Head: pos}
		m.state = Selecting
		m.resolve()
		return
	}

	m.band = Band{Anchor: pos, Head: pos}
	m.target = uuid.New()
	m.state = Selecting
	m.resolve()
}

// Update moves the head of the band to pos and recomputes the range. It
// has no effect unless a band is being dragged.
func (m *Manager) Update(pos float64) {
	if m.state != Selecting {
		return
	}
	m.band.Head = pos
	m.resolve()
}

// Commit freezes the range. A band that covers no point clears the
// selection.
func (m *Manager) Commit() {
	if m.state != Selecting {
		return
	}
	if m.first == uuid.Nil {
		m.Clear()
		return
	}
	m.state = Selected
	m.announce()
}

// Clear empties the selection.
func (m *Manager) Clear() {
	if m.state == Empty {
		return
	}
	m.state = Empty
	m.band = Band{}
	m.first, m.last = uuid.Nil, uuid.Nil
	m.announce()
}

// SelectPoint selects the single point at index i. Selecting the point
// that is already the whole selection clears it instead.
func (m *Manager) SelectPoint(i int) bool {
	p, ok := m.tl.Point(i)
	if !ok {
		return false
	}

	if m.state == Selected && m.first == p.ID && m.last == p.ID {
		m.Clear()
		return true
	}

	m.band = Band{Anchor: p.Pos(), Head: p.Pos()}
	m.first, m.last = p.ID, p.ID
	m.target = uuid.New()
	m.state = Selected
	m.announce()
	return true
}

// SelectRange selects the points from first to last inclusive.
func (m *Manager) SelectRange(first, last int) bool {
	if first > last {
		first, last = last, first
	}
	a, ok := m.tl.Point(first)
	if !ok {
		return false
	}
	b, ok := m.tl.Point(last)
	if !ok {
		return false
	}

	m.band = Band{Anchor: a.Pos(), Head: b.Pos()}
	m.first, m.last = a.ID, b.ID
	m.target = uuid.New()
	m.state = Selected
	m.announce()
	return true
}

// resolve recomputes the end points covered by the band.
func (m *Manager) resolve() {
	first, last, ok := m.tl.IndicesBetween(m.band.Lo(), m.band.Hi())
	if !ok {
		m.first, m.last = uuid.Nil, uuid.Nil
		return
	}
	a, _ := m.tl.Point(first)
	b, _ := m.tl.Point(last)
	m.first, m.last = a.ID, b.ID
}

// positions returns the music positions of the selected end points.
func (m *Manager) positions() (lo, hi float64, ok bool) {
	first, last, ok := m.Range()
	if !ok {
		return 0, 0, false
	}
	a, _ := m.tl.Point(first)
	b, _ := m.tl.Point(last)
	return a.Pos(), b.Pos(), true
}

// revalidate clears the selection if an end point no longer exists.
func (m *Manager) revalidate() {
	if m.state == Empty || m.first == uuid.Nil {
		return
	}
	if _, _, ok := m.Range(); ok {
		return
	}
	m.log.Debug("selection end point removed, clearing selection")
	m.Clear()
}

func (m *Manager) announce() {
	first, _, _ := m.Range()
	m.tl.Notifier().Publish(notify.Event{
		Kind:     notify.SelectionChanged,
		Target:   m.target,
		Index:    first,
		Blocking: -1,
	})
}

// ============================================================================
// Range Edits
// ============================================================================

// MoveSelection shifts every selected point by the same distance so the
// first one lands on newAnchorPosition. It returns the number of points
// moved; the move stops at the first point that cannot move.
func (m *Manager) MoveSelection(newAnchorPosition float64) int {
	first, last, ok := m.Range()
	if !ok {
		return 0
	}
	anchor, _ := m.tl.Point(first)
	delta := newAnchorPosition - anchor.Pos()
	if delta == 0 {
		return 0
	}

	var applied int
	m.tl.EditAs(m.target, func() {
		applied = m.tl.BatchChangeMusicPosition(first, last, func(p point.TimingPoint) float64 {
			return p.Pos() + delta
		})
	})
	m.log.WithFields(logrus.Fields{
		"delta":   delta,
		"applied": applied,
	}).Debug("selection moved")
	return applied
}

// OffsetSelection shifts every selected point by deltaSeconds in time.
func (m *Manager) OffsetSelection(deltaSeconds float64) int {
	first, last, ok := m.Range()
	if !ok || deltaSeconds == 0 {
		return 0
	}

	var applied int
	m.tl.EditAs(m.target, func() {
		applied = m.tl.BatchChangeOffset(first, last, func(p point.TimingPoint) float64 {
			return p.Offset + deltaSeconds
		})
	})
	return applied
}

// ScaleTempo multiplies the tempo across the selection by factor, for
// example 2 to double the BPM.
func (m *Manager) ScaleTempo(factor float64) error {
	first, last, ok := m.Range()
	if !ok {
		return ErrEmptySelection
	}

	var err error
	m.tl.EditAs(m.target, func() {
		err = m.tl.ScaleTempo(first, last, factor)
	})
	return err
}

// Delete removes the selected points. A lone selected point that is still
// being dragged into place is kept. It reports whether anything was
// removed; the selection clears once its points are gone.
func (m *Manager) Delete() (bool, error) {
	first, last, ok := m.Range()
	if !ok {
		return false, ErrEmptySelection
	}

	var removed bool
	m.tl.EditAs(m.target, func() {
		if first == last {
			removed = m.tl.DeleteSettled(first)
			return
		}
		removed = m.tl.DeleteRange(first, last+1)
	})
	return removed, nil
}
