package timeline

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/audio"
	"github.com/dshills/tempomap/internal/engine/notify"
	"github.com/dshills/tempomap/internal/engine/point"
)

// Segment is a time signature breakpoint. The signature applies from
// Measure until the next segment.
type Segment struct {
	Measure       int
	TimeSignature point.TimeSignature
}

// Timeline owns the ordered timing points and time signature segments and
// keeps the time <-> music position mapping consistent.
//
// Timeline is not safe for concurrent use. All methods run to completion
// on the calling goroutine; observers are invoked synchronously.
type Timeline struct {
	points   []point.TimingPoint
	segments []Segment

	prefs    Preferences
	notifier *notify.Notifier
	log      logrus.FieldLogger
	tol      Tolerances
	now      func() time.Time

	// placement is the window during which a new point ignores deletes.
	placement time.Duration

	// instantiating suppresses notifications during a bulk load.
	instantiating bool

	// handleChanges is cleared by Bulk so intermediate states are written
	// without validation, cascades or notifications.
	handleChanges bool

	// batch tracks an in-progress range edit.
	batch struct {
		inProgress bool
		cancelled  bool
	}

	// editTarget overrides the history target of emitted notifications.
	editTarget uuid.UUID

	// pending coalesces notifications raised within one public call.
	pending *notify.Batch
	depth   int
}

// New creates an empty timeline with the given options.
func New(opts ...Option) *Timeline {
	t := &Timeline{
		prefs:         DefaultPreferences(),
		log:           discardLogger(),
		tol:           DefaultTolerances(),
		now:           time.Now,
		placement:     DefaultPlacementWindow,
		handleChanges: true,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.notifier == nil {
		t.notifier = notify.New()
	}
	t.pending = t.notifier.NewBatch()

	return t
}

// Notifier returns the notifier the timeline publishes to.
func (t *Timeline) Notifier() *notify.Notifier {
	return t.notifier
}

// Preferences returns the preferences in use.
func (t *Timeline) Preferences() Preferences {
	return t.prefs
}

// Tolerances returns the acceptance thresholds in use.
func (t *Timeline) Tolerances() Tolerances {
	if p, ok := t.prefs.(TolerancePreferences); ok {
		return p.Tolerances()
	}
	return t.tol
}

// ============================================================================
// Read Operations
// ============================================================================

// Len returns the number of timing points.
func (t *Timeline) Len() int {
	return len(t.points)
}

// IsEmpty returns true if the timeline has no timing points.
func (t *Timeline) IsEmpty() bool {
	return len(t.points) == 0
}

// Point returns a copy of the point at index i.
func (t *Timeline) Point(i int) (point.TimingPoint, bool) {
	if i < 0 || i >= len(t.points) {
		return point.TimingPoint{}, false
	}
	return t.points[i].Clone(), true
}

// Points returns a copy of all points in order.
func (t *Timeline) Points() []point.TimingPoint {
	result := make([]point.TimingPoint, len(t.points))
	for i, p := range t.points {
		result[i] = p.Clone()
	}
	return result
}

// IndexOf returns the index of the point with the given ID, or -1.
func (t *Timeline) IndexOf(id uuid.UUID) int {
	for i := range t.points {
		if t.points[i].ID == id {
			return i
		}
	}
	return -1
}

// Next returns the index of the point after i, or -1 if i is the last.
func (t *Timeline) Next(i int) int {
	if i < 0 || i+1 >= len(t.points) {
		return -1
	}
	return i + 1
}

// Previous returns the index of the point before i, or -1 if i is the first.
func (t *Timeline) Previous(i int) int {
	if i <= 0 || i >= len(t.points) {
		return -1
	}
	return i - 1
}

// Last returns the index of the last point, or -1 if empty.
func (t *Timeline) Last() int {
	return len(t.points) - 1
}

// IndexAtPosition returns the index of the point anchored exactly at pos,
// or -1.
func (t *Timeline) IndexAtPosition(pos float64) int {
	i := sort.Search(len(t.points), func(i int) bool {
		return t.points[i].Pos() >= pos
	})
	if i < len(t.points) && t.points[i].Pos() == pos {
		return i
	}
	return -1
}

// IndicesBetween returns the first and last index of the points whose
// position lies in [lo, hi]. ok is false when no point does.
func (t *Timeline) IndicesBetween(lo, hi float64) (first, last int, ok bool) {
	if hi < lo {
		lo, hi = hi, lo
	}
	first = sort.Search(len(t.points), func(i int) bool {
		return t.points[i].Pos() >= lo
	})
	last = sort.Search(len(t.points), func(i int) bool {
		return t.points[i].Pos() > hi
	}) - 1
	if first > last {
		return -1, -1, false
	}
	return first, last, true
}

// LastMeasure returns the measure that contains the end of the audio.
func (t *Timeline) LastMeasure(src audio.Source) int {
	return point.MeasureOf(t.TimeToPosition(src.LengthInSeconds()))
}

// ============================================================================
// Notifications
// ============================================================================

// EditAs runs fn with every notification it raises tagged with target, so
// that a history store coalesces them as edits of one object.
func (t *Timeline) EditAs(target uuid.UUID, fn func()) {
	prev := t.editTarget
	t.editTarget = target
	defer func() { t.editTarget = prev }()
	fn()
}

// target returns the history target for an edit of point id.
func (t *Timeline) target(id uuid.UUID) uuid.UUID {
	if t.editTarget != uuid.Nil {
		return t.editTarget
	}
	return id
}

// begin opens a notification scope. Notifications raised until the
// matching end are coalesced and delivered once.
func (t *Timeline) begin() {
	t.depth++
}

// end closes a notification scope and delivers pending notifications when
// the outermost scope closes.
func (t *Timeline) end() {
	t.depth--
	if t.depth == 0 {
		t.pending.Commit()
	}
}

// emit queues or publishes an event. Nothing is emitted during bulk loads
// or while change handling is suspended.
func (t *Timeline) emit(ev notify.Event) {
	if t.instantiating || !t.handleChanges {
		return
	}
	if t.depth > 0 {
		t.pending.Add(ev)
		return
	}
	t.notifier.Publish(ev)
}

func (t *Timeline) emitTimingChanged(i int) {
	ev := notify.Event{Kind: notify.TimingChanged, Index: i, Blocking: -1}
	if i >= 0 && i < len(t.points) {
		ev.Target = t.target(t.points[i].ID)
	} else {
		ev.Target = t.editTarget
	}
	t.emit(ev)
}

// emitStructural announces a change to the set of points.
// Structural changes carry only the explicit edit target, so a history
// never folds them into edits of a single point.
func (t *Timeline) emitStructural(i int) {
	t.emit(notify.Event{Kind: notify.PointCountChanged, Target: t.editTarget, Index: i, Blocking: -1})
	t.emit(notify.Event{Kind: notify.TimingChanged, Target: t.editTarget, Index: i, Blocking: -1})
}

// ============================================================================
// State
// ============================================================================

// State is a deep copy of the timeline's lists.
type State struct {
	Points   []point.TimingPoint
	Segments []Segment
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := State{
		Points:   make([]point.TimingPoint, len(s.Points)),
		Segments: make([]Segment, len(s.Segments)),
	}
	for i, p := range s.Points {
		c.Points[i] = p.Clone()
	}
	copy(c.Segments, s.Segments)
	return c
}

// Equal reports whether two states hold the same points and segments.
func (s State) Equal(o State) bool {
	if len(s.Points) != len(o.Points) || len(s.Segments) != len(o.Segments) {
		return false
	}
	for i := range s.Points {
		if !s.Points[i].Equal(o.Points[i]) {
			return false
		}
	}
	for i := range s.Segments {
		if s.Segments[i] != o.Segments[i] {
			return false
		}
	}
	return true
}

// Snapshot returns a deep copy of the current state.
func (t *Timeline) Snapshot() State {
	return State{Points: t.points, Segments: t.segments}.Clone()
}

// Restore replaces the timeline's lists with a deep copy of s.
func (t *Timeline) Restore(s State) error {
	c := s.Clone()
	if err := verifyPoints(c.Points); err != nil {
		return err
	}

	t.begin()
	defer t.end()

	t.points = c.Points
	t.segments = c.Segments
	t.emitStructural(-1)
	return nil
}

// Clear removes every point and segment.
func (t *Timeline) Clear() {
	t.begin()
	defer t.end()

	t.points = nil
	t.segments = nil
	t.emitStructural(-1)
}

// verifyPoints checks the ordering invariant and tempo positivity.
func verifyPoints(points []point.TimingPoint) error {
	for i := range points {
		p := points[i]
		if !p.Position.IsAnchored() {
			return integrityError("point %d has a pending music position", i)
		}
		if !(p.MPS > 0) {
			return integrityError("point %d has non-positive tempo %g", i, p.MPS)
		}
		if i == 0 {
			continue
		}
		prev := points[i-1]
		if prev.Offset >= p.Offset {
			return integrityError("offsets out of order at %d: %g >= %g", i, prev.Offset, p.Offset)
		}
		if prev.Pos() >= p.Pos() {
			return integrityError("positions out of order at %d: %g >= %g", i, prev.Pos(), p.Pos())
		}
	}
	return nil
}

// Verify checks the timeline's invariants and returns an integrity error
// if any is broken.
func (t *Timeline) Verify() error {
	if err := verifyPoints(t.points); err != nil {
		return err
	}
	for i := 1; i < len(t.segments); i++ {
		if t.segments[i-1].Measure >= t.segments[i].Measure {
			return integrityError("segments out of order at %d", i)
		}
	}
	return nil
}
