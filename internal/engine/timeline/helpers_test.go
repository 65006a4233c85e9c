package timeline

import (
	"math"
	"testing"

	"github.com/dshills/tempomap/internal/engine/notify"
	"github.com/dshills/tempomap/internal/engine/point"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

// recorder collects published events.
type recorder struct {
	events []notify.Event
}

func (r *recorder) observe(ev notify.Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) count(kind notify.Kind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.events = nil
}

// newTestTimeline creates a timeline with a recorder subscribed to it.
func newTestTimeline(opts ...Option) (*Timeline, *recorder) {
	tl := New(opts...)
	rec := &recorder{}
	tl.Notifier().Subscribe(rec.observe)
	return tl, rec
}

// mustAdd adds anchored points given as (position, time) pairs.
func mustAdd(t *testing.T, tl *Timeline, pairs ...[2]float64) {
	t.Helper()
	for _, p := range pairs {
		if _, ok := tl.AddAnchoredPoint(p[0], p[1]); !ok {
			t.Fatalf("AddAnchoredPoint(%v, %v) rejected", p[0], p[1])
		}
	}
}

// assertMonotonic checks the ordering invariant.
func assertMonotonic(t *testing.T, tl *Timeline) {
	t.Helper()
	if err := tl.Verify(); err != nil {
		t.Fatalf("invariants broken: %v", err)
	}
}

var threeFour = point.NewTimeSignature(3, 4)
