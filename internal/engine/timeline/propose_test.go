package timeline

import (
	"math"
	"testing"

	"github.com/dshills/tempomap/internal/engine/notify"
	"github.com/dshills/tempomap/internal/engine/point"
)

func TestProposeOffset_Cascade(t *testing.T) {
	tl, rec := newTestTimeline()
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{2, 2})
	rec.reset()

	if !tl.ProposeOffset(1, 4) {
		t.Fatal("ProposeOffset(1, 4) rejected")
	}

	a, _ := tl.Point(0)
	if !approx(a.MPS, 0.5) {
		t.Errorf("A.MPS = %v, want 0.5", a.MPS)
	}
	if got := tl.TimeToPosition(4); !approx(got, 2) {
		t.Errorf("TimeToPosition(4) = %v, want 2", got)
	}
	if got := rec.count(notify.TimingChanged); got != 1 {
		t.Errorf("TimingChanged count = %d, want 1", got)
	}
}

func TestProposeOffset_Rejected(t *testing.T) {
	tl, rec := newTestTimeline()
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{1, 2}, [2]float64{2, 3})
	before := tl.Snapshot()
	rec.reset()

	tests := []struct {
		name   string
		index  int
		offset float64
	}{
		{"collides with next", 1, 3},
		{"crosses previous", 1, -1},
		{"not finite", 1, math.Inf(1)},
		{"out of range", 3, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tl.ProposeOffset(tt.index, tt.offset) {
				t.Errorf("ProposeOffset(%d, %v) accepted", tt.index, tt.offset)
			}
		})
	}

	if !tl.Snapshot().Equal(before) {
		t.Error("rejected offsets changed the timeline")
	}
	if len(rec.events) != 0 {
		t.Errorf("offset rejections should be silent, got %v", rec.events)
	}
}

func TestProposePosition_Rejected(t *testing.T) {
	tl, rec := newTestTimeline()
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{1, 2}, [2]float64{2, 3})
	before := tl.Snapshot()
	rec.reset()

	if tl.ProposePosition(1, 2.5) {
		t.Fatal("ProposePosition(1, 2.5) accepted")
	}

	if !tl.Snapshot().Equal(before) {
		t.Error("rejected position changed the timeline")
	}
	if len(rec.events) != 1 {
		t.Fatalf("expected exactly one event, got %v", rec.events)
	}
	ev := rec.events[0]
	if ev.Kind != notify.PositionChangeRejected || ev.Index != 1 || ev.Blocking != 2 {
		t.Errorf("event = %+v, want rejection of 1 blocked by 2", ev)
	}

	rec.reset()
	tl.ProposePosition(1, -0.5)
	if len(rec.events) != 1 || rec.events[0].Blocking != 0 {
		t.Errorf("expected rejection blocked by 0, got %v", rec.events)
	}
}

func TestProposePosition_Accepted(t *testing.T) {
	tl := New()
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{1, 2}, [2]float64{2, 3})

	if !tl.ProposePosition(1, 1.5) {
		t.Fatal("ProposePosition(1, 1.5) rejected")
	}
	a, _ := tl.Point(0)
	b, _ := tl.Point(1)
	if !approx(a.MPS, 0.75) || !approx(b.MPS, 0.5) {
		t.Errorf("MPS = %v, %v; want 0.75, 0.5", a.MPS, b.MPS)
	}
}

func TestProposePosition_RetagsSignature(t *testing.T) {
	tl := New()
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{1, 2}, [2]float64{5, 6})
	if err := tl.PutSegment(Segment{Measure: 3, TimeSignature: threeFour}); err != nil {
		t.Fatal(err)
	}

	if !tl.ProposePosition(1, 3.5) {
		t.Fatal("ProposePosition(1, 3.5) rejected")
	}
	b, _ := tl.Point(1)
	if b.TimeSignature != threeFour {
		t.Errorf("TimeSignature = %v, want 3/4", b.TimeSignature)
	}
}

func TestProposeMPS_LastPointIsFree(t *testing.T) {
	tl := New()
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{1, 2})

	if !tl.ProposeMPS(1, 2) {
		t.Fatal("ProposeMPS on last point rejected")
	}
	b, _ := tl.Point(1)
	if b.MPS != 2 || !b.TempoPinned {
		t.Errorf("last point = %v, want pinned MPS 2", b)
	}
	if got := tl.TimeToPosition(3); !approx(got, 3) {
		t.Errorf("TimeToPosition(3) = %v, want 3", got)
	}

	// A point added after it takes over as the free end.
	mustAdd(t, tl, [2]float64{2, 4})
	b, _ = tl.Point(1)
	if b.TempoPinned || !approx(b.MPS, 0.5) {
		t.Errorf("former last point = %v, want unpinned slope 0.5", b)
	}
}

func TestProposeMPS_Invalid(t *testing.T) {
	tl := New()
	mustAdd(t, tl, [2]float64{0, 0})

	for _, mps := range []float64{0, -1, math.NaN()} {
		if tl.ProposeMPS(0, mps) {
			t.Errorf("ProposeMPS(0, %v) accepted", mps)
		}
	}
}

func TestProposeBPM_DerivedTempo(t *testing.T) {
	tests := []struct {
		name  string
		prefs StaticPreferences
		bpm   float64
		ok    bool
	}{
		{"implied value", StaticPreferences{}, 120, true},
		{"within tolerance", StaticPreferences{}, 120.00005, true},
		{"outside tolerance", StaticPreferences{}, 120.05, false},
		{"rounded display", StaticPreferences{RoundBPMDisplay: true}, 120.05, true},
		{"outside rounded", StaticPreferences{RoundBPMDisplay: true}, 121, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, rec := newTestTimeline(WithPreferences(tt.prefs))
			mustAdd(t, tl, [2]float64{0, 0}, [2]float64{1, 2})
			before := tl.Snapshot()
			rec.reset()

			if got := tl.ProposeBPM(0, tt.bpm); got != tt.ok {
				t.Fatalf("ProposeBPM(0, %v) = %v, want %v", tt.bpm, got, tt.ok)
			}
			if !tt.ok {
				if !tl.Snapshot().Equal(before) {
					t.Error("rejected tempo changed the timeline")
				}
				if len(rec.events) != 0 {
					t.Error("tempo rejection should be silent")
				}
			}
		})
	}
}

func TestProposeBPM_UsesPointSignature(t *testing.T) {
	tl := New()
	mustAdd(t, tl, [2]float64{0, 0})
	if !tl.ProposeTimeSignature(0, point.NewTimeSignature(6, 8)) {
		t.Fatal("ProposeTimeSignature rejected")
	}

	if !tl.ProposeBPM(0, 180) {
		t.Fatal("ProposeBPM rejected")
	}
	p, _ := tl.Point(0)
	// 180 BPM in 6/8 is 180 / (60 * 6 * 4 / 8) measures per second.
	if !approx(p.MPS, 1) {
		t.Errorf("MPS = %v, want 1", p.MPS)
	}
}

func TestProposeTimeSignature(t *testing.T) {
	tl := New()
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{1, 2})

	if tl.ProposeTimeSignature(1, point.NewTimeSignature(3, 5)) {
		t.Error("invalid signature accepted")
	}
	if !tl.ProposeTimeSignature(1, threeFour) {
		t.Error("valid signature rejected")
	}
	b, _ := tl.Point(1)
	if b.TimeSignature != threeFour {
		t.Errorf("TimeSignature = %v, want 3/4", b.TimeSignature)
	}
}

func TestProposeTimeSignature_PreserveBPM(t *testing.T) {
	tl := New(WithPreferences(StaticPreferences{PreserveBPM: true}))
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{1, 2})
	tl.ProposeMPS(1, 0.5)

	if !tl.ProposeTimeSignature(1, threeFour) {
		t.Fatal("ProposeTimeSignature rejected")
	}
	b, _ := tl.Point(1)
	if got := b.BPM(); !approx(got, 120) {
		t.Errorf("BPM = %v, want 120", got)
	}
}

func TestPropertyString(t *testing.T) {
	tests := []struct {
		prop Property
		want string
	}{
		{PropertyOffset, "offset"},
		{PropertyPosition, "position"},
		{PropertyMPS, "mps"},
		{PropertyBPM, "bpm"},
		{PropertyTimeSignature, "time-signature"},
		{Property(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.prop.String(); got != tt.want {
			t.Errorf("Property(%d).String() = %q, want %q", tt.prop, got, tt.want)
		}
	}
}

// liveTolerances reads its thresholds through a pointer so tests can
// change them between calls.
type liveTolerances struct {
	StaticPreferences
	tol *Tolerances
}

func (p liveTolerances) Tolerances() Tolerances { return *p.tol }

func TestProposeBPM_TolerancesFromPreferences(t *testing.T) {
	tol := DefaultTolerances()
	tl := New(
		WithPreferences(liveTolerances{StaticPreferences: DefaultPreferences(), tol: &tol}),
		WithTolerances(Tolerances{BPM: 5}),
	)
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{1, 2})

	if tl.ProposeBPM(0, 120.05) {
		t.Error("ProposeBPM accepted a tempo outside the preferred tolerance")
	}

	tol.BPM = 0.1
	if !tl.ProposeBPM(0, 120.05) {
		t.Error("ProposeBPM rejected a tempo within the updated tolerance")
	}
	if got := tl.Tolerances().BPM; got != 0.1 {
		t.Errorf("Tolerances().BPM = %v, want 0.1", got)
	}
}
