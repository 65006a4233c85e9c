package timeline

import (
	"errors"
	"math"
	"testing"

	"github.com/dshills/tempomap/internal/engine/point"
)

func TestSetTimeSignature_ShiftsSubsequentPoints(t *testing.T) {
	tl := New(WithPreferences(StaticPreferences{MoveSubsequentPoints: true}))
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{4.5, 9})

	if err := tl.SetTimeSignature(threeFour, 4); err != nil {
		t.Fatalf("SetTimeSignature failed: %v", err)
	}

	if tl.Len() != 3 {
		t.Fatalf("expected a synthesized point at measure 4, Len() = %d", tl.Len())
	}
	synth, _ := tl.Point(1)
	if synth.Pos() != 4 || !approx(synth.Offset, 8) {
		t.Errorf("synthesized point = %v, want position 4 at 8s", synth)
	}

	b, _ := tl.Point(2)
	if !approx(b.Pos(), 4+2.0/3) {
		t.Errorf("B position = %v, want %v", b.Pos(), 4+2.0/3)
	}
	if b.TimeSignature != threeFour {
		t.Errorf("B signature = %v, want 3/4", b.TimeSignature)
	}
	if b.Offset != 9 {
		t.Errorf("B offset = %v, want 9", b.Offset)
	}
	assertMonotonic(t, tl)
}

func TestSetTimeSignature_WithoutShift(t *testing.T) {
	tl := New()
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{4.5, 9})

	if err := tl.SetTimeSignature(threeFour, 4); err != nil {
		t.Fatal(err)
	}
	b, _ := tl.Point(2)
	if b.Pos() != 4.5 || b.TimeSignature != threeFour {
		t.Errorf("B = %v, want position 4.5 in 3/4", b)
	}
	a, _ := tl.Point(0)
	if a.TimeSignature != point.Common {
		t.Errorf("A signature = %v, want 4/4", a.TimeSignature)
	}
}

func TestSetTimeSignature_StopsAtNextSegment(t *testing.T) {
	tl := New()
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{2, 4}, [2]float64{4, 8}, [2]float64{6, 12})
	sixEight := point.NewTimeSignature(6, 8)

	if err := tl.SetTimeSignature(sixEight, 4); err != nil {
		t.Fatal(err)
	}
	if err := tl.SetTimeSignature(threeFour, 2); err != nil {
		t.Fatal(err)
	}

	want := []point.TimeSignature{point.Common, threeFour, sixEight, sixEight}
	for i, ts := range want {
		p, _ := tl.Point(i)
		if p.TimeSignature != ts {
			t.Errorf("point %d signature = %v, want %v", i, p.TimeSignature, ts)
		}
	}
}

func TestSetTimeSignature_PreserveBPM(t *testing.T) {
	tl := New(WithPreferences(StaticPreferences{PreserveBPM: true}))
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{2, 4})

	if err := tl.SetTimeSignature(threeFour, 2); err != nil {
		t.Fatal(err)
	}
	b, _ := tl.Point(1)
	if got := b.BPM(); !approx(got, 120) {
		t.Errorf("last point BPM = %v, want 120", got)
	}
}

func TestSetTimeSignature_PreserveBPMKeepsTempoBeyondNextSegment(t *testing.T) {
	sixEight := point.NewTimeSignature(6, 8)
	tl := New(WithPreferences(StaticPreferences{PreserveBPM: true}))
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{2, 4}, [2]float64{8, 16}, [2]float64{10, 20})

	if err := tl.SetTimeSignature(sixEight, 8); err != nil {
		t.Fatal(err)
	}
	if !tl.ProposeBPM(tl.Last(), 200) {
		t.Fatal("ProposeBPM(last, 200) rejected")
	}

	if err := tl.SetTimeSignature(threeFour, 2); err != nil {
		t.Fatal(err)
	}

	last, _ := tl.Point(tl.Last())
	if last.TimeSignature != sixEight {
		t.Errorf("last signature = %v, want 6/8", last.TimeSignature)
	}
	if got := last.BPM(); math.Abs(got-200) > 1e-6 || !last.TempoPinned {
		t.Errorf("last point BPM = %v pinned=%v, want 200 pinned", got, last.TempoPinned)
	}
	if b, _ := tl.Point(1); b.TimeSignature != threeFour {
		t.Errorf("point at measure 2 signature = %v, want 3/4", b.TimeSignature)
	}
	assertMonotonic(t, tl)
}

func TestSetTimeSignature_MergesRedundantSegments(t *testing.T) {
	tl := New()
	mustAdd(t, tl, [2]float64{0, 0})

	if err := tl.SetTimeSignature(threeFour, 2); err != nil {
		t.Fatal(err)
	}
	if err := tl.SetTimeSignature(threeFour, 4); err != nil {
		t.Fatal(err)
	}

	segs := tl.Segments()
	if len(segs) != 1 || segs[0].Measure != 2 {
		t.Errorf("Segments() = %v, want one segment at 2", segs)
	}
}

func TestSetTimeSignature_Invalid(t *testing.T) {
	tl := New()
	err := tl.SetTimeSignature(point.NewTimeSignature(0, 4), 1)
	if !errors.Is(err, ErrInvalidTimeSignature) {
		t.Errorf("expected ErrInvalidTimeSignature, got %v", err)
	}
	if !tl.IsEmpty() {
		t.Error("invalid signature should not synthesize points")
	}
}

func TestRemoveTimeSignature(t *testing.T) {
	tl := New()
	mustAdd(t, tl, [2]float64{0, 0}, [2]float64{3, 6})
	if err := tl.SetTimeSignature(threeFour, 2); err != nil {
		t.Fatal(err)
	}

	if err := tl.RemoveTimeSignature(2); err != nil {
		t.Fatalf("RemoveTimeSignature failed: %v", err)
	}
	for _, p := range tl.Points() {
		if p.TimeSignature != point.Common {
			t.Errorf("point %v should be back in 4/4", p)
		}
	}

	if err := tl.RemoveTimeSignature(2); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("expected ErrSegmentNotFound, got %v", err)
	}
}

func TestTimeSignatureAt(t *testing.T) {
	tl := New()
	sixEight := point.NewTimeSignature(6, 8)
	for _, seg := range []Segment{{Measure: 4, TimeSignature: sixEight}, {Measure: 2, TimeSignature: threeFour}} {
		if err := tl.PutSegment(seg); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		measure int
		want    point.TimeSignature
	}{
		{-1, point.Common},
		{0, point.Common},
		{2, threeFour},
		{3, threeFour},
		{4, sixEight},
		{100, sixEight},
	}

	for _, tt := range tests {
		if got := tl.TimeSignatureAt(tt.measure); got != tt.want {
			t.Errorf("TimeSignatureAt(%d) = %v, want %v", tt.measure, got, tt.want)
		}
	}
}

func TestPutSegment_KeepsRedundant(t *testing.T) {
	tl := New()
	for _, m := range []int{0, 2} {
		if err := tl.PutSegment(Segment{Measure: m, TimeSignature: point.Common}); err != nil {
			t.Fatal(err)
		}
	}
	if len(tl.Segments()) != 2 {
		t.Errorf("PutSegment should not merge, got %v", tl.Segments())
	}
	if err := tl.PutSegment(Segment{Measure: 1, TimeSignature: point.NewTimeSignature(4, 3)}); !errors.Is(err, ErrInvalidTimeSignature) {
		t.Errorf("expected ErrInvalidTimeSignature, got %v", err)
	}
}
