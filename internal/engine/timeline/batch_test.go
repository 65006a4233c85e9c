package timeline

import (
	"errors"
	"testing"

	"github.com/dshills/tempomap/internal/engine/notify"
	"github.com/dshills/tempomap/internal/engine/point"
)

func evenTimeline(t *testing.T, n int) (*Timeline, *recorder) {
	t.Helper()
	tl, rec := newTestTimeline()
	for i := 0; i < n; i++ {
		mustAdd(t, tl, [2]float64{float64(i), float64(2 * i)})
	}
	rec.reset()
	return tl, rec
}

func shiftBy(d float64) func(point.TimingPoint) float64 {
	return func(p point.TimingPoint) float64 { return p.Pos() + d }
}

func TestBatchChangeMusicPosition_IncreasingRunsHighToLow(t *testing.T) {
	tl, rec := evenTimeline(t, 3)

	// Moving 1 first would collide with 2.
	if got := tl.BatchChangeMusicPosition(1, 2, shiftBy(1)); got != 2 {
		t.Fatalf("applied = %d, want 2", got)
	}

	want := []float64{0, 2, 3}
	for i, pos := range want {
		p, _ := tl.Point(i)
		if p.Pos() != pos {
			t.Errorf("point %d position = %v, want %v", i, p.Pos(), pos)
		}
	}
	if got := rec.count(notify.TimingChanged); got != 1 {
		t.Errorf("TimingChanged count = %d, want 1", got)
	}
	assertMonotonic(t, tl)
}

func TestBatchChangeMusicPosition_DecreasingRunsLowToHigh(t *testing.T) {
	tl, _ := evenTimeline(t, 4)

	if got := tl.BatchChangeMusicPosition(1, 3, shiftBy(-0.5)); got != 3 {
		t.Fatalf("applied = %d, want 3", got)
	}
	want := []float64{0, 0.5, 1.5, 2.5}
	for i, pos := range want {
		p, _ := tl.Point(i)
		if p.Pos() != pos {
			t.Errorf("point %d position = %v, want %v", i, p.Pos(), pos)
		}
	}
}

func TestBatchChangeMusicPosition_StopsAtFirstRejection(t *testing.T) {
	tl, rec := evenTimeline(t, 4)
	before := tl.Snapshot()

	// Point 2 collides with 3 and is tried first.
	if got := tl.BatchChangeMusicPosition(1, 2, shiftBy(1)); got != 0 {
		t.Fatalf("applied = %d, want 0", got)
	}
	if !tl.Snapshot().Equal(before) {
		t.Error("points after the rejection should not move")
	}
	if got := rec.count(notify.PositionChangeRejected); got != 1 {
		t.Errorf("PositionChangeRejected count = %d, want 1", got)
	}
	if got := rec.count(notify.TimingChanged); got != 0 {
		t.Errorf("TimingChanged count = %d, want 0", got)
	}
}

func TestBatchChangeMusicPosition_PartialApply(t *testing.T) {
	tl, _ := evenTimeline(t, 4)

	// 1 -> 0.5 is fine, 2 -> 0.5 collides with the moved 1.
	fn := func(p point.TimingPoint) float64 { return 0.5 }
	if got := tl.BatchChangeMusicPosition(1, 2, fn); got != 1 {
		t.Fatalf("applied = %d, want 1", got)
	}
	p, _ := tl.Point(1)
	if p.Pos() != 0.5 {
		t.Errorf("point 1 position = %v, want 0.5", p.Pos())
	}
	p, _ = tl.Point(2)
	if p.Pos() != 2 {
		t.Errorf("point 2 position = %v, want 2", p.Pos())
	}
}

func TestBatchChangeOffset(t *testing.T) {
	tl, _ := evenTimeline(t, 3)

	shift := func(p point.TimingPoint) float64 { return p.Offset + 3 }
	if got := tl.BatchChangeOffset(1, 2, shift); got != 2 {
		t.Fatalf("applied = %d, want 2", got)
	}
	want := []float64{0, 5, 7}
	for i, off := range want {
		p, _ := tl.Point(i)
		if p.Offset != off {
			t.Errorf("point %d offset = %v, want %v", i, p.Offset, off)
		}
	}
	a, _ := tl.Point(0)
	if !approx(a.MPS, 0.2) {
		t.Errorf("A.MPS = %v, want 0.2", a.MPS)
	}
}

func TestBatchChange_InvalidRange(t *testing.T) {
	tl, _ := evenTimeline(t, 3)
	if got := tl.BatchChangeMusicPosition(2, 1, shiftBy(1)); got != 0 {
		t.Errorf("applied = %d for inverted range", got)
	}
	if got := tl.BatchChangeOffset(0, 5, shiftBy(1)); got != 0 {
		t.Errorf("applied = %d for out of range", got)
	}
}

func TestScaleTempo(t *testing.T) {
	tl, rec := evenTimeline(t, 4)

	if err := tl.ScaleTempo(0, 1, 2); err != nil {
		t.Fatalf("ScaleTempo failed: %v", err)
	}

	wantPos := []float64{0, 2, 4, 5}
	wantMPS := []float64{1, 1, 0.5, 0.5}
	for i := range wantPos {
		p, _ := tl.Point(i)
		if !approx(p.Pos(), wantPos[i]) || !approx(p.MPS, wantMPS[i]) {
			t.Errorf("point %d = %v, want position %v mps %v", i, p, wantPos[i], wantMPS[i])
		}
		if p.Offset != float64(2*i) {
			t.Errorf("point %d offset moved to %v", i, p.Offset)
		}
	}
	if got := rec.count(notify.TimingChanged); got != 1 {
		t.Errorf("TimingChanged count = %d, want 1", got)
	}
}

func TestScaleTempo_LastPoint(t *testing.T) {
	tl, _ := evenTimeline(t, 2)

	if err := tl.ScaleTempo(1, 1, 2); err != nil {
		t.Fatal(err)
	}
	b, _ := tl.Point(1)
	if !approx(b.MPS, 1) || !b.TempoPinned {
		t.Errorf("last MPS = %v pinned=%v, want 1 pinned", b.MPS, b.TempoPinned)
	}
}

func TestScaleTempo_Errors(t *testing.T) {
	tl, _ := evenTimeline(t, 2)

	if err := tl.ScaleTempo(0, 1, 0); !errors.Is(err, ErrInvalidFactor) {
		t.Errorf("expected ErrInvalidFactor, got %v", err)
	}
	if err := tl.ScaleTempo(0, 4, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestBulk_TrustsWritesAndRecomputes(t *testing.T) {
	tl, rec := evenTimeline(t, 3)

	err := tl.Bulk(func() error {
		tl.ProposePosition(1, 1.5)
		tl.ProposeOffset(2, 10)
		return nil
	})
	if err != nil {
		t.Fatalf("Bulk failed: %v", err)
	}

	a, _ := tl.Point(0)
	b, _ := tl.Point(1)
	if !approx(a.MPS, 0.75) || !approx(b.MPS, 0.5/8) {
		t.Errorf("MPS = %v, %v; want 0.75, %v", a.MPS, b.MPS, 0.5/8)
	}
	if len(rec.events) != 1 || rec.events[0].Kind != notify.TimingChanged {
		t.Errorf("expected a single TimingChanged, got %v", rec.events)
	}
}

func TestBulk_RestoresOnBrokenOrder(t *testing.T) {
	tl, rec := evenTimeline(t, 3)
	before := tl.Snapshot()

	err := tl.Bulk(func() error {
		tl.ProposePosition(0, 5)
		return nil
	})
	if !IsIntegrity(err) {
		t.Fatalf("expected integrity error, got %v", err)
	}
	if !tl.Snapshot().Equal(before) {
		t.Error("Bulk should restore the previous state")
	}
	if len(rec.events) != 0 {
		t.Errorf("failed Bulk should not notify, got %v", rec.events)
	}
}

func TestBulk_RestoresOnError(t *testing.T) {
	tl, _ := evenTimeline(t, 2)
	before := tl.Snapshot()
	boom := errors.New("boom")

	err := tl.Bulk(func() error {
		tl.ProposeOffset(1, 7)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !tl.Snapshot().Equal(before) {
		t.Error("Bulk should restore the previous state")
	}
}

func TestInstantiate(t *testing.T) {
	tl, rec := newTestTimeline()

	err := tl.Instantiate(func() error {
		for i := 0; i < 5; i++ {
			if _, ok := tl.AddAnchoredPoint(float64(i), float64(i)); !ok {
				t.Fatalf("point %d rejected", i)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if tl.Len() != 5 {
		t.Errorf("Len() = %d, want 5", tl.Len())
	}
	if rec.count(notify.PointCountChanged) != 1 || rec.count(notify.TimingChanged) != 1 {
		t.Errorf("expected one count and one timing notification, got %v", rec.events)
	}
}

func TestInstantiate_RestoresOnError(t *testing.T) {
	tl, rec := newTestTimeline()
	boom := errors.New("boom")

	err := tl.Instantiate(func() error {
		tl.AddAnchoredPoint(0, 0)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !tl.IsEmpty() || len(rec.events) != 0 {
		t.Error("failed Instantiate should leave the timeline untouched")
	}
}
