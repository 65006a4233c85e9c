package timeline

import (
	"math"
	"testing"

	"github.com/dshills/tempomap/internal/engine/point"
)

func TestBeatsBetween(t *testing.T) {
	tl := New()
	if err := tl.PutSegment(Segment{Measure: 1, TimeSignature: threeFour}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		from, to float64
		want     float64
	}{
		{0, 1, 4},
		{0, 2, 7},
		{2, 0, -7},
		{0.5, 1.5, 2 + 1.5},
		{-1, 0, 4},
		{3, 3, 0},
	}

	for _, tt := range tests {
		got, err := tl.BeatsBetween(tt.from, tt.to)
		if err != nil {
			t.Fatalf("BeatsBetween(%v, %v): %v", tt.from, tt.to, err)
		}
		if !approx(got, tt.want) {
			t.Errorf("BeatsBetween(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPositionAfterBeats_InvertsBeatsBetween(t *testing.T) {
	tl := New()
	segs := []Segment{
		{Measure: 1, TimeSignature: threeFour},
		{Measure: 3, TimeSignature: point.NewTimeSignature(7, 8)},
		{Measure: 6, TimeSignature: point.Common},
	}
	for _, s := range segs {
		if err := tl.PutSegment(s); err != nil {
			t.Fatal(err)
		}
	}

	for from := -1.0; from < 8; from += 0.37 {
		for to := -1.0; to < 8; to += 0.53 {
			beats, err := tl.BeatsBetween(from, to)
			if err != nil {
				t.Fatal(err)
			}
			got, err := tl.PositionAfterBeats(from, beats)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-to) > 1e-9 {
				t.Fatalf("PositionAfterBeats(%v, %v) = %v, want %v", from, beats, got, to)
			}
		}
	}
}

func TestQuarterNotesBetween(t *testing.T) {
	tl := New()
	if err := tl.PutSegment(Segment{Measure: 1, TimeSignature: point.NewTimeSignature(3, 8)}); err != nil {
		t.Fatal(err)
	}
	got, err := tl.QuarterNotesBetween(0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(got, 5.5) {
		t.Errorf("QuarterNotesBetween(0, 2) = %v, want 5.5", got)
	}
}

func TestMeasureWalkCap(t *testing.T) {
	tl := New()

	if _, err := tl.BeatsBetween(0, 2*MaxMeasureWalk); !IsIntegrity(err) {
		t.Errorf("expected integrity error from BeatsBetween, got %v", err)
	}
	if _, err := tl.PositionAfterBeats(0, 10*MaxMeasureWalk); !IsIntegrity(err) {
		t.Errorf("expected integrity error from forward walk, got %v", err)
	}
	if _, err := tl.PositionAfterBeats(0, -10*MaxMeasureWalk); !IsIntegrity(err) {
		t.Errorf("expected integrity error from backward walk, got %v", err)
	}
	if _, err := tl.BeatsBetween(0, math.NaN()); !IsIntegrity(err) {
		t.Errorf("expected integrity error for NaN, got %v", err)
	}
}
