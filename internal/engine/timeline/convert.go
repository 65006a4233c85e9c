package timeline

import (
	"sort"

	"github.com/dshills/tempomap/internal/engine/point"
)

// operatingIndexAtTime returns the index of the last point with
// offset <= t, the first point if every point is later, or -1 if empty.
func (t *Timeline) operatingIndexAtTime(sec float64) int {
	if len(t.points) == 0 {
		return -1
	}
	i := sort.Search(len(t.points), func(i int) bool {
		return t.points[i].Offset > sec
	}) - 1
	if i < 0 {
		return 0
	}
	return i
}

// operatingIndexAtPosition returns the index of the last point with
// position <= pos, the first point if every point is later, or -1 if empty.
func (t *Timeline) operatingIndexAtPosition(pos float64) int {
	if len(t.points) == 0 {
		return -1
	}
	i := sort.Search(len(t.points), func(i int) bool {
		return t.points[i].Pos() > pos
	}) - 1
	if i < 0 {
		return 0
	}
	return i
}

// TimeToPosition converts seconds into a music position in measures.
func (t *Timeline) TimeToPosition(sec float64) float64 {
	i := t.operatingIndexAtTime(sec)
	if i < 0 {
		return sec * DefaultMPS
	}
	op := t.points[i]
	return op.Pos() + (sec-op.Offset)*op.MPS
}

// PositionToTime converts a music position in measures into seconds.
func (t *Timeline) PositionToTime(pos float64) float64 {
	i := t.operatingIndexAtPosition(pos)
	if i < 0 {
		return pos / DefaultMPS
	}
	op := t.points[i]
	return op.Offset + (pos-op.Pos())/op.MPS
}

// OperatingPointAtTime returns the point that governs conversion at sec
// and its index. ok is false if the timeline is empty.
func (t *Timeline) OperatingPointAtTime(sec float64) (p point.TimingPoint, index int, ok bool) {
	i := t.operatingIndexAtTime(sec)
	if i < 0 {
		return point.TimingPoint{}, -1, false
	}
	return t.points[i].Clone(), i, true
}

// OperatingPointAtPosition returns the point that governs conversion at
// pos and its index. ok is false if the timeline is empty.
func (t *Timeline) OperatingPointAtPosition(pos float64) (p point.TimingPoint, index int, ok bool) {
	i := t.operatingIndexAtPosition(pos)
	if i < 0 {
		return point.TimingPoint{}, -1, false
	}
	return t.points[i].Clone(), i, true
}

// TempoAtTime returns the tempo in measures per second in force at sec.
func (t *Timeline) TempoAtTime(sec float64) float64 {
	i := t.operatingIndexAtTime(sec)
	if i < 0 {
		return DefaultMPS
	}
	return t.points[i].MPS
}

// BPMAtTime returns the tempo in beats per minute in force at sec, using
// the time signature of the measure that contains sec.
func (t *Timeline) BPMAtTime(sec float64) float64 {
	ts := t.TimeSignatureAt(point.MeasureOf(t.TimeToPosition(sec)))
	return point.BPMFromMPS(t.TempoAtTime(sec), ts)
}
