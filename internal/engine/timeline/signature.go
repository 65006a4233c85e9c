package timeline

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/engine/point"
)

// Segments returns a copy of the time signature segments in order.
func (t *Timeline) Segments() []Segment {
	result := make([]Segment, len(t.segments))
	copy(result, t.segments)
	return result
}

// TimeSignatureAt returns the signature in force at measure m.
// Measures before the first segment are in 4/4.
func (t *Timeline) TimeSignatureAt(m int) point.TimeSignature {
	return signatureAt(t.segments, m)
}

// segmentIndex returns the index of the segment at measure m, or -1.
func (t *Timeline) segmentIndex(m int) int {
	i := sort.Search(len(t.segments), func(i int) bool {
		return t.segments[i].Measure >= m
	})
	if i < len(t.segments) && t.segments[i].Measure == m {
		return i
	}
	return -1
}

// PutSegment stores a segment as is, replacing any segment at the same
// measure. Redundant neighbors are kept; it is meant for loading persisted
// state. Points are not re-tagged.
func (t *Timeline) PutSegment(seg Segment) error {
	if !seg.TimeSignature.IsValid() {
		return ErrInvalidTimeSignature
	}
	if i := t.segmentIndex(seg.Measure); i >= 0 {
		t.segments[i] = seg
		return nil
	}
	i := sort.Search(len(t.segments), func(i int) bool {
		return t.segments[i].Measure > seg.Measure
	})
	t.segments = append(t.segments, Segment{})
	copy(t.segments[i+1:], t.segments[i:])
	t.segments[i] = seg
	return nil
}

// dropRedundantSegments removes every segment that repeats the signature
// of the segment before it.
func (t *Timeline) dropRedundantSegments() {
	if len(t.segments) < 2 {
		return
	}
	kept := t.segments[:1]
	for _, s := range t.segments[1:] {
		if s.TimeSignature == kept[len(kept)-1].TimeSignature {
			continue
		}
		kept = append(kept, s)
	}
	t.segments = kept
}

// nextSegmentMeasure returns the measure of the first segment after m, or
// math.MaxInt if there is none.
func (t *Timeline) nextSegmentMeasure(m int) int {
	for _, s := range t.segments {
		if s.Measure > m {
			return s.Measure
		}
	}
	return math.MaxInt
}

// SetTimeSignature makes ts take effect at measure atMeasure.
//
// The segment at atMeasure is created or updated and redundant neighbors
// are merged away. A timing point is synthesized at atMeasure if none is
// anchored there, and every point from atMeasure up to the next differing
// segment takes the new signature.
//
// With MoveSubsequentPointsOnTimeSignatureChange every later point keeps
// its distance in beats from atMeasure. With
// PreserveBPMOnTimeSignatureChange the last point's free tempo is
// reconciled so its beat rate carries over.
func (t *Timeline) SetTimeSignature(ts point.TimeSignature, atMeasure int) error {
	if !ts.IsValid() {
		return ErrInvalidTimeSignature
	}

	t.begin()
	defer t.end()

	before := t.Snapshot()

	if err := t.ensurePointAt(atMeasure); err != nil {
		return err
	}
	if err := t.PutSegment(Segment{Measure: atMeasure, TimeSignature: ts}); err != nil {
		return err
	}
	t.dropRedundantSegments()

	if err := t.applySegmentChange(before.Segments, atMeasure); err != nil {
		t.points, t.segments = before.Points, before.Segments
		return err
	}

	t.log.WithFields(logrus.Fields{
		"measure":   atMeasure,
		"signature": ts.String(),
	}).Debug("time signature set")
	return nil
}

// RemoveTimeSignature removes the segment that starts at atMeasure. The
// points it governed take the signature in force before it.
func (t *Timeline) RemoveTimeSignature(atMeasure int) error {
	i := t.segmentIndex(atMeasure)
	if i < 0 {
		return ErrSegmentNotFound
	}

	t.begin()
	defer t.end()

	before := t.Snapshot()

	t.segments = append(t.segments[:i], t.segments[i+1:]...)
	t.dropRedundantSegments()

	if err := t.applySegmentChange(before.Segments, atMeasure); err != nil {
		t.points, t.segments = before.Points, before.Segments
		return err
	}
	return nil
}

// ensurePointAt synthesizes a timing point at the start of measure m if
// none is anchored there.
func (t *Timeline) ensurePointAt(m int) error {
	pos := float64(m)
	if t.IndexAtPosition(pos) >= 0 {
		return nil
	}
	if _, ok := t.AddAnchoredPoint(pos, t.PositionToTime(pos)); !ok {
		return integrityError("could not synthesize a timing point at measure %d", m)
	}
	return nil
}

// applySegmentChange re-tags points after the segments changed at measure
// at, optionally shifting later points to preserve their beat distance
// under the old segments, then recomputes tempos.
//
// The last point's free tempo is reconciled with its predecessor only when
// the change re-tagged or moved it; otherwise it is left as set.
func (t *Timeline) applySegmentChange(oldSegments []Segment, at int) error {
	start := float64(at)
	end := t.nextSegmentMeasure(at)

	last := len(t.points) - 1
	var lastBefore point.TimingPoint
	if last >= 0 {
		lastBefore = t.points[last]
	}

	if t.prefs.MoveSubsequentPointsOnTimeSignatureChange() {
		shifted := make([]float64, len(t.points))
		for i := range t.points {
			pos := t.points[i].Pos()
			shifted[i] = pos
			if pos <= start {
				continue
			}
			beats, err := beatsBetween(oldSegments, start, pos)
			if err != nil {
				return err
			}
			if shifted[i], err = positionAfterBeats(t.segments, start, beats); err != nil {
				return err
			}
		}
		for i := range t.points {
			t.points[i].Position = point.Anchored(shifted[i])
		}
		// Every shifted point may have crossed a segment boundary.
		end = math.MaxInt
	}

	for i := range t.points {
		pos := t.points[i].Pos()
		if pos < start || (end != math.MaxInt && pos >= float64(end)) {
			continue
		}
		t.points[i].TimeSignature = t.TimeSignatureAt(point.MeasureOf(pos))
	}

	if err := verifyPoints(t.points); err != nil {
		t.log.WithError(err).Error("time signature change broke point order")
		return err
	}

	reconcile := false
	if last >= 0 && t.prefs.PreserveBPMOnTimeSignatureChange() {
		p := t.points[last]
		reconcile = p.TimeSignature != lastBefore.TimeSignature || p.Pos() != lastBefore.Pos()
	}

	t.recomputeAll(reconcile)
	t.emitTimingChanged(t.IndexAtPosition(start))
	return nil
}
