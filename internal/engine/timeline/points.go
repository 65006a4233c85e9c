package timeline

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/engine/point"
)

// AddAnchoredPoint inserts a point binding time (seconds) to position
// (measures). The point takes the time signature in force at its measure.
//
// The insertion is rejected, returning -1 and false, if it would collide
// with or cross a neighbor.
func (t *Timeline) AddAnchoredPoint(position, time float64) (int, bool) {
	ts := t.TimeSignatureAt(point.MeasureOf(position))
	p := point.New(time, point.Anchored(position), ts)
	p.CreatedAt = t.now()
	return t.AddPoint(p)
}

// AddPoint inserts a fully specified point. It is rejected if its music
// position is pending, if it would collide with or cross a neighbor, or if
// its time signature is invalid.
func (t *Timeline) AddPoint(p point.TimingPoint) (int, bool) {
	pos, ok := p.Position.Value()
	if !ok || !finite(p.Offset) || !finite(pos) || !p.TimeSignature.IsValid() {
		return -1, false
	}

	i := t.insertionIndex(p.Offset)
	if !t.fits(i, p.Offset, pos, 0) {
		t.log.WithFields(logrus.Fields{
			"offset":   p.Offset,
			"position": pos,
		}).Debug("rejected point placement")
		return -1, false
	}

	return t.insert(i, p), true
}

// AddInferredPoint inserts a point at time whose music position is read
// from the current mapping.
//
// The insertion is rejected if the derived position lies within the
// inferred point threshold of either neighbor, which guards against
// accidental double placement.
func (t *Timeline) AddInferredPoint(time float64) (int, bool) {
	if !finite(time) {
		return -1, false
	}

	p := point.New(time, point.Pending(), point.Common)
	p.CreatedAt = t.now()

	pos := t.TimeToPosition(time)
	i := t.insertionIndex(time)
	if !t.fits(i, time, pos, t.Tolerances().InferredPointThreshold) {
		t.log.WithFields(logrus.Fields{
			"offset":   time,
			"position": pos,
		}).Debug("rejected inferred point")
		return -1, false
	}

	p.Position = point.Anchored(pos)
	p.TimeSignature = t.TimeSignatureAt(point.MeasureOf(pos))
	return t.insert(i, p), true
}

// insertionIndex returns the index a point at offset would take.
func (t *Timeline) insertionIndex(offset float64) int {
	return sort.Search(len(t.points), func(i int) bool {
		return t.points[i].Offset > offset
	})
}

// fits reports whether a point at (offset, pos) may be inserted at index i,
// keeping at least gap measures from both neighbors.
func (t *Timeline) fits(i int, offset, pos, gap float64) bool {
	if i > 0 {
		prev := t.points[i-1]
		if prev.Offset >= offset || pos-prev.Pos() <= gap {
			return false
		}
	}
	if i < len(t.points) {
		next := t.points[i]
		if next.Offset <= offset || next.Pos()-pos <= gap {
			return false
		}
	}
	return true
}

// insert places p at index i and initializes the surrounding tempos.
func (t *Timeline) insert(i int, p point.TimingPoint) int {
	t.begin()
	defer t.end()

	p.SetInstantiating(true)
	t.points = append(t.points, point.TimingPoint{})
	copy(t.points[i+1:], t.points[i:])
	t.points[i] = p

	if i > 0 {
		t.points[i-1].TempoPinned = false
	}
	// An unpinned new last point continues its predecessor.
	t.updateAdjacentTempo(i, false)

	t.points[i].SetInstantiating(false)
	t.emitStructural(i)
	return i
}

// DeleteTimingPoint removes the point at index i.
func (t *Timeline) DeleteTimingPoint(i int) bool {
	return t.DeleteRange(i, i+1)
}

// DeleteSettled handles a delete gesture on point i. A point placed within
// the placement window is still being dragged into place and is kept. It
// reports whether the point was removed.
func (t *Timeline) DeleteSettled(i int) bool {
	if i < 0 || i >= len(t.points) {
		return false
	}
	if t.points[i].RecentlyCreated(t.now(), t.placement) {
		t.log.WithField("index", i).Debug("ignored delete of a point being placed")
		return false
	}
	return t.DeleteTimingPoint(i)
}

// DeleteRange removes the points in [from, to) and recomputes the tempo of
// the new predecessor once.
func (t *Timeline) DeleteRange(from, to int) bool {
	if from < 0 || to > len(t.points) || from >= to {
		return false
	}

	t.begin()
	defer t.end()

	t.points = append(t.points[:from], t.points[to:]...)
	if from > 0 {
		t.computeMPS(from-1, false)
	}

	t.emitStructural(from - 1)
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
