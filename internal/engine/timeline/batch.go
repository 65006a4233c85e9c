package timeline

import (
	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/engine/point"
)

// BatchChangeMusicPosition applies fn to every point in [lo, hi] and
// proposes the result as the point's new music position.
//
// Increasing edits run from hi down to lo and decreasing edits from lo up
// to hi, so each point moves away from the neighbor it would otherwise
// collide with. The batch stops at the first rejected point; points
// already moved stay moved. It returns the number of points applied.
func (t *Timeline) BatchChangeMusicPosition(lo, hi int, fn func(p point.TimingPoint) float64) int {
	return t.batchChange(lo, hi, func(p point.TimingPoint) float64 { return p.Pos() }, fn, t.ProposePosition)
}

// BatchChangeOffset is the time-domain analogue of BatchChangeMusicPosition.
func (t *Timeline) BatchChangeOffset(lo, hi int, fn func(p point.TimingPoint) float64) int {
	return t.batchChange(lo, hi, func(p point.TimingPoint) float64 { return p.Offset }, fn, t.ProposeOffset)
}

func (t *Timeline) batchChange(
	lo, hi int,
	current func(point.TimingPoint) float64,
	fn func(point.TimingPoint) float64,
	propose func(int, float64) bool,
) int {
	if lo < 0 || hi >= len(t.points) || lo > hi || fn == nil {
		return 0
	}

	targets := make([]float64, hi-lo+1)
	delta := 0.0
	for i := lo; i <= hi; i++ {
		targets[i-lo] = fn(t.points[i].Clone())
		delta += targets[i-lo] - current(t.points[i])
	}

	t.begin()
	defer t.end()

	t.batch.inProgress = true
	t.batch.cancelled = false
	defer func() {
		t.batch.inProgress = false
		t.batch.cancelled = false
	}()

	applied := 0
	step := func(i int) bool {
		if t.batch.cancelled || !propose(i, targets[i-lo]) {
			return false
		}
		applied++
		return true
	}

	if delta > 0 {
		for i := hi; i >= lo; i-- {
			if !step(i) {
				break
			}
		}
	} else {
		for i := lo; i <= hi; i++ {
			if !step(i) {
				break
			}
		}
	}

	if applied < hi-lo+1 {
		t.log.WithFields(logrus.Fields{
			"lo":      lo,
			"hi":      hi,
			"applied": applied,
		}).Debug("batch edit stopped early")
	}
	if applied > 0 {
		t.emitTimingChanged(-1)
	}
	return applied
}

// ScaleTempo multiplies the tempo of every point in [lo, hi] by factor.
// Offsets stay anchored to the audio; music positions after lo are
// re-spaced, and points past the range move with it so their own tempo is
// unchanged. The last point's free tempo is scaled and pinned when it is in
// range.
func (t *Timeline) ScaleTempo(lo, hi int, factor float64) error {
	if !finite(factor) || factor <= 0 {
		return ErrInvalidFactor
	}
	if lo < 0 || hi >= len(t.points) || lo > hi {
		return ErrIndexOutOfRange
	}

	return t.Bulk(func() error {
		old := make([]float64, len(t.points))
		for i := range t.points {
			old[i] = t.points[i].Pos()
		}

		base := old[lo]
		scaledEnd := hi + 1
		if scaledEnd >= len(t.points) {
			scaledEnd = len(t.points) - 1
		}
		for i := lo + 1; i <= scaledEnd; i++ {
			t.points[i].Position = point.Anchored(base + (old[i]-base)*factor)
		}
		shift := t.points[scaledEnd].Pos() - old[scaledEnd]
		for i := scaledEnd + 1; i < len(t.points); i++ {
			t.points[i].Position = point.Anchored(old[i] + shift)
		}
		for i := lo; i < len(t.points); i++ {
			t.points[i].TimeSignature = t.TimeSignatureAt(point.MeasureOf(t.points[i].Pos()))
		}

		if last := len(t.points) - 1; hi == last {
			t.points[last].MPS *= factor
			t.points[last].TempoPinned = true
		}
		return nil
	})
}

// Bulk runs fn with change handling suspended: proposals inside fn are
// written without validation, cascades or notifications. Afterwards every
// tempo is recomputed, the invariants are verified and one TimingChanged
// is emitted. If fn fails or leaves the timeline inconsistent the previous
// state is restored and the error returned.
func (t *Timeline) Bulk(fn func() error) error {
	before := t.Snapshot()

	prev := t.handleChanges
	t.handleChanges = false
	err := fn()
	if err == nil {
		err = verifyPoints(t.points)
	}
	if err == nil {
		t.recomputeAll(false)
	}
	t.handleChanges = prev

	if err != nil {
		t.points, t.segments = before.Points, before.Segments
		if IsIntegrity(err) {
			t.log.WithError(err).Error("bulk edit aborted")
		}
		return err
	}

	t.emitTimingChanged(-1)
	return nil
}

// Instantiate runs fn as a bulk load: points added inside fn raise no
// notifications. Proposals inside fn are still validated. Afterwards one
// PointCountChanged and one TimingChanged are emitted.
func (t *Timeline) Instantiate(fn func() error) error {
	before := t.Snapshot()

	t.instantiating = true
	err := fn()
	if err == nil {
		err = t.Verify()
	}
	t.instantiating = false

	if err != nil {
		t.points, t.segments = before.Points, before.Segments
		return err
	}

	t.begin()
	defer t.end()
	t.emitStructural(-1)
	return nil
}
