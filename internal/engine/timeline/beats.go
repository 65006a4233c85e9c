package timeline

import (
	"math"

	"github.com/dshills/tempomap/internal/engine/point"
)

// signatureAt returns the signature in force at measure m in segs.
func signatureAt(segs []Segment, m int) point.TimeSignature {
	ts := point.Common
	for _, s := range segs {
		if s.Measure > m {
			break
		}
		ts = s.TimeSignature
	}
	return ts
}

// walkMeasures integrates unit(signature) over [from, to] measure by
// measure. The result is negative when to < from.
func walkMeasures(segs []Segment, from, to float64, unit func(point.TimeSignature) float64) (float64, error) {
	if !finite(from) || !finite(to) {
		return 0, integrityError("measure walk over non-finite range [%g, %g]", from, to)
	}
	if from == to {
		return 0, nil
	}

	sign := 1.0
	if to < from {
		from, to = to, from
		sign = -1
	}

	total := 0.0
	cur := from
	for steps := 0; cur < to; steps++ {
		if steps >= MaxMeasureWalk {
			return 0, integrityError("measure walk from %g to %g exceeded %d measures", from, to, MaxMeasureWalk)
		}
		m := point.MeasureOf(cur)
		end := math.Min(float64(m+1), to)
		total += (end - cur) * unit(signatureAt(segs, m))
		cur = end
	}
	return sign * total, nil
}

func beatsPerMeasure(ts point.TimeSignature) float64 {
	return ts.BeatsPerMeasure()
}

func quarterNotesPerMeasure(ts point.TimeSignature) float64 {
	return ts.QuarterNotesPerMeasure()
}

// beatsBetween counts the beats from one position to another under segs.
func beatsBetween(segs []Segment, from, to float64) (float64, error) {
	return walkMeasures(segs, from, to, beatsPerMeasure)
}

// positionAfterBeats walks beats forward (or backward when negative) from
// the position from under segs and returns the position it lands on.
func positionAfterBeats(segs []Segment, from, beats float64) (float64, error) {
	if !finite(from) || !finite(beats) {
		return 0, integrityError("beat walk from %g by %g beats", from, beats)
	}

	cur := from
	if beats >= 0 {
		remaining := beats
		for steps := 0; ; steps++ {
			if steps >= MaxMeasureWalk {
				return 0, integrityError("beat walk from %g by %g beats exceeded %d measures", from, beats, MaxMeasureWalk)
			}
			m := point.MeasureOf(cur)
			perMeasure := signatureAt(segs, m).BeatsPerMeasure()
			toEnd := (float64(m+1) - cur) * perMeasure
			if remaining <= toEnd {
				return cur + remaining/perMeasure, nil
			}
			remaining -= toEnd
			cur = float64(m + 1)
		}
	}

	remaining := -beats
	for steps := 0; ; steps++ {
		if steps >= MaxMeasureWalk {
			return 0, integrityError("beat walk from %g by %g beats exceeded %d measures", from, beats, MaxMeasureWalk)
		}
		m := int(math.Ceil(cur)) - 1
		perMeasure := signatureAt(segs, m).BeatsPerMeasure()
		toStart := (cur - float64(m)) * perMeasure
		if remaining <= toStart {
			return cur - remaining/perMeasure, nil
		}
		remaining -= toStart
		cur = float64(m)
	}
}

// BeatsBetween returns the number of beats between two music positions
// under the current time signature segments. It is negative when to < from.
func (t *Timeline) BeatsBetween(from, to float64) (float64, error) {
	n, err := beatsBetween(t.segments, from, to)
	if err != nil {
		t.log.WithError(err).Error("beat integration failed")
	}
	return n, err
}

// PositionAfterBeats returns the position reached by walking beats from
// the position from under the current time signature segments.
func (t *Timeline) PositionAfterBeats(from, beats float64) (float64, error) {
	pos, err := positionAfterBeats(t.segments, from, beats)
	if err != nil {
		t.log.WithError(err).Error("beat walk failed")
	}
	return pos, err
}

// QuarterNotesBetween returns the number of quarter notes between two
// music positions under the current time signature segments.
func (t *Timeline) QuarterNotesBetween(from, to float64) (float64, error) {
	n, err := walkMeasures(t.segments, from, to, quarterNotesPerMeasure)
	if err != nil {
		t.log.WithError(err).Error("quarter note integration failed")
	}
	return n, err
}
