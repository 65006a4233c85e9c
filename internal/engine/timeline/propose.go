package timeline

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/engine/notify"
	"github.com/dshills/tempomap/internal/engine/point"
)

// Property identifies an editable property of a timing point.
type Property int

const (
	PropertyOffset Property = iota
	PropertyPosition
	PropertyMPS
	PropertyBPM
	PropertyTimeSignature
)

// String returns the property name.
func (p Property) String() string {
	switch p {
	case PropertyOffset:
		return "offset"
	case PropertyPosition:
		return "position"
	case PropertyMPS:
		return "mps"
	case PropertyBPM:
		return "bpm"
	case PropertyTimeSignature:
		return "time-signature"
	default:
		return "unknown"
	}
}

// verdict is the outcome of validating a tentative write.
type verdict struct {
	ok       bool
	blocking int
}

var accepted = verdict{ok: true, blocking: -1}

func rejected(blocking int) verdict {
	return verdict{blocking: blocking}
}

// ProposeOffset proposes a new offset for point i. The offset must stay
// strictly between the neighbors' offsets.
func (t *Timeline) ProposeOffset(i int, offset float64) bool {
	return t.propose(i, PropertyOffset,
		func(p *point.TimingPoint) { p.Offset = offset },
		func() verdict {
			if !finite(offset) {
				return rejected(-1)
			}
			if i > 0 && t.points[i-1].Offset >= offset {
				return rejected(i - 1)
			}
			if i+1 < len(t.points) && t.points[i+1].Offset <= offset {
				return rejected(i + 1)
			}
			return accepted
		})
}

// ProposePosition proposes a new music position for point i. The position
// must stay strictly between the neighbors' positions; a conflict emits
// PositionChangeRejected naming the blocking neighbor.
func (t *Timeline) ProposePosition(i int, pos float64) bool {
	return t.propose(i, PropertyPosition,
		func(p *point.TimingPoint) {
			p.Position = point.Anchored(pos)
			p.TimeSignature = t.TimeSignatureAt(point.MeasureOf(pos))
		},
		func() verdict {
			if !finite(pos) {
				return rejected(-1)
			}
			if i > 0 && t.points[i-1].Pos() >= pos {
				return rejected(i - 1)
			}
			if i+1 < len(t.points) && t.points[i+1].Pos() <= pos {
				return rejected(i + 1)
			}
			return accepted
		})
}

// ProposeMPS proposes a tempo in measures per second for point i.
// Only the last point's tempo is free; any other point accepts only the
// value implied by its successor, within tolerance.
func (t *Timeline) ProposeMPS(i int, mps float64) bool {
	return t.proposeTempo(i, PropertyMPS, mps)
}

// ProposeBPM proposes a tempo in beats per minute for point i, under the
// point's own time signature. See ProposeMPS.
func (t *Timeline) ProposeBPM(i int, bpm float64) bool {
	if i < 0 || i >= len(t.points) {
		return false
	}
	return t.proposeTempo(i, PropertyBPM, point.MPSFromBPM(bpm, t.points[i].TimeSignature))
}

func (t *Timeline) proposeTempo(i int, prop Property, mps float64) bool {
	return t.propose(i, prop,
		func(p *point.TimingPoint) {
			p.MPS = mps
			if i == len(t.points)-1 {
				p.TempoPinned = true
			}
		},
		func() verdict {
			if !finite(mps) || mps <= 0 {
				return rejected(-1)
			}
			if i+1 >= len(t.points) {
				return accepted
			}
			ts := t.points[i].TimeSignature
			implied := point.BPMFromMPS(t.slope(i), ts)
			if math.Abs(point.BPMFromMPS(mps, ts)-implied) > t.bpmTolerance() {
				return rejected(i + 1)
			}
			return accepted
		})
}

// ProposeTimeSignature proposes a time signature for point i. Any valid
// signature is accepted.
func (t *Timeline) ProposeTimeSignature(i int, ts point.TimeSignature) bool {
	return t.propose(i, PropertyTimeSignature,
		func(p *point.TimingPoint) { p.TimeSignature = ts },
		func() verdict {
			if !ts.IsValid() {
				return rejected(-1)
			}
			return accepted
		})
}

func (t *Timeline) bpmTolerance() float64 {
	if t.prefs.RoundBPM() {
		return t.Tolerances().RoundBPM
	}
	return t.Tolerances().BPM
}

// propose runs the propose, validate, commit-or-revert protocol.
//
// apply writes the tentative value; validate inspects the timeline with the
// value in place. On rejection the previous point is restored. On
// acceptance the tempo cascade runs and one TimingChanged is emitted.
//
// Writes to a point that is already being updated by a cascade, and writes
// while change handling is suspended, are trusted and go straight through.
func (t *Timeline) propose(i int, prop Property, apply func(p *point.TimingPoint), validate func() verdict) bool {
	if i < 0 || i >= len(t.points) {
		return false
	}

	p := &t.points[i]
	if p.IsBeingUpdated() || !t.handleChanges {
		apply(p)
		return true
	}

	t.begin()
	defer t.end()

	old := *p
	apply(p)
	v := validate()
	if !v.ok {
		t.points[i] = old
		t.reject(i, prop, v.blocking)
		return false
	}

	p.SetBeingUpdated(true)
	t.updateAdjacentTempo(i, prop == PropertyTimeSignature && t.prefs.PreserveBPMOnTimeSignatureChange())
	p.SetBeingUpdated(false)

	t.finalize(i)
	return true
}

// reject records a refused edit. Only position conflicts with a neighbor
// are announced; they also cancel an in-progress batch.
func (t *Timeline) reject(i int, prop Property, blocking int) {
	t.log.WithFields(logrus.Fields{
		"index":    i,
		"property": prop.String(),
		"blocking": blocking,
	}).Debug("edit rejected")

	if prop != PropertyPosition || blocking < 0 {
		return
	}
	if t.batch.inProgress {
		t.batch.cancelled = true
	}
	t.emit(notify.Event{
		Kind:     notify.PositionChangeRejected,
		Target:   t.target(t.points[i].ID),
		Index:    i,
		Blocking: blocking,
	})
}

// finalize emits the change notification for point i unless a batch edit
// is collecting them.
func (t *Timeline) finalize(i int) {
	if t.batch.inProgress {
		return
	}
	t.emitTimingChanged(i)
}
