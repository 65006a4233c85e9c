package point

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimingPoint anchors an audio offset to a music position.
//
// Except for the last point on a timeline, MPS is derived from the next
// point's anchors and is rewritten by the owning timeline. The last point's
// MPS is free; TempoPinned records that it was set explicitly.
type TimingPoint struct {
	// ID identifies the point across clones and undo/redo.
	ID uuid.UUID

	// Offset is the anchor time in seconds into the audio.
	Offset float64

	// Position is the anchor music position in measures.
	Position Position

	// TimeSignature is the signature in force at Position.
	TimeSignature TimeSignature

	// MPS is the tempo in measures per second.
	MPS float64

	// TempoPinned is set when the tempo of the last point was set explicitly.
	TempoPinned bool

	// CreatedAt is when the point was placed.
	CreatedAt time.Time

	instantiating bool
	beingUpdated  bool
}

// New creates a point with a fresh identity.
func New(offset float64, pos Position, ts TimeSignature) TimingPoint {
	return TimingPoint{
		ID:            uuid.New(),
		Offset:        offset,
		Position:      pos,
		TimeSignature: ts,
		MPS:           MPSFromBPM(DefaultBPM, ts),
		CreatedAt:     time.Now(),
	}
}

// DefaultBPM is the tempo assumed when nothing else determines it.
const DefaultBPM = 120

// BPM returns the tempo in beats per minute under the point's signature.
func (p TimingPoint) BPM() float64 {
	return BPMFromMPS(p.MPS, p.TimeSignature)
}

// Pos returns the anchored music position, or 0 if pending.
func (p TimingPoint) Pos() float64 {
	v, _ := p.Position.Value()
	return v
}

// Clone returns a copy of the point with transient flags cleared.
// The clone keeps the point's identity.
func (p TimingPoint) Clone() TimingPoint {
	c := p
	c.instantiating = false
	c.beingUpdated = false
	return c
}

// RecentlyCreated returns true if the point was placed less than window
// before now, i.e. it is most likely still being dragged into place.
func (p TimingPoint) RecentlyCreated(now time.Time, window time.Duration) bool {
	return now.Sub(p.CreatedAt) < window
}

// IsInstantiating returns true while the point is being constructed and
// must not raise notifications.
func (p TimingPoint) IsInstantiating() bool {
	return p.instantiating
}

// SetInstantiating sets the construction flag.
func (p *TimingPoint) SetInstantiating(v bool) {
	p.instantiating = v
}

// IsBeingUpdated returns true while a cascading write is in progress.
func (p TimingPoint) IsBeingUpdated() bool {
	return p.beingUpdated
}

// SetBeingUpdated sets the re-entrancy guard for cascading writes.
func (p *TimingPoint) SetBeingUpdated(v bool) {
	p.beingUpdated = v
}

// Equal reports whether two points carry the same identity and values.
// Transient flags and creation time are ignored.
func (p TimingPoint) Equal(o TimingPoint) bool {
	return p.ID == o.ID &&
		p.Offset == o.Offset &&
		p.Position == o.Position &&
		p.TimeSignature == o.TimeSignature &&
		p.MPS == o.MPS &&
		p.TempoPinned == o.TempoPinned
}

// String returns a readable form of the point.
func (p TimingPoint) String() string {
	return fmt.Sprintf("TimingPoint(t=%g, %s, %s, mps=%g)", p.Offset, p.Position, p.TimeSignature, p.MPS)
}
