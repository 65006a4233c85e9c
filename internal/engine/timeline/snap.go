package timeline

import (
	"math"

	"github.com/dshills/tempomap/internal/engine/point"
)

// SnapPosition rounds raw to the nearest grid division of the measure
// that contains it. The grid has num*divisor/denom divisions per measure,
// so a divisor of 4 snaps to quarter notes and 16 to sixteenths.
// raw is returned unchanged when snapping is disabled.
func (t *Timeline) SnapPosition(raw float64) float64 {
	if !t.prefs.SnapToGrid() {
		return raw
	}
	divisor := t.prefs.GridDivisor()
	if divisor <= 0 {
		return raw
	}

	m := point.MeasureOf(raw)
	ts := t.TimeSignatureAt(m)
	steps := float64(ts.Num) * float64(divisor) / float64(ts.Denom)
	if steps <= 0 {
		return raw
	}

	frac := raw - float64(m)
	return float64(m) + math.Round(frac*steps)/steps
}

// SnapTime snaps a time in seconds to the grid through the current mapping.
func (t *Timeline) SnapTime(sec float64) float64 {
	return t.PositionToTime(t.SnapPosition(t.TimeToPosition(sec)))
}
