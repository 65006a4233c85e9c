package point

import (
	"fmt"
	"strconv"
)

// Position is a music position in measures. It is either Pending, while a
// point is still being placed, or Anchored to a concrete value.
type Position struct {
	value    float64
	anchored bool
}

// Pending returns a position that has not been resolved yet.
func Pending() Position {
	return Position{}
}

// Anchored returns a resolved position at v measures.
func Anchored(v float64) Position {
	return Position{value: v, anchored: true}
}

// IsAnchored returns true if the position has been resolved.
func (p Position) IsAnchored() bool {
	return p.anchored
}

// Value returns the position in measures and whether it is anchored.
func (p Position) Value() (float64, bool) {
	return p.value, p.anchored
}

// MustValue returns the position in measures.
// It panics if the position is pending.
func (p Position) MustValue() float64 {
	if !p.anchored {
		panic("point: music position is pending")
	}
	return p.value
}

// Measure returns the integer measure containing the position.
func (p Position) Measure() int {
	return measureOf(p.value)
}

// String returns a readable form of the position.
func (p Position) String() string {
	if !p.anchored {
		return "Pending"
	}
	return fmt.Sprintf("Anchored(%s)", strconv.FormatFloat(p.value, 'f', -1, 64))
}

// MeasureOf returns the integer measure containing the fractional position v.
func MeasureOf(v float64) int {
	return measureOf(v)
}

func measureOf(v float64) int {
	m := int(v)
	if v < 0 && float64(m) != v {
		m--
	}
	return m
}
