package timeline

// slope returns the tempo implied by the anchors of points i and i+1.
func (t *Timeline) slope(i int) float64 {
	p, next := t.points[i], t.points[i+1]
	return (next.Pos() - p.Pos()) / (next.Offset - p.Offset)
}

// continued returns the tempo that carries the beat rate of point i-1
// across a possible time signature change at point i.
func (t *Timeline) continued(i int) float64 {
	prev, p := t.points[i-1], t.points[i]
	return prev.MPS * p.TimeSignature.CorrectionFrom(prev.TimeSignature)
}

// setTrustedMPS writes a tempo computed by the cascade, bypassing
// validation.
func (t *Timeline) setTrustedMPS(i int, mps float64) {
	p := &t.points[i]
	was := p.IsBeingUpdated()
	p.SetBeingUpdated(true)
	p.MPS = mps
	p.SetBeingUpdated(was)
}

// computeMPS recomputes the tempo of point i.
//
// A point with a successor takes the slope to it. The last point keeps its
// free tempo unless reconcileSignature is set, in which case it continues
// the beat rate of its predecessor. A lone point is left unchanged.
func (t *Timeline) computeMPS(i int, reconcileSignature bool) {
	switch {
	case i+1 < len(t.points):
		t.setTrustedMPS(i, t.slope(i))
	case i > 0 && reconcileSignature:
		t.setTrustedMPS(i, t.continued(i))
	}
}

// updateAdjacentTempo runs the cascade after an accepted change to point i:
// the predecessor's forward tempo, the point's own forward tempo, and the
// last point's continued tempo unless it was pinned.
func (t *Timeline) updateAdjacentTempo(i int, reconcileSignature bool) {
	if i > 0 {
		t.computeMPS(i-1, false)
	}
	switch {
	case i+1 < len(t.points):
		t.computeMPS(i, false)
	case i > 0 && (reconcileSignature || !t.points[i].TempoPinned):
		t.computeMPS(i, true)
	}
}

// recomputeAll rewrites every derived tempo. The last point is reconciled
// with its predecessor only when reconcileSignature is set.
func (t *Timeline) recomputeAll(reconcileSignature bool) {
	for i := range t.points {
		t.computeMPS(i, reconcileSignature)
	}
}
