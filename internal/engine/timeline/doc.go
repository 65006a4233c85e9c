// Package timeline provides the tempo timeline: an ordered set of timing
// points that anchor audio offsets to music positions, plus the time
// signature segments that divide the music into measures.
//
// # Mapping
//
// Between two points the mapping is linear. The operating point for a
// query is the last point at or before it (the first point when the query
// precedes every point):
//
//	pos  = op.pos + (sec - op.offset) * op.mps
//	sec  = op.offset + (pos - op.pos) / op.mps
//
// With no points the timeline runs at DefaultMPS from the origin.
//
// # Derived Tempo
//
// Every point except the last takes its tempo from the slope to the next
// point. Any accepted change to an offset, position or signature cascades
// to the neighbors before the change notification fires, so a single edit
// never leaves a neighboring segment out of sync.
//
// # Editing
//
// Point properties are never written directly. Callers propose a value:
//
//	tl := timeline.New()
//	a, _ := tl.AddAnchoredPoint(0, 0)
//	b, _ := tl.AddAnchoredPoint(2, 2)
//
//	tl.ProposeOffset(b, 4)   // accepted; point a now runs at 0.5 mps
//	tl.ProposePosition(a, 3) // rejected; b blocks it
//
// Rejections are silent apart from a PositionChangeRejected notification
// for position conflicts. They are never errors. Errors are reserved for
// integrity violations (ErrIntegrity), which abort the operation.
//
// # Time Signatures
//
// SetTimeSignature places a segment and can shift later points so their
// distance in beats is preserved:
//
//	prefs := timeline.StaticPreferences{MoveSubsequentPoints: true}
//	tl := timeline.New(timeline.WithPreferences(prefs))
//	tl.SetTimeSignature(point.NewTimeSignature(3, 4), 4)
//
// # Concurrency
//
// A Timeline is single-threaded. Re-entrancy from cascades and observers
// is handled with flags, not locks.
package timeline
