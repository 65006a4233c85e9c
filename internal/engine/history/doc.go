// Package history provides linear undo/redo for a timeline.
//
// The history keeps a stack of snapshots with a cursor. Each snapshot is a
// deep copy of the timeline's points and segments, tagged with the target
// of the edit that produced it:
//
//	h := history.New(tl, 1000)
//	h.Attach()
//
//	tl.ProposeOffset(1, 4) // recorded
//	h.Undo()               // timeline restored to the previous snapshot
//	h.Redo()
//
// # Coalescing
//
// Consecutive edits with the same non-nil target overwrite the top
// snapshot instead of pushing a new one, so dragging a point produces a
// single undo step. Edits that leave the state unchanged record nothing.
//
// # Grouping
//
// Several edits can be recorded as one step:
//
//	h.Transaction(func() error {
//	    tl.ProposeOffset(1, 4)
//	    return tl.SetTimeSignature(sig, 2)
//	})
package history
