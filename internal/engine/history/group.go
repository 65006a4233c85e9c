package history

import "github.com/google/uuid"

// BeginGroup starts a group. Edits recorded until the matching EndGroup
// become a single undo step. Groups nest; only the outermost records.
func (h *History) BeginGroup() {
	if h.grouping == 0 {
		h.groupTarget = uuid.Nil
		h.groupDirty = false
	}
	h.grouping++
}

// EndGroup finishes a group and records it if anything changed.
func (h *History) EndGroup() {
	if h.grouping == 0 {
		return
	}
	h.grouping--
	if h.grouping > 0 || !h.groupDirty {
		return
	}
	h.groupDirty = false
	// A group is its own step; it never coalesces with what came before.
	h.lastTarget = uuid.Nil
	h.record(h.groupTarget)
	h.lastTarget = uuid.Nil
}

// CancelGroup ends a group and restores the state the group started from.
func (h *History) CancelGroup() error {
	if h.grouping == 0 {
		return nil
	}
	h.grouping = 0
	h.groupDirty = false
	return h.restore(h.cursor)
}

// IsGrouping returns true if a group is open.
func (h *History) IsGrouping() bool {
	return h.grouping > 0
}

// GroupScope provides a convenient way to group edits using defer:
//
//	defer h.GroupScope().End()
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
func (h *History) GroupScope() *GroupScope {
	h.BeginGroup()
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Transaction runs fn as one undo step. If fn returns an error the
// timeline is rolled back to where the transaction started.
func (h *History) Transaction(fn func() error) error {
	h.BeginGroup()

	if err := fn(); err != nil {
		if rerr := h.CancelGroup(); rerr != nil {
			return rerr
		}
		return err
	}

	h.EndGroup()
	return nil
}
