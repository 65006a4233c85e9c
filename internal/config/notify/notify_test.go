package notify

import "testing"

func TestChangeTypeString(t *testing.T) {
	tests := []struct {
		c    ChangeType
		want string
	}{
		{ChangeSet, "set"},
		{ChangeReload, "reload"},
		{ChangeType(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNotifier_PathMatching(t *testing.T) {
	n := New()

	var all, editor, divisor, signature int
	n.Subscribe(func(Change) { all++ })
	n.SubscribePath("editor", func(Change) { editor++ })
	n.SubscribePath("editor.grid_divisor", func(Change) { divisor++ })
	n.SubscribePath("signature", func(Change) { signature++ })

	n.Notify(Change{Path: "editor.grid_divisor", Type: ChangeSet})
	n.Notify(Change{Path: "editor.snap_to_grid", Type: ChangeSet})
	n.Notify(Change{Path: "editorial.x", Type: ChangeSet})

	if all != 3 || editor != 2 || divisor != 1 || signature != 0 {
		t.Errorf("counts = all %d editor %d divisor %d signature %d", all, editor, divisor, signature)
	}

	n.Notify(Change{Type: ChangeReload})
	if all != 4 || editor != 3 || divisor != 2 || signature != 1 {
		t.Error("reload should reach every observer")
	}
}

func TestNotifier_Order(t *testing.T) {
	n := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		n.Subscribe(func(Change) { order = append(order, i) })
	}

	n.Notify(Change{Path: "x"})
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want subscription order", order)
		}
	}
}

func TestSubscription_Unsubscribe(t *testing.T) {
	n := New()
	var called int
	sub := n.Subscribe(func(Change) { called++ })

	sub.Unsubscribe()
	sub.Unsubscribe()
	n.Notify(Change{Path: "x"})

	if called != 0 {
		t.Error("unsubscribed observer was called")
	}
	if n.Len() != 0 {
		t.Errorf("Len() = %d, want 0", n.Len())
	}
}
