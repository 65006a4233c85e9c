// Package notify provides change notification for the tempo timeline.
//
// The notify package implements an observer pattern over a closed set of
// notification kinds. Renderers, the selection manager and the history
// store subscribe to it; the timeline publishes to it.
//
// Delivery is synchronous on the publishing goroutine, in subscription
// order, and observers are invoked outside the notifier's lock so they may
// call back into the timeline.
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Kind is the kind of a notification.
type Kind int

const (
	// TimingChanged indicates an accepted change was finalized.
	TimingChanged Kind = iota

	// PointCountChanged indicates points were added or removed.
	PointCountChanged

	// PositionChangeRejected indicates a music position edit was refused
	// because a neighbor blocks it.
	PositionChangeRejected

	// SelectionChanged indicates the selection range was committed or cleared.
	SelectionChanged
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case TimingChanged:
		return "timing-changed"
	case PointCountChanged:
		return "point-count-changed"
	case PositionChangeRejected:
		return "position-change-rejected"
	case SelectionChanged:
		return "selection-changed"
	default:
		return "unknown"
	}
}

// Event is a single notification.
type Event struct {
	Kind Kind

	// Target identifies what was being edited: a point ID or a selection
	// range ID. uuid.Nil when the change has no single target.
	Target uuid.UUID

	// Index is the index of the edited point, or -1.
	Index int

	// Blocking is the index of the neighbor that blocked a rejected
	// position change, or -1.
	Blocking int
}

// Observer is called when a notification is published.
type Observer func(ev Event)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
		s.notifier = nil
	}
}

type entry struct {
	id       uint64
	kind     Kind
	anyKind  bool
	observer Observer
}

// Notifier manages subscriptions and delivers events.
type Notifier struct {
	mu      sync.RWMutex
	entries []entry
	nextID  uint64
	muted   int
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers an observer for all kinds.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.add(entry{anyKind: true, observer: observer})
}

// SubscribeKind registers an observer for one kind.
func (n *Notifier) SubscribeKind(kind Kind, observer Observer) *Subscription {
	return n.add(entry{kind: kind, observer: observer})
}

func (n *Notifier) add(e entry) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	e.id = n.nextID
	n.nextID++
	n.entries = append(n.entries, e)

	return &Subscription{id: e.id, notifier: n}
}

// Publish delivers an event to every matching observer.
func (n *Notifier) Publish(ev Event) {
	n.mu.RLock()
	if n.muted > 0 {
		n.mu.RUnlock()
		return
	}
	var observers []Observer
	for _, e := range n.entries {
		if e.anyKind || e.kind == ev.Kind {
			observers = append(observers, e.observer)
		}
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(ev)
	}
}

// Mute suppresses delivery until the matching Unmute. Calls nest.
func (n *Notifier) Mute() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.muted++
}

// Unmute re-enables delivery after Mute.
func (n *Notifier) Unmute() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.muted > 0 {
		n.muted--
	}
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.entries)
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, e := range n.entries {
		if e.id == id {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return
		}
	}
}

// Batch collects events and delivers them once, collapsing duplicates of
// the same kind and target into a single event.
type Batch struct {
	notifier *Notifier
	events   []Event
}

// NewBatch creates a new batch for collecting events.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Add adds an event to the batch. An event with the same kind and target
// as a pending one replaces it.
func (b *Batch) Add(ev Event) {
	for i, pending := range b.events {
		if pending.Kind == ev.Kind && pending.Target == ev.Target {
			b.events[i] = ev
			return
		}
	}
	b.events = append(b.events, ev)
}

// Commit publishes all batched events in the order they were first added.
func (b *Batch) Commit() {
	events := b.events
	b.events = nil
	for _, ev := range events {
		b.notifier.Publish(ev)
	}
}

// Discard clears the batch without publishing.
func (b *Batch) Discard() {
	b.events = nil
}

// Len returns the number of pending events.
func (b *Batch) Len() int {
	return len(b.events)
}
