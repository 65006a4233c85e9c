// Package notify delivers preference change notifications.
//
// Observers subscribe to every change or to a dotted path such as
// "editor" or "editor.grid_divisor". A path subscription also receives
// changes to the settings below it.
package notify

import (
	"sort"
	"strings"
	"sync"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeSet indicates a value was set or updated.
	ChangeSet ChangeType = iota

	// ChangeReload indicates the entire configuration was reloaded.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a configuration change event.
type Change struct {
	// Path is the dot-separated path to the changed setting.
	// Empty for reload events.
	Path string

	// Type is the type of change.
	Type ChangeType

	// OldValue is the previous value (may be nil).
	OldValue any

	// NewValue is the new value.
	NewValue any

	// Source identifies where the change came from, e.g. a file path.
	Source string
}

// Observer is called when configuration changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
		s.notifier = nil
	}
}

type entry struct {
	path     string
	observer Observer
}

// Notifier manages configuration change subscriptions. Delivery is
// synchronous, in subscription order, outside the notifier's lock.
type Notifier struct {
	mu      sync.RWMutex
	entries map[uint64]entry
	nextID  uint64
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{entries: make(map[uint64]entry)}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribePath("", observer)
}

// SubscribePath registers an observer for changes to path and its
// children. Reload events reach every observer.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.entries[id] = entry{path: path, observer: observer}

	return &Subscription{id: id, notifier: n}
}

// Notify sends a change notification to all relevant observers.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.entries))
	for id, e := range n.entries {
		if change.Type == ChangeReload || matches(e.path, change.Path) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.entries[id].observer
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
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
	delete(n.entries, id)
}

// matches reports whether a subscription to sub receives a change at path.
// e.g., "editor" receives "editor.grid_divisor".
func matches(sub, path string) bool {
	if sub == "" || sub == path {
		return true
	}
	return strings.HasPrefix(path, sub+".")
}
