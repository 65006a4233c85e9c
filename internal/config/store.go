package config

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/config/notify"
	"github.com/dshills/tempomap/internal/engine/timeline"
)

var _ timeline.TolerancePreferences = (*Store)(nil)

// Store holds the active settings. It is safe for concurrent use: the
// file watcher swaps settings from its own goroutine while the timeline
// reads them.
type Store struct {
	mu       sync.RWMutex
	settings Settings

	notifier *notify.Notifier
	log      logrus.FieldLogger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store's logger.
func WithLogger(log logrus.FieldLogger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore creates a store holding settings.
func NewStore(settings Settings, opts ...StoreOption) *Store {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Store{
		settings: settings,
		notifier: notify.New(),
		log:      discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns a copy of the active settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Notifier returns the notifier that reports setting changes.
func (s *Store) Notifier() *notify.Notifier {
	return s.notifier
}

// Update validates next and makes it active. Observers receive one
// ChangeSet per changed path, after the lock is released.
func (s *Store) Update(next Settings, source string) error {
	if err := next.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	prev := s.settings
	s.settings = next
	s.mu.Unlock()

	for _, path := range prev.Diff(next) {
		oldValue, _ := prev.Lookup(path)
		newValue, _ := next.Lookup(path)
		s.log.WithFields(logrus.Fields{
			"setting": path,
			"value":   newValue,
			"source":  source,
		}).Info("setting changed")
		s.notifier.Notify(notify.Change{
			Path:     path,
			Type:     notify.ChangeSet,
			OldValue: oldValue,
			NewValue: newValue,
			Source:   source,
		})
	}
	return nil
}

// GridDivisor implements timeline.Preferences.
func (s *Store) GridDivisor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Editor.GridDivisor
}

// SnapToGrid implements timeline.Preferences.
func (s *Store) SnapToGrid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Editor.SnapToGrid
}

// PreserveBPMOnTimeSignatureChange implements timeline.Preferences.
func (s *Store) PreserveBPMOnTimeSignatureChange() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Signature.PreserveBPM
}

// MoveSubsequentPointsOnTimeSignatureChange implements timeline.Preferences.
func (s *Store) MoveSubsequentPointsOnTimeSignatureChange() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Signature.MoveSubsequentPoints
}

// RoundBPM implements timeline.Preferences.
func (s *Store) RoundBPM() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Editor.RoundBPM
}

// Tolerances implements timeline.TolerancePreferences.
func (s *Store) Tolerances() timeline.Tolerances {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Tolerances()
}

// MaxUndoEntries returns the undo history limit.
func (s *Store) MaxUndoEntries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.History.MaxEntries
}
