package config

import (
	"github.com/dshills/tempomap/internal/config/watcher"
)

// WatchFile reloads path into store whenever the file is written or
// created. Environment overrides are re-applied on every reload. Invalid
// files are logged and leave the store unchanged. Stop the returned
// watcher to end live reload.
func WatchFile(store *Store, path string, opts ...watcher.Option) (*watcher.Watcher, error) {
	w, err := watcher.New(opts...)
	if err != nil {
		return nil, err
	}

	w.OnChange(func(ev watcher.Event) {
		// The file moved away or was deleted; keep the current settings.
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			return
		}
		store.reload(ev.Path)
	})

	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return w, nil
}

// reload loads path and applies it.
func (s *Store) reload(path string) {
	next, err := Load(path)
	if err != nil {
		s.log.WithError(err).WithField("path", path).Warn("ignoring invalid preferences")
		return
	}
	if err := s.Update(next, path); err != nil {
		s.log.WithError(err).WithField("path", path).Warn("ignoring invalid preferences")
	}
}
