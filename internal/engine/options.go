package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/audio"
	"github.com/dshills/tempomap/internal/engine/history"
	"github.com/dshills/tempomap/internal/engine/timeline"
	"github.com/dshills/tempomap/internal/project/vfs"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = history.DefaultMaxEntries
)

// Option configures a Context during creation.
type Option func(*Context)

// WithLogger sets the logger shared by every component.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Context) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries. It
// takes precedence over a limit read from the preferences.
func WithMaxUndoEntries(max int) Option {
	return func(c *Context) {
		if max > 0 {
			c.maxUndoEntries = max
			c.maxUndoFixed = true
		}
	}
}

// WithTolerances overrides the timeline's acceptance thresholds. It has no
// effect when the preferences carry their own thresholds.
func WithTolerances(tol timeline.Tolerances) Option {
	return func(c *Context) {
		c.tolerances = tol
	}
}

// WithAudio attaches the audio source.
func WithAudio(src audio.Source) Option {
	return func(c *Context) {
		c.audio = src
	}
}

// WithAudioPath sets the audio path written when the project is saved.
func WithAudioPath(path string) Option {
	return func(c *Context) {
		c.audioPath = path
	}
}

// WithFS sets the file system projects are read from and written to.
func WithFS(fsys vfs.FS) Option {
	return func(c *Context) {
		if fsys != nil {
			c.fs = fsys
		}
	}
}
