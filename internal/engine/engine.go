package engine

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/audio"
	"github.com/dshills/tempomap/internal/engine/history"
	"github.com/dshills/tempomap/internal/engine/notify"
	"github.com/dshills/tempomap/internal/engine/selection"
	"github.com/dshills/tempomap/internal/engine/timeline"
	"github.com/dshills/tempomap/internal/export/midi"
	"github.com/dshills/tempomap/internal/project"
	"github.com/dshills/tempomap/internal/project/vfs"
)

// Context is one tempo map editing session.
type Context struct {
	tl        *timeline.Timeline
	prefs     timeline.Preferences
	notifier  *notify.Notifier
	selection *selection.Manager
	history   *history.History
	log       logrus.FieldLogger

	// Persistence
	fs          vfs.FS
	projectPath string
	audioPath   string
	audio       audio.Source

	// Configuration
	maxUndoEntries int
	maxUndoFixed   bool
	tolerances     timeline.Tolerances
}

// undoLimiter is implemented by preferences that carry the undo limit,
// such as a config.Store.
type undoLimiter interface {
	MaxUndoEntries() int
}

// New creates an empty session reading prefs. A nil prefs selects
// timeline.DefaultPreferences. Preferences that also carry tolerances or an
// undo limit, like a config.Store, are read live, so a session follows
// settings reloaded while it runs.
func New(prefs timeline.Preferences, opts ...Option) *Context {
	if prefs == nil {
		prefs = timeline.DefaultPreferences()
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Context{
		prefs:          prefs,
		notifier:       notify.New(),
		log:            discard,
		fs:             vfs.NewOSFS(),
		maxUndoEntries: DefaultMaxUndoEntries,
		tolerances:     timeline.DefaultTolerances(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.tl = timeline.New(
		timeline.WithPreferences(c.prefs),
		timeline.WithNotifier(c.notifier),
		timeline.WithLogger(c.log.WithField("component", "timeline")),
		timeline.WithTolerances(c.tolerances),
	)
	c.selection = selection.New(c.tl,
		selection.WithLogger(c.log.WithField("component", "selection")))
	histOpts := []history.Option{history.WithLogger(c.log.WithField("component", "history"))}
	if l, ok := c.prefs.(undoLimiter); ok && !c.maxUndoFixed {
		c.maxUndoEntries = l.MaxUndoEntries()
		histOpts = append(histOpts, history.WithLimit(l.MaxUndoEntries))
	}
	c.history = history.New(c.tl, c.maxUndoEntries, histOpts...)
	c.history.Attach()

	return c
}

// Open creates a session from the project file at path. The loaded state
// becomes the base of the undo history. WAV audio is probed for its
// length; other formats leave the audio source unset unless WithAudio
// supplies one.
func Open(path string, prefs timeline.Preferences, opts ...Option) (*Context, error) {
	c := New(prefs, opts...)

	p, err := project.Load(c.fs, path)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(c.tl); err != nil {
		return nil, fmt.Errorf("applying %s: %w", path, err)
	}
	c.history.Clear()

	c.projectPath = path
	c.audioPath = p.AudioPath

	for _, skipped := range p.Skipped {
		c.log.WithFields(logrus.Fields{
			"path":    path,
			"line":    skipped.Line,
			"section": skipped.Section,
		}).WithError(skipped.Err).Warn("skipped project line")
	}

	if c.audio == nil {
		c.audio = c.probeAudio(p.ResolveAudio(path))
	}

	c.log.WithFields(logrus.Fields{
		"path":   path,
		"points": c.tl.Len(),
	}).Info("project opened")
	return c, nil
}

// probeAudio returns the audio source for a WAV file, or nil.
func (c *Context) probeAudio(path string) audio.Source {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return nil
	}
	data, err := c.fs.ReadFile(path)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Warn("reading audio")
		return nil
	}
	info, err := audio.ProbeWAV(bytes.NewReader(data))
	if err != nil {
		c.log.WithError(err).WithField("path", path).Warn("probing audio")
		return nil
	}
	return info
}

// Close detaches the selection and history from the timeline.
func (c *Context) Close() {
	c.selection.Close()
	c.history.Detach()
}

// Timeline returns the session's timeline.
func (c *Context) Timeline() *timeline.Timeline {
	return c.tl
}

// Selection returns the session's selection manager.
func (c *Context) Selection() *selection.Manager {
	return c.selection
}

// History returns the session's undo history.
func (c *Context) History() *history.History {
	return c.history
}

// Notifier returns the notifier shared by the timeline and selection.
func (c *Context) Notifier() *notify.Notifier {
	return c.notifier
}

// Preferences returns the preferences the session reads.
func (c *Context) Preferences() timeline.Preferences {
	return c.prefs
}

// Undo reverts the last recorded change.
func (c *Context) Undo() error {
	return c.history.Undo()
}

// Redo re-applies the last undone change.
func (c *Context) Redo() error {
	return c.history.Redo()
}

// AudioPath returns the audio path as written in the project.
func (c *Context) AudioPath() string {
	return c.audioPath
}

// ProjectPath returns the path the session was opened from or last saved
// to, or "" for a new session.
func (c *Context) ProjectPath() string {
	return c.projectPath
}

// Audio returns the attached audio source, or nil.
func (c *Context) Audio() audio.Source {
	return c.audio
}

// LastMeasure returns the measure containing the end of the audio.
func (c *Context) LastMeasure() (int, error) {
	if c.audio == nil {
		return 0, ErrNoAudio
	}
	return c.tl.LastMeasure(c.audio), nil
}

// Project returns the persisted form of the current state.
func (c *Context) Project() *project.Project {
	return project.FromTimeline(c.tl, c.audioPath)
}

// Save writes the project file form of the current state to w.
func (c *Context) Save(w io.Writer) error {
	_, err := c.Project().WriteTo(w)
	return err
}

// SaveAs writes the project to path and makes it the session's path.
func (c *Context) SaveAs(path string) error {
	if path == "" {
		return ErrNoProjectPath
	}
	if err := project.Save(c.fs, path, c.Project()); err != nil {
		return err
	}
	c.projectPath = path
	c.log.WithField("path", path).Info("project saved")
	return nil
}

// SaveFile writes the project back to its own path.
func (c *Context) SaveFile() error {
	return c.SaveAs(c.projectPath)
}

// Document returns a readable summary of the current state.
func (c *Context) Document() project.Document {
	return project.NewDocument(c.tl, c.audioPath)
}

// ExportMIDI writes the tempo map as a Standard MIDI File.
func (c *Context) ExportMIDI(w io.Writer) (int64, error) {
	return midi.Export(w, c.tl, midi.Options{TrackName: "Tempo"})
}
