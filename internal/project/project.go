package project

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dshills/tempomap/internal/engine/point"
	"github.com/dshills/tempomap/internal/engine/timeline"
	"github.com/dshills/tempomap/internal/project/vfs"
)

// Extension is the conventional project file extension.
const Extension = ".tmap"

// Project is the persisted form of a timeline.
type Project struct {
	// AudioPath is the audio file path as written, usually relative to
	// the project file.
	AudioPath string

	// Segments are the time signature breakpoints in file order.
	Segments []timeline.Segment

	// Points are the timing points in order.
	Points []Line

	// Skipped lists the lines dropped while parsing.
	Skipped []*LineError
}

// Line is one persisted timing point.
type Line struct {
	Offset        float64
	Position      float64
	TimeSignature point.TimeSignature

	// MPS is the free tempo of the last point. It is written only for
	// the last line and ignored on every other one.
	MPS    float64
	HasMPS bool
}

// FromTimeline captures the state of tl for saving.
//
// The last line carries a tempo only when loading the file again would not
// reproduce it: the tempo was set explicitly, or it differs from the one
// the last point takes over from its predecessor.
func FromTimeline(tl *timeline.Timeline, audioPath string) *Project {
	p := &Project{
		AudioPath: audioPath,
		Segments:  tl.Segments(),
	}

	points := tl.Points()
	p.Points = make([]Line, len(points))
	for i, tp := range points {
		p.Points[i] = Line{
			Offset:        tp.Offset,
			Position:      tp.Pos(),
			TimeSignature: tp.TimeSignature,
		}
	}
	if n := len(points); n > 0 {
		last := points[n-1]
		p.Points[n-1].MPS = last.MPS
		p.Points[n-1].HasMPS = last.TempoPinned || last.MPS != derivedTempo(points)
	}
	return p
}

// derivedTempo returns the tempo a reload gives an unpinned last point.
func derivedTempo(points []point.TimingPoint) float64 {
	n := len(points)
	last := points[n-1]
	if n == 1 {
		return point.MPSFromBPM(point.DefaultBPM, last.TimeSignature)
	}
	prev := points[n-2]
	return prev.MPS * last.TimeSignature.CorrectionFrom(prev.TimeSignature)
}

// Apply replaces the contents of tl with the project.
//
// Points are loaded in instantiating mode so the load raises a single
// structural notification. Segments are stored as written. The trailing
// tempo is re-attached to the last point, which keeps it pinned.
func (p *Project) Apply(tl *timeline.Timeline) error {
	return tl.Instantiate(func() error {
		tl.Clear()

		for _, seg := range p.Segments {
			if err := tl.PutSegment(seg); err != nil {
				return fmt.Errorf("segment at measure %d: %w", seg.Measure, err)
			}
		}

		for i, line := range p.Points {
			tp := point.New(line.Offset, point.Anchored(line.Position), line.TimeSignature)
			// Loaded points were not placed by hand.
			tp.CreatedAt = time.Time{}
			if _, ok := tl.AddPoint(tp); !ok {
				return fmt.Errorf("timing point %d at %gs: %w", i, line.Offset, ErrOutOfOrder)
			}
		}

		if n := len(p.Points); n > 0 && p.Points[n-1].HasMPS {
			tl.ProposeMPS(n-1, p.Points[n-1].MPS)
		}
		return nil
	})
}

// ResolveAudio returns the audio path resolved against the directory of
// the project file at projectPath.
func (p *Project) ResolveAudio(projectPath string) string {
	if filepath.IsAbs(p.AudioPath) {
		return filepath.Clean(p.AudioPath)
	}
	return filepath.Join(filepath.Dir(projectPath), p.AudioPath)
}

// Load reads and parses the project file at path and checks that its
// audio file exists.
func Load(fsys vfs.FS, path string) (*Project, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	audio := p.ResolveAudio(path)
	if !vfs.IsRegular(fsys, audio) {
		return nil, fmt.Errorf("%w: %s", ErrAudioNotFound, audio)
	}
	return p, nil
}

// Save encodes p and writes it to path.
func Save(fsys vfs.FS, path string, p *Project) error {
	if err := fsys.WriteFile(path, p.Encode(), 0o644); err != nil {
		return fmt.Errorf("writing project: %w", err)
	}
	return nil
}
