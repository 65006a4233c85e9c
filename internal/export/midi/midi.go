// Package midi exports a timeline as a Standard MIDI File tempo map.
//
// Tick zero is music position zero, so bar lines in a sequencer line up
// with the timeline's measures. The audio offset of measure zero is
// reported separately as the lead-in. Tempo events are written at every
// timing point and at every time signature change, since the quarter note
// rate changes with the measure length even when the measure rate does not.
package midi

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/dshills/tempomap/internal/engine/point"
	"github.com/dshills/tempomap/internal/engine/timeline"
)

// DefaultTicksPerQuarter is the file resolution used unless overridden.
const DefaultTicksPerQuarter = 960

// ErrTickOverflow indicates a position too far from the origin to be
// addressed in ticks.
var ErrTickOverflow = errors.New("position exceeds the MIDI tick range")

// ErrUnsupportedSignature indicates a numerator too large for a MIDI meter
// event.
var ErrUnsupportedSignature = errors.New("time signature not representable in MIDI")

// Kind distinguishes tempo map events.
type Kind int

const (
	// KindMeter is a time signature change.
	KindMeter Kind = iota
	// KindTempo is a tempo change.
	KindTempo
)

// Event is one entry of the tempo map.
type Event struct {
	Tick      uint32
	Kind      Kind
	BPM       float64
	Signature point.TimeSignature
}

// Options configure an export.
type Options struct {
	TicksPerQuarter uint16
	TrackName       string
}

// Plan computes the tempo map of tl in tick order. Meter events precede
// tempo events at the same tick.
func Plan(tl *timeline.Timeline, ticksPerQuarter uint16) ([]Event, error) {
	if ticksPerQuarter == 0 {
		ticksPerQuarter = DefaultTicksPerQuarter
	}

	tickAt := func(pos float64) (uint32, error) {
		qn, err := tl.QuarterNotesBetween(0, pos)
		if err != nil {
			return 0, err
		}
		ticks := math.Round(qn * float64(ticksPerQuarter))
		if ticks < 0 || ticks > math.MaxUint32 {
			return 0, fmt.Errorf("%w: %g measures", ErrTickOverflow, pos)
		}
		return uint32(ticks), nil
	}

	// Positions at which the quarter note tempo may change.
	marks := map[float64]bool{0: true}
	for _, seg := range tl.Segments() {
		if seg.Measure > 0 {
			marks[float64(seg.Measure)] = true
		}
	}
	for _, p := range tl.Points() {
		if pos := p.Pos(); pos > 0 {
			marks[pos] = true
		}
	}
	positions := make([]float64, 0, len(marks))
	for pos := range marks {
		positions = append(positions, pos)
	}
	sort.Float64s(positions)

	var events []Event
	meter := point.TimeSignature{}
	bpm := math.NaN()
	for _, pos := range positions {
		tick, err := tickAt(pos)
		if err != nil {
			return nil, err
		}

		ts := tl.TimeSignatureAt(point.MeasureOf(pos))
		if pos == math.Trunc(pos) && ts != meter {
			if ts.Num > math.MaxUint8 {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedSignature, ts)
			}
			events = append(events, Event{Tick: tick, Kind: KindMeter, Signature: ts})
			meter = ts
		}

		mps := timeline.DefaultMPS
		if p, _, ok := tl.OperatingPointAtPosition(pos); ok {
			mps = p.MPS
		}
		if b := point.BPMFromMPS(mps, ts); b != bpm {
			events = append(events, Event{Tick: tick, Kind: KindTempo, BPM: b})
			bpm = b
		}
	}
	return events, nil
}

// Build converts tl into a single-track SMF holding only the tempo map.
func Build(tl *timeline.Timeline, opts Options) (*smf.SMF, error) {
	if opts.TicksPerQuarter == 0 {
		opts.TicksPerQuarter = DefaultTicksPerQuarter
	}

	events, err := Plan(tl, opts.TicksPerQuarter)
	if err != nil {
		return nil, err
	}

	var track smf.Track
	if opts.TrackName != "" {
		track.Add(0, smf.MetaTrackSequenceName(opts.TrackName))
	}

	var last uint32
	for _, ev := range events {
		delta := ev.Tick - last
		last = ev.Tick
		switch ev.Kind {
		case KindMeter:
			track.Add(delta, meterMessage(ev.Signature))
		case KindTempo:
			track.Add(delta, smf.MetaTempo(ev.BPM))
		}
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.TicksPerQuarter)
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("adding tempo track: %w", err)
	}
	return s, nil
}

// meterMessage encodes ts with one metronome click per beat.
func meterMessage(ts point.TimeSignature) smf.Message {
	clocksPerClick := uint8(96 / ts.Denom)
	return smf.MetaTimeSig(uint8(ts.Num), uint8(ts.Denom), clocksPerClick, 8)
}

// Export writes the tempo map of tl to w as a Standard MIDI File.
func Export(w io.Writer, tl *timeline.Timeline, opts Options) (int64, error) {
	s, err := Build(tl, opts)
	if err != nil {
		return 0, err
	}
	return s.WriteTo(w)
}

// LeadIn returns the audio time in seconds at which tick zero plays.
func LeadIn(tl *timeline.Timeline) float64 {
	return tl.PositionToTime(0)
}
