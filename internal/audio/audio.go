// Package audio describes the audio collaborator the tempo timeline reads
// from. Decoding and playback live elsewhere; the timeline only needs the
// sample rate and the length of the recording.
package audio

import "errors"

// Errors returned by audio probing.
var (
	// ErrNotWAV indicates the data is not a RIFF/WAVE stream.
	ErrNotWAV = errors.New("not a RIFF/WAVE stream")

	// ErrUnsupportedFormat indicates a WAVE stream this package cannot size.
	ErrUnsupportedFormat = errors.New("unsupported WAVE format")
)

// Source is an audio recording as seen by the timeline.
type Source interface {
	// SampleRate returns the number of samples per second.
	SampleRate() int

	// LengthInSeconds returns the duration of the recording.
	LengthInSeconds() float64
}

// Fixed is a Source with known properties.
type Fixed struct {
	Rate   int
	Length float64
}

// SampleRate implements Source.
func (f Fixed) SampleRate() int { return f.Rate }

// LengthInSeconds implements Source.
func (f Fixed) LengthInSeconds() float64 { return f.Length }
