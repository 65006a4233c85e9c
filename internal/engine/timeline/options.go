package timeline

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/engine/notify"
)

// Default configuration values.
const (
	// DefaultMPS is the tempo used when the timeline has no points:
	// 120 BPM in 4/4, anchored at the origin.
	DefaultMPS = 0.5

	// DefaultInferredPointThreshold is the minimum distance in measures
	// between an inferred point and its neighbors.
	DefaultInferredPointThreshold = 0.015

	// DefaultBPMTolerance is how far a proposed BPM may differ from the
	// value implied by the next point.
	DefaultBPMTolerance = 0.0001

	// DefaultRoundBPMTolerance replaces DefaultBPMTolerance while BPM
	// values are displayed rounded.
	DefaultRoundBPMTolerance = 0.1

	// MaxMeasureWalk caps the number of measures the beat integrator may
	// cross in one call.
	MaxMeasureWalk = 1_000_000
)

// DefaultPlacementWindow is how long after placement a point counts as
// still being dragged into place.
const DefaultPlacementWindow = 250 * time.Millisecond

// Tolerances holds the empirically chosen acceptance thresholds.
type Tolerances struct {
	InferredPointThreshold float64
	BPM                    float64
	RoundBPM               float64
}

// DefaultTolerances returns the default thresholds.
func DefaultTolerances() Tolerances {
	return Tolerances{
		InferredPointThreshold: DefaultInferredPointThreshold,
		BPM:                    DefaultBPMTolerance,
		RoundBPM:               DefaultRoundBPMTolerance,
	}
}

// Preferences are the user settings the timeline reads while validating
// and snapping. Implementations may change values between calls.
type Preferences interface {
	GridDivisor() int
	SnapToGrid() bool
	PreserveBPMOnTimeSignatureChange() bool
	MoveSubsequentPointsOnTimeSignatureChange() bool
	RoundBPM() bool
}

// TolerancePreferences is implemented by preferences that also carry the
// acceptance thresholds. The timeline then reads them on every validation
// and WithTolerances has no effect.
type TolerancePreferences interface {
	Preferences
	Tolerances() Tolerances
}

// StaticPreferences is a fixed Preferences value.
type StaticPreferences struct {
	Divisor              int
	Snap                 bool
	PreserveBPM          bool
	MoveSubsequentPoints bool
	RoundBPMDisplay      bool
}

// DefaultPreferences returns quarter-note snapping with every optional
// behavior turned off.
func DefaultPreferences() StaticPreferences {
	return StaticPreferences{Divisor: 4, Snap: true}
}

// GridDivisor implements Preferences.
func (p StaticPreferences) GridDivisor() int { return p.Divisor }

// SnapToGrid implements Preferences.
func (p StaticPreferences) SnapToGrid() bool { return p.Snap }

// PreserveBPMOnTimeSignatureChange implements Preferences.
func (p StaticPreferences) PreserveBPMOnTimeSignatureChange() bool { return p.PreserveBPM }

// MoveSubsequentPointsOnTimeSignatureChange implements Preferences.
func (p StaticPreferences) MoveSubsequentPointsOnTimeSignatureChange() bool {
	return p.MoveSubsequentPoints
}

// RoundBPM implements Preferences.
func (p StaticPreferences) RoundBPM() bool { return p.RoundBPMDisplay }

// Option configures a Timeline during creation.
type Option func(*Timeline)

// WithPreferences sets the preferences read by validation and snapping.
func WithPreferences(prefs Preferences) Option {
	return func(t *Timeline) {
		if prefs != nil {
			t.prefs = prefs
		}
	}
}

// WithNotifier sets the notifier the timeline publishes to.
func WithNotifier(n *notify.Notifier) Option {
	return func(t *Timeline) {
		if n != nil {
			t.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(t *Timeline) {
		if log != nil {
			t.log = log
		}
	}
}

// WithTolerances overrides the acceptance thresholds.
// Zero fields keep their defaults.
func WithTolerances(tol Tolerances) Option {
	return func(t *Timeline) {
		if tol.InferredPointThreshold > 0 {
			t.tol.InferredPointThreshold = tol.InferredPointThreshold
		}
		if tol.BPM > 0 {
			t.tol.BPM = tol.BPM
		}
		if tol.RoundBPM > 0 {
			t.tol.RoundBPM = tol.RoundBPM
		}
	}
}

// WithPlacementWindow sets how long a new point is protected from a
// delete gesture. Negative values are ignored.
func WithPlacementWindow(d time.Duration) Option {
	return func(t *Timeline) {
		if d >= 0 {
			t.placement = d
		}
	}
}

// WithClock sets the clock used to stamp new points.
func WithClock(now func() time.Time) Option {
	return func(t *Timeline) {
		if now != nil {
			t.now = now
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
