package config

import (
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/dshills/tempomap/internal/engine/timeline"
)

// MaxGridDivisor is the finest snapping grid accepted.
const MaxGridDivisor = 64

// Settings is the complete set of user preferences.
type Settings struct {
	Editor    EditorSettings    `toml:"editor"`
	Signature SignatureSettings `toml:"signature"`
	Tolerance ToleranceSettings `toml:"tolerance"`
	History   HistorySettings   `toml:"history"`
	Logging   LoggingSettings   `toml:"logging"`
}

// EditorSettings control snapping and display.
type EditorSettings struct {
	GridDivisor int  `toml:"grid_divisor"`
	SnapToGrid  bool `toml:"snap_to_grid"`
	RoundBPM    bool `toml:"round_bpm"`
}

// SignatureSettings control time signature changes.
type SignatureSettings struct {
	PreserveBPM          bool `toml:"preserve_bpm"`
	MoveSubsequentPoints bool `toml:"move_subsequent_points"`
}

// ToleranceSettings are the acceptance thresholds of the timeline.
type ToleranceSettings struct {
	InferredPointThreshold float64 `toml:"inferred_point_threshold"`
	BPM                    float64 `toml:"bpm"`
	RoundBPM               float64 `toml:"round_bpm"`
}

// HistorySettings control undo.
type HistorySettings struct {
	MaxEntries int `toml:"max_entries"`
}

// LoggingSettings control log output.
type LoggingSettings struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Editor: EditorSettings{
			GridDivisor: 4,
			SnapToGrid:  true,
		},
		Tolerance: ToleranceSettings{
			InferredPointThreshold: timeline.DefaultInferredPointThreshold,
			BPM:                    timeline.DefaultBPMTolerance,
			RoundBPM:               timeline.DefaultRoundBPMTolerance,
		},
		History: HistorySettings{
			MaxEntries: 1000,
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

// Validate checks every setting and returns an error wrapping
// ErrInvalidSetting for the first one out of range.
func (s Settings) Validate() error {
	if s.Editor.GridDivisor < 1 || s.Editor.GridDivisor > MaxGridDivisor {
		return invalid("editor.grid_divisor", "must be between 1 and %d, got %d", MaxGridDivisor, s.Editor.GridDivisor)
	}
	if !(s.Tolerance.InferredPointThreshold > 0) {
		return invalid("tolerance.inferred_point_threshold", "must be positive, got %g", s.Tolerance.InferredPointThreshold)
	}
	if !(s.Tolerance.BPM > 0) {
		return invalid("tolerance.bpm", "must be positive, got %g", s.Tolerance.BPM)
	}
	if !(s.Tolerance.RoundBPM > 0) {
		return invalid("tolerance.round_bpm", "must be positive, got %g", s.Tolerance.RoundBPM)
	}
	if s.History.MaxEntries < 1 {
		return invalid("history.max_entries", "must be positive, got %d", s.History.MaxEntries)
	}
	if _, err := logrus.ParseLevel(s.Logging.Level); err != nil {
		return invalid("logging.level", "%v", err)
	}
	return nil
}

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidSetting, path, fmt.Sprintf(format, args...))
}

// Tolerances returns the timeline thresholds.
func (s Settings) Tolerances() timeline.Tolerances {
	return timeline.Tolerances{
		InferredPointThreshold: s.Tolerance.InferredPointThreshold,
		BPM:                    s.Tolerance.BPM,
		RoundBPM:               s.Tolerance.RoundBPM,
	}
}

// LogLevel returns the configured log level, or info if it is invalid.
func (s Settings) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(s.Logging.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Encode returns the settings as a TOML document.
func (s Settings) Encode() ([]byte, error) {
	return toml.Marshal(s)
}

// flatten returns the settings as dotted path -> value.
func (s Settings) flatten() (map[string]any, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	flat := make(map[string]any)
	for section, v := range tree {
		values, ok := v.(map[string]any)
		if !ok {
			flat[section] = v
			continue
		}
		for key, val := range values {
			flat[section+"."+key] = val
		}
	}
	return flat, nil
}

// Diff returns the dotted paths whose values differ between s and other,
// in sorted order.
func (s Settings) Diff(other Settings) []string {
	a, errA := s.flatten()
	b, errB := other.flatten()
	if errA != nil || errB != nil {
		return nil
	}

	var paths []string
	for path, va := range a {
		if vb, ok := b[path]; !ok || vb != va {
			paths = append(paths, path)
		}
	}
	for path := range b {
		if _, ok := a[path]; !ok {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Lookup returns the value at a dotted path such as "editor.grid_divisor".
func (s Settings) Lookup(path string) (any, bool) {
	flat, err := s.flatten()
	if err != nil {
		return nil, false
	}
	v, ok := flat[path]
	return v, ok
}
