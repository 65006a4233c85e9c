// Package config provides the tempomap preferences.
//
// Settings are layered: built-in defaults, then a TOML file, then
// TEMPOMAP_* environment variables. A Store holds the active settings,
// implements timeline.Preferences and notifies observers when values
// change. WatchFile keeps a Store in sync with its file on disk.
//
// # File Format
//
//	[editor]
//	grid_divisor = 4
//	snap_to_grid = true
//	round_bpm = false
//
//	[signature]
//	preserve_bpm = false
//	move_subsequent_points = false
//
//	[tolerance]
//	inferred_point_threshold = 0.015
//	bpm = 0.0001
//	round_bpm = 0.1
//
//	[history]
//	max_entries = 1000
//
//	[logging]
//	level = "info"
//
// # Environment
//
// TEMPOMAP_<SECTION>_<KEY> overrides any setting, for example
// TEMPOMAP_EDITOR_GRID_DIVISOR=8. Short aliases exist for common ones:
// TEMPOMAP_LOG_LEVEL, TEMPOMAP_GRID_DIVISOR, TEMPOMAP_SNAP,
// TEMPOMAP_ROUND_BPM and TEMPOMAP_MAX_UNDO.
package config
