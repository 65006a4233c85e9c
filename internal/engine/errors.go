package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrNoAudio indicates an operation needs the audio source but none
	// is attached.
	ErrNoAudio = errors.New("no audio source")

	// ErrNoProjectPath indicates a save without a destination.
	ErrNoProjectPath = errors.New("no project path")
)
