package project

import (
	"errors"
	"fmt"
)

// Errors returned by the project package.
var (
	// ErrAudioNotFound indicates the project names no audio file or the
	// file it names does not exist.
	ErrAudioNotFound = errors.New("audio file not found")

	// ErrMalformedLine indicates a line that could not be parsed.
	ErrMalformedLine = errors.New("malformed line")

	// ErrOutOfOrder indicates a timing point that does not come strictly
	// after the previous one in both offset and position.
	ErrOutOfOrder = errors.New("timing point out of order")

	// ErrUnknownSection indicates a line outside of any known section.
	ErrUnknownSection = errors.New("line outside a known section")
)

// LineError describes a line skipped while parsing.
type LineError struct {
	Line    int    // 1-based line number
	Section string // Section the line appeared in, without brackets
	Text    string // Line content
	Err     error  // Why the line was skipped
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (%s): %q: %v", e.Line, e.Section, e.Text, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}
