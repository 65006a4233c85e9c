package timeline

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Errors returned by timeline operations.
var (
	// ErrIndexOutOfRange indicates a point index outside the timeline.
	ErrIndexOutOfRange = errors.New("point index out of range")

	// ErrInvalidTimeSignature indicates a numerator of zero or a
	// denominator other than 4, 8 or 16.
	ErrInvalidTimeSignature = errors.New("invalid time signature")

	// ErrSegmentNotFound indicates no time signature segment starts at the
	// requested measure.
	ErrSegmentNotFound = errors.New("time signature segment not found")

	// ErrInvalidFactor indicates a non-positive tempo scale factor.
	ErrInvalidFactor = errors.New("invalid tempo factor")

	// ErrIntegrity indicates the timeline's invariants were found broken.
	// It is a programming error; the operation that detected it is aborted.
	ErrIntegrity = errors.New("timeline integrity violation")
)

// integrityError wraps ErrIntegrity with a stack trace for crash reports.
func integrityError(format string, args ...any) error {
	return pkgerrors.Wrapf(ErrIntegrity, format, args...)
}

// IsIntegrity reports whether err is an integrity violation.
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}
