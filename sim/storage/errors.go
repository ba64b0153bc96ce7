package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch is returned when a selector or filter is used with a
	// buffer or member type it was not created for. Nothing is copied.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedDirection is returned by one-way filters when the
	// irreversible direction is requested.
	ErrUnsupportedDirection = errors.New("unsupported filter direction")

	// ErrUnknownMember is returned when a field descriptor cannot be
	// resolved on the cell type.
	ErrUnknownMember = errors.New("unknown member")

	// ErrBufferTooSmall is returned when a source or target buffer holds
	// fewer elements than the copy requires.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrInvalidLocation is returned for memory locations other than Host
	// and Device.
	ErrInvalidLocation = errors.New("invalid memory location")

	// ErrNoNanoStep is returned by a patch provider asked for a patch while
	// none is buffered.
	ErrNoNanoStep = errors.New("no nano step available")

	// ErrNanoStepMismatch is wrapped by *NanoStepError.
	ErrNanoStepMismatch = errors.New("requested nano step doesn't match expected nano step")
)

// NanoStepError reports a patch request for a sub-step other than the
// smallest buffered one. It indicates desynchronized producers and
// consumers and must reach the orchestrator.
type NanoStepError struct {
	Expected int
	Actual   int
}

func (e *NanoStepError) Error() string {
	return fmt.Sprintf("%v. expected: %d is: %d", ErrNanoStepMismatch, e.Expected, e.Actual)
}

// Unwrap lets errors.Is match ErrNanoStepMismatch.
func (e *NanoStepError) Unwrap() error {
	return ErrNanoStepMismatch
}
