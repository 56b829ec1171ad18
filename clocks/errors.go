package clocks

import "github.com/pkg/errors"

var (
	// ErrConflictingHold is generated when holds are redeclared over inherited
	// holds, or a signal is held both on and off
	ErrConflictingHold = errors.New("conflicting hold")

	// ErrTimeWentBackward is generated when an event is declared before the
	// last declared tick, or with a negative duration
	ErrTimeWentBackward = errors.New("time went backward")

	// ErrIncompleteProgram is generated when the final state of a program has
	// no end time, or the program has no states at all
	ErrIncompleteProgram = errors.New("incomplete program")

	// ErrSignalNeverReferenced is generated when a trace is requested without
	// its initial level for a signal that is never active
	ErrSignalNeverReferenced = errors.New("signal never referenced")

	// ErrDurationOverflow is generated when an interval is longer than the
	// sequencer's 16-bit tick count field
	ErrDurationOverflow = errors.New("duration overflows tick count field")

	// ErrTickTimeMismatch is generated when phases built with different tick
	// times are composed into one row
	ErrTickTimeMismatch = errors.New("phases have different tick times")

	// ErrBadTickTime is generated when a program is built with a non-positive tick time
	ErrBadTickTime = errors.New("tick time must be positive")
)
