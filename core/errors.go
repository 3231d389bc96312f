package core

import "errors"

var (
	// Table construction
	ErrDuplicateTransition = errors.New("duplicate transition")
	ErrUnknownState        = errors.New("unknown state")
	ErrUnknownEvent        = errors.New("unknown event")
	ErrMissingAction       = errors.New("missing action")

	// Configuration
	ErrNoGPIO = errors.New("gpio driver not configured")
)

// FatalError is raised when a firmware invariant is broken.
// The system must halt or reset after one of these.
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return "fatal: " + e.Reason
}

// tableError keeps the offending row in the message while still matching
// the sentinel with errors.Is.
type tableError struct {
	err error
	row Transition
}

func (e *tableError) Error() string {
	return e.err.Error() + ": " + e.row.String()
}

func (e *tableError) Unwrap() error { return e.err }

type stateError struct {
	err   error
	state State
}

func (e *stateError) Error() string {
	return e.err.Error() + ": " + e.state.String()
}

func (e *stateError) Unwrap() error { return e.err }

// ErrTickRequired is returned when tick events are disabled but the
// transition table depends on them.
var ErrTickRequired = errors.New("transition table requires tick events")
