package processes

import (
	"errors"
	"fmt"
)

// DuplicateError reports an insert of a pid that is already tracked as running.
// Under serialized supervisor use this is a defect, not a user error.
type DuplicateError struct {
	PID int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("pid %d is already tracked as running", e.PID)
}

// NotFoundError reports an operation on a pid that is not tracked
type NotFoundError struct {
	PID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pid %d is not tracked", e.PID)
}

// SpawnError reports a failure to create a child process
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn process: %v", e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// SignalError reports a failure to deliver a signal to a pid
type SignalError struct {
	PID int
	Err error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("failed to signal process %d: %v", e.PID, e.Err)
}

func (e *SignalError) Unwrap() error { return e.Err }

// ParseError reports a malformed pid argument
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid pid %q", e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrInvalidPID is wrapped by ParseError when the input parses but is not a usable pid
var ErrInvalidPID = errors.New("pid must be a positive integer")
