package terminal

import "errors"

var (
	// ErrAborted signals the operator aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("terminal: aborted")
	// ErrNoDepartments is returned when a session is started without any
	// department to offer.
	ErrNoDepartments = errors.New("terminal: department list is empty")
)
