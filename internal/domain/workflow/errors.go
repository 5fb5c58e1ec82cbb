package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a status transition is not allowed
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned when a status is not a known lifecycle status
	ErrInvalidStatus = errors.New("invalid status")

	// ErrAlreadyDecided is returned when a transition is attempted on a
	// record that already reached a terminal status
	ErrAlreadyDecided = errors.New("expense request already decided")
)
