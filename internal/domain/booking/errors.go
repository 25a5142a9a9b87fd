package booking

import "errors"

var (
	// ErrValidation marks malformed or missing request data.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a slot or booking that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlotUnavailable marks an attempt to claim an already booked slot.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrInvalidTransition marks a status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)
