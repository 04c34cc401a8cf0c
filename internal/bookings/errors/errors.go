package errors

import "errors"

var (
	// ErrNotFound means no record exists for the given bookingId,
	// regardless of its deleted flag.
	ErrNotFound = errors.New("booking not found")
)
