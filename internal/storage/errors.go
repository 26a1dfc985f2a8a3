package storage

import "errors"

var (
	// ErrUnavailable is returned when the backing store cannot be read, parsed or written.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned when an operation targets an identifier that does not exist.
	ErrNotFound = errors.New("not found")
)
