package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrLockHeld = errors.New("listing lock is held by another request")
)
