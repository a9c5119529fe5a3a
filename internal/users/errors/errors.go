package errors

import "errors"

var (
	ErrNotFound = errors.New("user not found")

	// ErrTokenNotFound covers unknown, expired and already used tokens alike.
	ErrTokenNotFound = errors.New("token not found or expired")
)
