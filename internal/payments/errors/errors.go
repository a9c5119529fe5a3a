package errors

import "errors"

var (
	ErrNotFound = errors.New("payment not found")

	// ErrInvalidSignature means the webhook payload was not signed by the
	// processor with our endpoint secret.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	ErrMalformedEvent = errors.New("malformed webhook event")
)
