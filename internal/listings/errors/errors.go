package errors

import "errors"

var (
	ErrNotFound = errors.New("listing not found")

	ErrInvalidPriceRange = errors.New("price range must look like min-max with min <= max")
)
