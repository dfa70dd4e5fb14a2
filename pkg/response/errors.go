package response

import "errors"

var (
	// ErrEmptyPool is returned when an emotion has no responses.
	ErrEmptyPool = errors.New("response: empty pool")

	// ErrInvalidPool is returned when pool data is malformed.
	ErrInvalidPool = errors.New("response: invalid pool data")
)
