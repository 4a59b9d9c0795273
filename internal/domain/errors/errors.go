package errors

import "errors"

var (
	// ErrInvalidArgs rejects a submission before any state is created,
	// e.g. an order with zero items.
	ErrInvalidArgs = errors.New("invalid arguments")
	// ErrBadConfig marks an incomplete or non-positive timeout policy.
	ErrBadConfig = errors.New("bad fulfillment configuration")
	// ErrHungDispatch marks an order whose dispatch attempts could not all
	// resolve before the deadline.
	ErrHungDispatch = errors.New("hung dispatch")
	// ErrUnknownCategory marks an item whose category has no dispatch handler.
	ErrUnknownCategory = errors.New("unknown product category")

	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)
