package domain

import "errors"

// Error categories used across the service and handler layers.
// Wrap these with fmt.Errorf("%w: ...") so callers can classify
// failures with errors.Is.
var (
	// ErrValidation marks input rejected before any store mutation.
	ErrValidation = errors.New("validation failed")

	// ErrTransport marks a network failure talking to a device or the
	// remote config store. Never retried automatically.
	ErrTransport = errors.New("transport failed")

	// ErrParse marks a malformed remote document or device response.
	ErrParse = errors.New("parse failed")

	// ErrConflict marks a store-state conflict such as a duplicate name.
	ErrConflict = errors.New("state conflict")
)
