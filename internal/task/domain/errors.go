package domain

import "errors"

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrForbidden    = errors.New("not allowed")

	// ErrIdempotencyConflict is returned when a create with the same
	// idempotency key is still in flight.
	ErrIdempotencyConflict = errors.New("request with this idempotency key is already in progress")
)

// ValidationError is a rejected request payload. Nothing was changed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError wraps a failure of the task store. It is never recoverable by the
// caller and is reported as an internal error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
