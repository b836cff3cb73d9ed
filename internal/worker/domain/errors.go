package domain

import "errors"

var (
	// ErrEventAlreadyRecorded is returned when the event_id is already stored
	ErrEventAlreadyRecorded = errors.New("event already recorded")

	// ErrInvalidPayload is returned when a message is not a valid event
	ErrInvalidPayload = errors.New("invalid event payload")

	// ErrMaxRetriesExceeded is returned when a redelivered message fails again
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
