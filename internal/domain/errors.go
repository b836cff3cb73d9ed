package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnexpectedResponse marks a non-JSON or undecodable API response
	ErrUnexpectedResponse = errors.New("unexpected server error")

	// ErrNotAuthenticated is returned when an operation needs a session token
	ErrNotAuthenticated = errors.New("authentication required")
)

// NetworkError is a transport failure: the request never produced a response
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError means the session is missing or was rejected by the API
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return ErrNotAuthenticated.Error()
	}
	return ErrNotAuthenticated.Error() + ": " + e.Reason
}

func (e *AuthError) Unwrap() error {
	return ErrNotAuthenticated
}

// APIError is a non-2xx response carrying the server-provided message
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the API answered 404
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// ValidationError is a client-side input failure. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error for field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UserMessage returns the text that should be shown to the user for err
func UserMessage(err error) string {
	var (
		validationErr *ValidationError
		apiErr        *APIError
		authErr       *AuthError
		networkErr    *NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &authErr):
		return "Please log in to continue"
	case errors.As(err, &apiErr):
		if apiErr.Message == "" {
			return ErrUnexpectedResponse.Error()
		}
		return apiErr.Message
	case errors.As(err, &networkErr):
		return "Unable to reach the server. Please check your connection and try again"
	default:
		return "Something went wrong. Please try again"
	}
}
