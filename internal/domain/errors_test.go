package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation", err: NewValidationError("resume", "resume required"), want: "resume required"},
		{name: "wrapped api error", err: fmt.Errorf("apply: %w", &APIError{Status: 400, Message: "Already applied"}), want: "Already applied"},
		{name: "api error without message", err: &APIError{Status: 500}, want: "unexpected server error"},
		{name: "auth", err: &AuthError{}, want: "Please log in to continue"},
		{name: "network", err: &NetworkError{Op: "list jobs", Err: errors.New("dial tcp")}, want: "Unable to reach the server. Please check your connection and try again"},
		{name: "unknown", err: errors.New("boom"), want: "Something went wrong. Please try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestAuthError_IsNotAuthenticated(t *testing.T) {
	err := fmt.Errorf("history: %w", &AuthError{Reason: "token missing"})

	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, "history: authentication required: token missing", err.Error())
}

func TestAPIError_Unwrap(t *testing.T) {
	err := &APIError{Status: 502, Message: ErrUnexpectedResponse.Error(), Err: ErrUnexpectedResponse}

	assert.ErrorIs(t, err, ErrUnexpectedResponse)
	assert.False(t, err.NotFound())
	assert.True(t, (&APIError{Status: 404}).NotFound())
}
