package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: domain.NewValidationError("email", "Email is required"), want: http.StatusBadRequest},
		{name: "login required", err: workflow.ErrLoginRequired, want: http.StatusUnauthorized},
		{name: "auth error", err: &domain.AuthError{Reason: "token rejected"}, want: http.StatusUnauthorized},
		{name: "already applied", err: workflow.ErrAlreadyApplied, want: http.StatusConflict},
		{name: "closed job", err: fmt.Errorf("open: %w", workflow.ErrJobClosed), want: http.StatusConflict},
		{name: "submit in flight", err: workflow.ErrSubmitInFlight, want: http.StatusConflict},
		{name: "transition", err: &workflow.TransitionError{Flow: "registration", Step: "form_entry", Action: "verify"}, want: http.StatusConflict},
		{name: "api not found", err: &domain.APIError{Status: http.StatusNotFound, Message: "Not found."}, want: http.StatusNotFound},
		{name: "api bad request", err: &domain.APIError{Status: http.StatusBadRequest, Message: "Invalid credentials"}, want: http.StatusBadRequest},
		{name: "api server error", err: &domain.APIError{Status: http.StatusInternalServerError}, want: http.StatusBadGateway},
		{name: "network", err: &domain.NetworkError{Op: "list jobs", Err: errors.New("refused")}, want: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestMessageFor(t *testing.T) {
	assert.Equal(t, "You have already applied for this job", messageFor(workflow.ErrAlreadyApplied))
	assert.Equal(t, "Please log in to apply for this job", messageFor(workflow.ErrLoginRequired))
	assert.Equal(t, "Email is required", messageFor(domain.NewValidationError("email", "Email is required")))
	assert.Equal(t, "Invalid email or password",
		messageFor(&domain.APIError{Status: http.StatusBadRequest, Message: "Invalid email or password"}))
	assert.Contains(t, messageFor(&workflow.TransitionError{Flow: "password reset", Step: "done", Action: "go back"}), "start again")
}

func TestBindingError(t *testing.T) {
	registerFieldNames()

	type form struct {
		OTP  string `json:"otp" binding:"required"`
		Bio  string `json:"bio" binding:"max=3"`
		Page int    `json:"page" binding:"omitempty,min=1"`
	}

	tests := []struct {
		name      string
		value     form
		wantField string
		wantMsg   string
	}{
		{name: "required", value: form{}, wantField: "otp", wantMsg: "otp is required"},
		{name: "too long", value: form{OTP: "1", Bio: "long bio"}, wantField: "bio", wantMsg: "bio must be at most 3 characters"},
		{name: "other tag", value: form{OTP: "1", Page: -1}, wantField: "page", wantMsg: "page is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.value)
			require.Error(t, err)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, bindingError(err), &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
			assert.Equal(t, tt.wantMsg, validationErr.Message)
		})
	}

	var validationErr *domain.ValidationError
	require.ErrorAs(t, bindingError(errors.New("unexpected EOF")), &validationErr)
	assert.Equal(t, "Invalid request body", validationErr.Message)
}
