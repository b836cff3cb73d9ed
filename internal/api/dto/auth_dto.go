package dto

import (
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
)

// LoginRequest is the sign-in form. Field checks happen in the login flow so
// users get field-level messages.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the sign-up form
type RegisterRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// OTPRequest carries an emailed one-time password
type OTPRequest struct {
	OTP string `json:"otp" binding:"max=12"`
}

// PasswordResetEmailRequest starts a password reset
type PasswordResetEmailRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest sets the new password
type PasswordResetConfirmRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// SessionResponse describes the caller's session
type SessionResponse struct {
	Authenticated bool                    `json:"authenticated"`
	User          *domain.User            `json:"user,omitempty"`
	DisplayName   string                  `json:"display_name,omitempty"`
	AppliedJobs   []int                   `json:"applied_jobs"`
	Registration  *workflow.Registration  `json:"registration,omitempty"`
	PasswordReset *workflow.PasswordReset `json:"password_reset,omitempty"`
	Redirect      string                  `json:"redirect,omitempty"`
}

// FlowResponse reports the state of a multi-step flow
type FlowResponse struct {
	Step    string `json:"step"`
	Message string `json:"message,omitempty"`
	Email   string `json:"email,omitempty"`
}
