package workflow

import (
	"context"
	"strings"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// ResetStep is the state of a password reset
type ResetStep string

const (
	ResetRequestEmail   ResetStep = "request_email"
	ResetAwaitOtp       ResetStep = "await_otp"
	ResetSetNewPassword ResetStep = "set_new_password"
	ResetDone           ResetStep = "done"
)

// PasswordResetter is the account API used by the reset flow
type PasswordResetter interface {
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	VerifyPasswordResetOTP(ctx context.Context, email, otp string) (string, error)
	ConfirmPasswordReset(ctx context.Context, email, otp, password, confirm string) (string, error)
}

// PasswordReset walks RequestEmail, AwaitOtp, SetNewPassword and Done. Each
// forward step is gated by its API call; a failed call leaves the step as is.
type PasswordReset struct {
	Step   ResetStep `json:"step"`
	Email  string    `json:"email,omitempty"`
	OTP    string    `json:"otp,omitempty"`
	Notice string    `json:"notice,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// NewPasswordReset returns a reset waiting for the email address
func NewPasswordReset() *PasswordReset {
	return &PasswordReset{Step: ResetRequestEmail}
}

// Request sends the reset OTP to email
func (p *PasswordReset) Request(ctx context.Context, api PasswordResetter, email string) error {
	if p.Step != ResetRequestEmail {
		return p.invalid("request")
	}

	email = strings.TrimSpace(email)
	p.Email = email
	if err := checkEmail(email); err != nil {
		return p.fail(err)
	}

	message, err := api.RequestPasswordReset(ctx, email)
	if err != nil {
		return p.fail(err)
	}
	p.advance(ResetAwaitOtp, message, "A verification code has been sent to your email")
	return nil
}

// Verify checks the reset OTP
func (p *PasswordReset) Verify(ctx context.Context, api PasswordResetter, otp string) error {
	if p.Step != ResetAwaitOtp {
		return p.invalid("verify")
	}

	otp = strings.TrimSpace(otp)
	p.OTP = otp
	if err := requireField("otp", otp, "Verification code"); err != nil {
		return p.fail(err)
	}

	message, err := api.VerifyPasswordResetOTP(ctx, p.Email, otp)
	if err != nil {
		return p.fail(err)
	}
	p.advance(ResetSetNewPassword, message, "Code verified. Choose a new password")
	return nil
}

// Confirm sets the new password
func (p *PasswordReset) Confirm(ctx context.Context, api PasswordResetter, password, confirm string) error {
	if p.Step != ResetSetNewPassword {
		return p.invalid("confirm")
	}
	if err := checkNewPassword(password, confirm); err != nil {
		return p.fail(err)
	}

	message, err := api.ConfirmPasswordReset(ctx, p.Email, p.OTP, password, confirm)
	if err != nil {
		return p.fail(err)
	}
	p.advance(ResetDone, message, "Your password has been reset. You can now log in")
	p.OTP = ""
	return nil
}

// Back re-enters the previous step keeping the entered email and OTP
func (p *PasswordReset) Back() error {
	switch p.Step {
	case ResetAwaitOtp:
		p.Step = ResetRequestEmail
	case ResetSetNewPassword:
		p.Step = ResetAwaitOtp
	default:
		return p.invalid("go back")
	}
	p.Notice = ""
	p.Error = ""
	return nil
}

func (p *PasswordReset) advance(next ResetStep, message, fallback string) {
	if message == "" {
		message = fallback
	}
	p.Step = next
	p.Notice = message
	p.Error = ""
}

func (p *PasswordReset) fail(err error) error {
	p.Error = domain.UserMessage(err)
	return err
}

func (p *PasswordReset) invalid(action string) error {
	return &TransitionError{Flow: "password reset", Step: string(p.Step), Action: action}
}
