package workflow

import (
	"context"
	"strings"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/backend"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// RegistrationStep is the state of a sign-up
type RegistrationStep string

const (
	RegistrationFormEntry     RegistrationStep = "form_entry"
	RegistrationSubmitting    RegistrationStep = "submitting"
	RegistrationOtpEntry      RegistrationStep = "otp_entry"
	RegistrationVerifying     RegistrationStep = "verifying"
	RegistrationAuthenticated RegistrationStep = "authenticated"
)

// Registrar is the account API used by registration
type Registrar interface {
	Register(ctx context.Context, reg backend.Registration) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (*domain.AuthResult, error)
	ResendOTP(ctx context.Context, email string) (string, error)
}

// RegistrationForm is the sign-up form as entered
type RegistrationForm struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

var registrationMessages = []messageRule{
	{match: "email already exists", text: "An account with this email already exists"},
	{match: "user with this email", text: "An account with this email already exists"},
	{match: "username already exists", text: "This username is already taken"},
	{match: "user with this username", text: "This username is already taken"},
}

// Registration is a sign-up in progress. It is stored in the session between
// requests, so it holds no secrets: passwords are never kept.
type Registration struct {
	Step     RegistrationStep `json:"step"`
	Email    string           `json:"email,omitempty"`
	Username string           `json:"username,omitempty"`
	Notice   string           `json:"notice,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// NewRegistration returns a registration waiting for the form
func NewRegistration() *Registration {
	return &Registration{Step: RegistrationFormEntry}
}

// Submit validates the form and creates the account. Success moves to
// OtpEntry; any failure stays in FormEntry with the error recorded.
func (r *Registration) Submit(ctx context.Context, api Registrar, form RegistrationForm) error {
	if r.Step != RegistrationFormEntry {
		return &TransitionError{Flow: "registration", Step: string(r.Step), Action: "submit"}
	}

	form.Email = strings.TrimSpace(form.Email)
	form.Username = strings.TrimSpace(form.Username)
	if err := validateRegistration(form); err != nil {
		r.Error = domain.UserMessage(err)
		return err
	}

	r.Step = RegistrationSubmitting
	message, err := api.Register(ctx, backend.Registration{
		Email:           form.Email,
		Username:        form.Username,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		err = mapServerMessage(err, registrationMessages)
		r.Step = RegistrationFormEntry
		r.Error = domain.UserMessage(err)
		return err
	}

	if message == "" {
		message = "Registration successful. Please check your email for the verification code"
	}
	r.Step = RegistrationOtpEntry
	r.Email = form.Email
	r.Username = form.Username
	r.Notice = message
	r.Error = ""
	return nil
}

// Verify checks the emailed OTP. Success returns the token and user that
// the caller stores in the session. A rejected code returns to OtpEntry with
// Error set.
func (r *Registration) Verify(ctx context.Context, api Registrar, otp string) (*domain.AuthResult, error) {
	if r.Step != RegistrationOtpEntry {
		return nil, &TransitionError{Flow: "registration", Step: string(r.Step), Action: "verify"}
	}

	otp = strings.TrimSpace(otp)
	if err := requireField("otp", otp, "Verification code"); err != nil {
		r.Error = domain.UserMessage(err)
		return nil, err
	}

	r.Step = RegistrationVerifying
	result, err := api.VerifyOTP(ctx, r.Email, otp)
	if err != nil {
		r.Step = RegistrationOtpEntry
		r.Error = domain.UserMessage(err)
		return nil, err
	}

	r.Step = RegistrationAuthenticated
	r.Notice = ""
	r.Error = ""
	return result, nil
}

// Resend asks for a new OTP. It never changes the step.
func (r *Registration) Resend(ctx context.Context, api Registrar) (string, error) {
	if r.Step != RegistrationOtpEntry {
		return "", &TransitionError{Flow: "registration", Step: string(r.Step), Action: "resend"}
	}

	message, err := api.ResendOTP(ctx, r.Email)
	if err != nil {
		r.Error = domain.UserMessage(err)
		return "", err
	}
	if message == "" {
		message = "A new verification code has been sent"
	}
	r.Notice = message
	r.Error = ""
	return message, nil
}

func validateRegistration(form RegistrationForm) error {
	if err := checkEmail(form.Email); err != nil {
		return err
	}
	if err := requireField("username", form.Username, "Username"); err != nil {
		return err
	}
	return checkNewPassword(form.Password, form.ConfirmPassword)
}
