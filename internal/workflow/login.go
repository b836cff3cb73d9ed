package workflow

import (
	"context"
	"strings"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// LoginStep is the state of a sign-in attempt
type LoginStep string

const (
	LoginFormEntry     LoginStep = "form_entry"
	LoginSubmitting    LoginStep = "submitting"
	LoginAuthenticated LoginStep = "authenticated"
	LoginFailure       LoginStep = "failure"
)

// Authenticator signs users in
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
}

var loginMessages = []messageRule{
	{match: "Invalid credentials", text: "Invalid email or password"},
	{match: "Email not verified", text: "Please verify your email before logging in"},
}

// Login is a single sign-in attempt
type Login struct {
	Step  LoginStep
	Error string
}

// NewLogin returns a login waiting for credentials
func NewLogin() *Login {
	return &Login{Step: LoginFormEntry}
}

// Submit validates the credentials locally and signs in. The email format is
// checked before any request is made. Server messages are rewritten into the
// wording shown to users.
func (l *Login) Submit(ctx context.Context, api Authenticator, email, password string) (*domain.AuthResult, error) {
	if l.Step != LoginFormEntry && l.Step != LoginFailure {
		return nil, &TransitionError{Flow: "login", Step: string(l.Step), Action: "submit"}
	}

	email = strings.TrimSpace(email)
	if err := checkEmail(email); err != nil {
		return nil, l.fail(err)
	}
	if err := requireField("password", password, "Password"); err != nil {
		return nil, l.fail(err)
	}

	l.Step = LoginSubmitting
	result, err := api.Login(ctx, email, password)
	if err != nil {
		return nil, l.fail(mapServerMessage(err, loginMessages))
	}

	l.Step = LoginAuthenticated
	l.Error = ""
	return result, nil
}

func (l *Login) fail(err error) error {
	l.Step = LoginFailure
	l.Error = domain.UserMessage(err)
	return err
}
