package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{password: "Str0ng!pw", valid: true},
		{password: "Ünïcødé9$", valid: true},
		{password: "Sh0rt!", valid: false},
		{password: "alllower1!", valid: false},
		{password: "ALLUPPER1!", valid: false},
		{password: "NoDigits!!", valid: false},
		{password: "NoSpecial12", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := CheckPassword(tt.password)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, PasswordPolicyMessage, validationErr.Message)
		})
	}
}

func TestLogin_Submit(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		serverErr error
		wantMsg   string
		wantCalls int
		wantStep  LoginStep
	}{
		{name: "success", email: "maya@example.com", password: "pw", wantCalls: 1, wantStep: LoginAuthenticated},
		{name: "malformed email", email: "maya@", password: "pw", wantMsg: "Please enter a valid email address", wantStep: LoginFailure},
		{name: "empty password", email: "maya@example.com", wantMsg: "Password is required", wantStep: LoginFailure},
		{
			name:      "invalid credentials",
			email:     "maya@example.com",
			password:  "pw",
			serverErr: &domain.APIError{Status: 400, Message: "Invalid credentials"},
			wantMsg:   "Invalid email or password",
			wantCalls: 1,
			wantStep:  LoginFailure,
		},
		{
			name:      "email not verified",
			email:     "maya@example.com",
			password:  "pw",
			serverErr: &domain.APIError{Status: 403, Message: "Email not verified. Check your inbox"},
			wantMsg:   "Please verify your email before logging in",
			wantCalls: 1,
			wantStep:  LoginFailure,
		},
		{
			name:      "other server message",
			email:     "maya@example.com",
			password:  "pw",
			serverErr: &domain.APIError{Status: 429, Message: "Too many attempts"},
			wantMsg:   "Too many attempts",
			wantCalls: 1,
			wantStep:  LoginFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{loginErr: tt.serverErr}
			login := NewLogin()

			result, err := login.Submit(context.Background(), api, tt.email, tt.password)

			assert.Equal(t, tt.wantStep, login.Step)
			assert.Len(t, api.called(), tt.wantCalls)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, "login-token", result.Token)
				return
			}
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.wantMsg, domain.UserMessage(err))
			assert.Equal(t, tt.wantMsg, login.Error)
		})
	}
}

func validForm() RegistrationForm {
	return RegistrationForm{
		Email:           " maya@example.com ",
		Username:        "maya",
		Password:        "Str0ng!pw",
		ConfirmPassword: "Str0ng!pw",
	}
}

func TestRegistration_SubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegistrationForm)
		wantMsg string
	}{
		{name: "missing email", mutate: func(f *RegistrationForm) { f.Email = "" }, wantMsg: "Email is required"},
		{name: "bad email", mutate: func(f *RegistrationForm) { f.Email = "maya" }, wantMsg: "Please enter a valid email address"},
		{name: "missing username", mutate: func(f *RegistrationForm) { f.Username = " " }, wantMsg: "Username is required"},
		{name: "mismatch", mutate: func(f *RegistrationForm) { f.ConfirmPassword = "Str0ng!pX" }, wantMsg: "Passwords do not match"},
		{name: "weak", mutate: func(f *RegistrationForm) { f.Password, f.ConfirmPassword = "weakpass", "weakpass" }, wantMsg: PasswordPolicyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			reg := NewRegistration()
			form := validForm()
			tt.mutate(&form)

			err := reg.Submit(context.Background(), api, form)

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, reg.Error)
			assert.Equal(t, RegistrationFormEntry, reg.Step)
			assert.Empty(t, api.called())
		})
	}
}

func TestRegistration_SubmitServerConflicts(t *testing.T) {
	tests := []struct {
		server  string
		wantMsg string
	}{
		{server: "email: user with this email already exists.", wantMsg: "An account with this email already exists"},
		{server: "Username already exists", wantMsg: "This username is already taken"},
		{server: "Registration is closed", wantMsg: "Registration is closed"},
	}

	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			api := &fakeAPI{registerErr: &domain.APIError{Status: 400, Message: tt.server}}
			reg := NewRegistration()

			err := reg.Submit(context.Background(), api, validForm())

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, reg.Error)
			assert.Equal(t, RegistrationFormEntry, reg.Step)
		})
	}
}

func TestRegistration_VerifyReturnsSessionForSignupEmail(t *testing.T) {
	api := &fakeAPI{}
	reg := NewRegistration()

	require.NoError(t, reg.Submit(context.Background(), api, validForm()))
	assert.Equal(t, RegistrationOtpEntry, reg.Step)
	assert.Equal(t, "maya@example.com", reg.Email)
	assert.Contains(t, reg.Notice, "OTP sent")

	result, err := reg.Verify(context.Background(), api, " 123456 ")
	require.NoError(t, err)

	assert.Equal(t, RegistrationAuthenticated, reg.Step)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "maya@example.com", result.User.Email)
	assert.Equal(t, []string{"register", "verify:maya@example.com:123456"}, api.called())
}

func TestRegistration_VerifyFailureKeepsOtpEntryOpen(t *testing.T) {
	api := &fakeAPI{verifyErr: &domain.APIError{Status: 400, Message: "Invalid or expired OTP"}}
	reg := NewRegistration()
	require.NoError(t, reg.Submit(context.Background(), api, validForm()))

	_, err := reg.Verify(context.Background(), api, "000000")
	require.Error(t, err)
	assert.Equal(t, RegistrationOtpEntry, reg.Step)
	assert.Equal(t, "Invalid or expired OTP", reg.Error)

	msg, err := reg.Resend(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, "A new verification code has been sent", msg)
	assert.Equal(t, RegistrationOtpEntry, reg.Step)

	api.verifyErr = nil
	_, err = reg.Verify(context.Background(), api, "111111")
	require.NoError(t, err)
	assert.Equal(t, RegistrationAuthenticated, reg.Step)
}

func TestRegistration_InvalidTransitions(t *testing.T) {
	api := &fakeAPI{}
	reg := NewRegistration()

	_, err := reg.Verify(context.Background(), api, "123456")
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "verify", transitionErr.Action)

	_, err = reg.Resend(context.Background(), api)
	require.ErrorAs(t, err, &transitionErr)

	require.NoError(t, reg.Submit(context.Background(), api, validForm()))
	err = reg.Submit(context.Background(), api, validForm())
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, RegistrationOtpEntry, reg.Step)
}

func TestPasswordReset_FullFlowWithBack(t *testing.T) {
	api := &fakeAPI{}
	reset := NewPasswordReset()
	ctx := context.Background()

	require.NoError(t, reset.Request(ctx, api, "maya@example.com"))
	assert.Equal(t, ResetAwaitOtp, reset.Step)

	require.NoError(t, reset.Back())
	assert.Equal(t, ResetRequestEmail, reset.Step)
	assert.Equal(t, "maya@example.com", reset.Email)

	require.NoError(t, reset.Request(ctx, api, reset.Email))
	require.NoError(t, reset.Verify(ctx, api, "654321"))
	assert.Equal(t, ResetSetNewPassword, reset.Step)

	require.NoError(t, reset.Back())
	assert.Equal(t, ResetAwaitOtp, reset.Step)
	assert.Equal(t, "654321", reset.OTP)

	require.NoError(t, reset.Verify(ctx, api, reset.OTP))
	require.NoError(t, reset.Confirm(ctx, api, "N3w!pass", "N3w!pass"))

	assert.Equal(t, ResetDone, reset.Step)
	assert.Equal(t, "Password reset successful", reset.Notice)
	assert.Equal(t, [4]string{"maya@example.com", "654321", "N3w!pass", "N3w!pass"}, api.resetConfirmed)
	assert.Empty(t, reset.OTP)

	var transitionErr *TransitionError
	assert.ErrorAs(t, reset.Back(), &transitionErr)
}

func TestPasswordReset_FailuresStayInStep(t *testing.T) {
	ctx := context.Background()

	t.Run("bad email", func(t *testing.T) {
		api := &fakeAPI{}
		reset := NewPasswordReset()
		require.Error(t, reset.Request(ctx, api, "nope"))
		assert.Equal(t, ResetRequestEmail, reset.Step)
		assert.Empty(t, api.called())
	})

	t.Run("unknown email", func(t *testing.T) {
		api := &fakeAPI{resetRequestErr: &domain.APIError{Status: 404, Message: "No account with this email"}}
		reset := NewPasswordReset()
		require.Error(t, reset.Request(ctx, api, "maya@example.com"))
		assert.Equal(t, ResetRequestEmail, reset.Step)
		assert.Equal(t, "No account with this email", reset.Error)
	})

	t.Run("wrong otp", func(t *testing.T) {
		api := &fakeAPI{resetVerifyErr: &domain.APIError{Status: 400, Message: "Invalid OTP"}}
		reset := NewPasswordReset()
		require.NoError(t, reset.Request(ctx, api, "maya@example.com"))
		require.Error(t, reset.Verify(ctx, api, "1"))
		assert.Equal(t, ResetAwaitOtp, reset.Step)
		assert.Equal(t, "Invalid OTP", reset.Error)
	})

	t.Run("weak new password", func(t *testing.T) {
		api := &fakeAPI{}
		reset := &PasswordReset{Step: ResetSetNewPassword, Email: "maya@example.com", OTP: "1"}
		require.Error(t, reset.Confirm(ctx, api, "password", "password"))
		assert.Equal(t, ResetSetNewPassword, reset.Step)
		assert.Empty(t, api.called())
	})

	t.Run("network failure on confirm", func(t *testing.T) {
		api := &fakeAPI{resetConfirmErr: &domain.NetworkError{Op: "confirm", Err: errors.New("refused")}}
		reset := &PasswordReset{Step: ResetSetNewPassword, Email: "maya@example.com", OTP: "1"}
		require.Error(t, reset.Confirm(ctx, api, "N3w!pass", "N3w!pass"))
		assert.Equal(t, ResetSetNewPassword, reset.Step)
		assert.Equal(t, "1", reset.OTP)
	})
}
