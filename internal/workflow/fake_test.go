package workflow

import (
	"context"
	"io"
	"sync"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/backend"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// fakeAPI records calls and returns the configured results
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	applyErr   error
	applyForm  backend.ApplicationForm
	applyBlock chan struct{}
	resume     string

	history    []domain.Application
	historyErr error

	loginErr    error
	registerErr error
	verifyErr   error
	resendErr   error

	resetRequestErr error
	resetVerifyErr  error
	resetConfirmErr error
	resetConfirmed  [4]string
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ApplyToJob(ctx context.Context, token string, jobID int, form backend.ApplicationForm) (*domain.Application, error) {
	f.record("apply")
	if f.applyBlock != nil {
		<-f.applyBlock
	}
	f.applyForm = form
	if form.Resume != nil {
		content, _ := io.ReadAll(form.Resume.Content)
		f.resume = string(content)
	}
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	return &domain.Application{ID: 1, Job: domain.ApplicationJob{ID: jobID}, Status: domain.ApplicationStatusPending}, nil
}

func (f *fakeAPI) ApplicationHistory(ctx context.Context, token string) ([]domain.Application, error) {
	f.record("history")
	return f.history, f.historyErr
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	f.record("login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &domain.AuthResult{Token: "login-token", User: domain.User{ID: 3, Email: email}}, nil
}

func (f *fakeAPI) Register(ctx context.Context, reg backend.Registration) (string, error) {
	f.record("register")
	if f.registerErr != nil {
		return "", f.registerErr
	}
	return "Registration successful. OTP sent to " + reg.Email, nil
}

func (f *fakeAPI) VerifyOTP(ctx context.Context, email, otp string) (*domain.AuthResult, error) {
	f.record("verify:" + email + ":" + otp)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &domain.AuthResult{Token: "otp-token", User: domain.User{ID: 9, Email: email, Username: "maya"}}, nil
}

func (f *fakeAPI) ResendOTP(ctx context.Context, email string) (string, error) {
	f.record("resend:" + email)
	return "", f.resendErr
}

func (f *fakeAPI) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	f.record("reset-request:" + email)
	return "", f.resetRequestErr
}

func (f *fakeAPI) VerifyPasswordResetOTP(ctx context.Context, email, otp string) (string, error) {
	f.record("reset-verify:" + email + ":" + otp)
	return "", f.resetVerifyErr
}

func (f *fakeAPI) ConfirmPasswordReset(ctx context.Context, email, otp, password, confirm string) (string, error) {
	f.record("reset-confirm")
	f.resetConfirmed = [4]string{email, otp, password, confirm}
	return "Password reset successful", f.resetConfirmErr
}
