package backend

import (
	"context"
	"net/http"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// Registration is the sign-up payload
type Registration struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ProfileUpdate carries changed profile fields and optional uploads
type ProfileUpdate struct {
	Fields         map[string]string
	ProfilePicture *Document
	Resume         *Document
}

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	req, err := jsonRequest("login", http.MethodPost, "/accounts/login/", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var result domain.AuthResult
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an account; the API emails an OTP to verify it
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	return c.postAck(ctx, "register", "/accounts/register/", reg)
}

// VerifyOTP confirms a registration and signs the user in
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*domain.AuthResult, error) {
	req, err := jsonRequest("verify otp", http.MethodPost, "/accounts/verify-otp/", map[string]string{
		"email": email,
		"otp":   otp,
	})
	if err != nil {
		return nil, err
	}

	var result domain.AuthResult
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResendOTP asks the API to email a fresh registration OTP
func (c *Client) ResendOTP(ctx context.Context, email string) (string, error) {
	return c.postAck(ctx, "resend otp", "/accounts/resend-otp/", map[string]string{"email": email})
}

// RequestPasswordReset emails a reset OTP to email
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return c.postAck(ctx, "request password reset", "/accounts/password/reset/request/", map[string]string{"email": email})
}

// VerifyPasswordResetOTP checks a reset OTP without consuming it
func (c *Client) VerifyPasswordResetOTP(ctx context.Context, email, otp string) (string, error) {
	return c.postAck(ctx, "verify password reset otp", "/accounts/password/reset/verify/", map[string]string{
		"email": email,
		"otp":   otp,
	})
}

// ConfirmPasswordReset sets the new password
func (c *Client) ConfirmPasswordReset(ctx context.Context, email, otp, password, confirm string) (string, error) {
	return c.postAck(ctx, "confirm password reset", "/accounts/password/reset/confirm/", map[string]string{
		"email":            email,
		"otp":              otp,
		"password":         password,
		"confirm_password": confirm,
	})
}

// GetProfile returns the profile of the token's user
func (c *Client) GetProfile(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, request{
		op:     "get profile",
		method: http.MethodGet,
		path:   "/accounts/profile/",
		token:  token,
		auth:   true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile patches the profile of the token's user
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*domain.User, error) {
	if token == "" {
		return nil, &domain.AuthError{Reason: "no session token for update profile"}
	}

	body := newMultipartBody()
	for name, value := range update.Fields {
		if err := body.field(name, value); err != nil {
			return nil, err
		}
	}
	if err := body.file("profile_picture", update.ProfilePicture); err != nil {
		return nil, err
	}
	if err := body.file("resume", update.Resume); err != nil {
		return nil, err
	}
	reader, contentType, err := body.close()
	if err != nil {
		return nil, err
	}

	var user domain.User
	err = c.do(ctx, request{
		op:          "update profile",
		method:      http.MethodPatch,
		path:        "/accounts/profile/",
		token:       token,
		auth:        true,
		body:        reader,
		contentType: contentType,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) postAck(ctx context.Context, op, path string, payload any) (string, error) {
	req, err := jsonRequest(op, http.MethodPost, path, payload)
	if err != nil {
		return "", err
	}

	var a ack
	if err := c.do(ctx, req, &a); err != nil {
		return "", err
	}
	return a.Message, nil
}
