package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/api/dto"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/events"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/session"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
)

// HomePath is where signed-in users land
const HomePath = "/"

// AuthHandler serves sign-in, sign-up and password reset
type AuthHandler struct {
	base
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{base: newBase(deps)}
}

func sessionResponse(sess *session.Session) dto.SessionResponse {
	resp := dto.SessionResponse{
		Authenticated: sess.Authenticated(),
		AppliedJobs:   append([]int{}, sess.AppliedJobs...),
		Registration:  sess.Registration,
		PasswordReset: sess.PasswordReset,
	}
	if resp.Authenticated {
		resp.User = sess.User
		resp.DisplayName = sess.User.DisplayName()
	}
	return resp
}

// Session handles GET /api/v1/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, sessionResponse(CurrentSession(c)))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	h.logCall(c, "Login")
	sess := CurrentSession(c)
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := bind(c, &req, binding.JSON); err != nil {
		h.fail(c, sess, err)
		return
	}

	result, err := workflow.NewLogin().Submit(ctx, h.backend, req.Email, req.Password)
	if err != nil {
		h.fail(c, sess, err)
		return
	}
	if err := h.sessions.Login(ctx, sess, result.Token, result.User); err != nil {
		h.fail(c, sess, err)
		return
	}

	resp := sessionResponse(sess)
	resp.Redirect = HomePath
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.logCall(c, "Logout")
	sess := CurrentSession(c)

	if err := h.sessions.Logout(c.Request.Context(), sess); err != nil {
		h.fail(c, sess, err)
		return
	}

	resp := sessionResponse(sess)
	resp.Redirect = HomePath
	c.JSON(http.StatusOK, resp)
}

// Register handles POST /api/v1/auth/register
// Every submission starts a new sign-up; success waits for the emailed OTP
func (h *AuthHandler) Register(c *gin.Context) {
	h.logCall(c, "Register")
	sess := CurrentSession(c)
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if err := bind(c, &req, binding.JSON); err != nil {
		h.fail(c, sess, err)
		return
	}

	reg := workflow.NewRegistration()
	err := reg.Submit(ctx, h.backend, workflow.RegistrationForm{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	h.save(ctx, sess, func(s *session.Session) { s.Registration = reg })
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	h.emit(events.UserRegistered, sess, func(e *events.Event) {
		e.Email = reg.Email
		e.Attributes = map[string]string{"username": reg.Username}
	})

	c.JSON(http.StatusCreated, dto.FlowResponse{
		Step:    string(reg.Step),
		Message: reg.Notice,
		Email:   reg.Email,
	})
}

// VerifyRegistration handles POST /api/v1/auth/register/verify
// A valid OTP signs the new account in
func (h *AuthHandler) VerifyRegistration(c *gin.Context) {
	h.logCall(c, "VerifyRegistration")
	sess := CurrentSession(c)
	ctx := c.Request.Context()

	reg := sess.Registration
	if reg == nil {
		h.fail(c, sess, &workflow.TransitionError{Flow: "registration", Step: "none", Action: "verify"})
		return
	}

	var req dto.OTPRequest
	if err := bind(c, &req, binding.JSON); err != nil {
		h.fail(c, sess, err)
		return
	}

	result, err := reg.Verify(ctx, h.backend, req.OTP)
	if err != nil {
		h.save(ctx, sess, func(s *session.Session) { s.Registration = reg })
		h.fail(c, sess, err)
		return
	}
	if err := h.sessions.Login(ctx, sess, result.Token, result.User); err != nil {
		h.fail(c, sess, err)
		return
	}

	resp := sessionResponse(sess)
	resp.Redirect = HomePath
	c.JSON(http.StatusOK, resp)
}

// ResendOTP handles POST /api/v1/auth/register/resend
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	h.logCall(c, "ResendOTP")
	sess := CurrentSession(c)
	ctx := c.Request.Context()

	reg := sess.Registration
	if reg == nil {
		h.fail(c, sess, &workflow.TransitionError{Flow: "registration", Step: "none", Action: "resend"})
		return
	}

	message, err := reg.Resend(ctx, h.backend)
	h.save(ctx, sess, func(s *session.Session) { s.Registration = reg })
	if err != nil {
		h.fail(c, sess, err)
		return
	}
	c.JSON(http.StatusOK, dto.FlowResponse{Step: string(reg.Step), Message: message, Email: reg.Email})
}

// RequestPasswordReset handles POST /api/v1/auth/password-reset/request
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	h.logCall(c, "RequestPasswordReset")
	sess := CurrentSession(c)

	var req dto.PasswordResetEmailRequest
	if err := bind(c, &req, binding.JSON); err != nil {
		h.fail(c, sess, err)
		return
	}

	reset := sess.PasswordReset
	if reset == nil || reset.Step != workflow.ResetRequestEmail {
		reset = workflow.NewPasswordReset()
	}
	h.resetStep(c, sess, reset, reset.Request(c.Request.Context(), h.backend, req.Email))
}

// VerifyPasswordReset handles POST /api/v1/auth/password-reset/verify
func (h *AuthHandler) VerifyPasswordReset(c *gin.Context) {
	h.logCall(c, "VerifyPasswordReset")
	sess := CurrentSession(c)

	reset, ok := h.currentReset(c, sess, "verify")
	if !ok {
		return
	}

	var req dto.OTPRequest
	if err := bind(c, &req, binding.JSON); err != nil {
		h.fail(c, sess, err)
		return
	}
	h.resetStep(c, sess, reset, reset.Verify(c.Request.Context(), h.backend, req.OTP))
}

// ConfirmPasswordReset handles POST /api/v1/auth/password-reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	h.logCall(c, "ConfirmPasswordReset")
	sess := CurrentSession(c)
	ctx := c.Request.Context()

	reset, ok := h.currentReset(c, sess, "confirm")
	if !ok {
		return
	}

	var req dto.PasswordResetConfirmRequest
	if err := bind(c, &req, binding.JSON); err != nil {
		h.fail(c, sess, err)
		return
	}

	if err := reset.Confirm(ctx, h.backend, req.Password, req.ConfirmPassword); err != nil {
		h.resetStep(c, sess, reset, err)
		return
	}

	h.save(ctx, sess, func(s *session.Session) { s.PasswordReset = nil })
	h.emit(events.PasswordResetCompleted, sess, func(e *events.Event) {
		e.Email = reset.Email
	})

	c.JSON(http.StatusOK, gin.H{
		"step":     string(reset.Step),
		"message":  reset.Notice,
		"redirect": LoginPath,
	})
}

// BackPasswordReset handles POST /api/v1/auth/password-reset/back
func (h *AuthHandler) BackPasswordReset(c *gin.Context) {
	h.logCall(c, "BackPasswordReset")
	sess := CurrentSession(c)

	reset, ok := h.currentReset(c, sess, "go back")
	if !ok {
		return
	}
	h.resetStep(c, sess, reset, reset.Back())
}

func (h *AuthHandler) currentReset(c *gin.Context, sess *session.Session, action string) (*workflow.PasswordReset, bool) {
	if sess.PasswordReset == nil {
		h.fail(c, sess, &workflow.TransitionError{Flow: "password reset", Step: "none", Action: action})
		return nil, false
	}
	return sess.PasswordReset, true
}

// resetStep saves the reset state and reports the outcome of one step
func (h *AuthHandler) resetStep(c *gin.Context, sess *session.Session, reset *workflow.PasswordReset, err error) {
	h.save(c.Request.Context(), sess, func(s *session.Session) { s.PasswordReset = reset })
	if err != nil {
		h.fail(c, sess, err)
		return
	}

	c.JSON(http.StatusOK, dto.FlowResponse{
		Step:    string(reset.Step),
		Message: reset.Notice,
		Email:   reset.Email,
	})
}
