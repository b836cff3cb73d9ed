package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/session"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
)

// LoginPath is where unauthenticated users are sent
const LoginPath = "/login"

var workflowMessages = map[error]string{
	workflow.ErrLoginRequired:  "Please log in to apply for this job",
	workflow.ErrAlreadyApplied: "You have already applied for this job",
	workflow.ErrJobClosed:      "This job is no longer accepting applications",
	workflow.ErrSubmitInFlight: "Your application is already being submitted",
}

// statusFor maps an error to the HTTP status returned to the browser
func statusFor(err error) int {
	var (
		validationErr *domain.ValidationError
		transitionErr *workflow.TransitionError
		apiErr        *domain.APIError
		networkErr    *domain.NetworkError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrLoginRequired), errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, workflow.ErrAlreadyApplied),
		errors.Is(err, workflow.ErrJobClosed),
		errors.Is(err, workflow.ErrSubmitInFlight),
		errors.As(err, &transitionErr):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		if apiErr.Status >= http.StatusInternalServerError || apiErr.Status < http.StatusBadRequest {
			return http.StatusBadGateway
		}
		return apiErr.Status
	case errors.As(err, &networkErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	for target, text := range workflowMessages {
		if errors.Is(err, target) {
			return text
		}
	}
	var transitionErr *workflow.TransitionError
	if errors.As(err, &transitionErr) {
		return "This step is not available right now. Please start again"
	}
	return domain.UserMessage(err)
}

// fail writes the error response for err and logs it. A token the API
// rejected ends the session.
func (b *base) fail(c *gin.Context, sess *session.Session, err error) {
	status := statusFor(err)
	body := gin.H{"error": messageFor(err)}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) && validationErr.Field != "" {
		body["field"] = validationErr.Field
	}

	if status == http.StatusUnauthorized {
		body["redirect"] = LoginPath
		var authErr *domain.AuthError
		if errors.As(err, &authErr) && sess.Authenticated() {
			b.expire(c.Request.Context(), sess)
		}
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	b.logger.Log(c.Request.Context(), level, "Request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	)

	c.JSON(status, body)
}

func (b *base) expire(ctx context.Context, sess *session.Session) {
	if err := b.sessions.Logout(ctx, sess); err != nil {
		b.logger.Error("Failed to end rejected session",
			slog.String("session_id", sess.ID),
			slog.Any("error", err),
		)
	}
}

var fieldNamesOnce sync.Once

// registerFieldNames makes validation errors report json or form names
func registerFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
	})
}

// bind decodes the request into obj and converts failures to validation errors
func bind(c *gin.Context, obj any, b binding.Binding) error {
	registerFieldNames()
	if err := c.ShouldBindWith(obj, b); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("", "Invalid request body")
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
