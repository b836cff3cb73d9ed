// Package workflow holds the multi-step user flows of the portal: applying
// to a job, signing in, registering with OTP verification and resetting a
// password. Each flow is an explicit state value with transition methods;
// a method called from a state that does not allow it returns a
// *TransitionError and leaves the state untouched.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

var validate = validator.New()

// TransitionError reports an action that the current step does not accept
type TransitionError struct {
	Flow   string
	Step   string
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s while in step %s", e.Flow, e.Action, e.Step)
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func requireField(field, value, label string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(field, label+" is required")
	}
	return nil
}

func checkEmail(email string) error {
	if err := requireField("email", email, "Email"); err != nil {
		return err
	}
	if !validEmail(email) {
		return domain.NewValidationError("email", "Please enter a valid email address")
	}
	return nil
}

// messageRule rewrites a server message containing match into text
type messageRule struct {
	match string
	text  string
}

// mapServerMessage replaces the message of an APIError when it contains one
// of the rule substrings. Other errors are returned unchanged.
func mapServerMessage(err error, rules []messageRule) error {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	lower := strings.ToLower(apiErr.Message)
	for _, rule := range rules {
		if strings.Contains(lower, strings.ToLower(rule.match)) {
			return &domain.APIError{Status: apiErr.Status, Message: rule.text, Err: apiErr}
		}
	}
	return err
}
