package workflow

import (
	"unicode"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/domain"
)

// MinPasswordLength is the shortest password accepted by registration and reset
const MinPasswordLength = 8

// PasswordPolicyMessage describes the password rules to the user
const PasswordPolicyMessage = "Password must be at least 8 characters and include an uppercase letter, a lowercase letter, a number and a special character"

// CheckPassword applies the password policy shared by every flow that sets a password
func CheckPassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return domain.NewValidationError("password", PasswordPolicyMessage)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return domain.NewValidationError("password", PasswordPolicyMessage)
	}
	return nil
}

// checkNewPassword validates a password and its confirmation
func checkNewPassword(password, confirm string) error {
	if err := requireField("password", password, "Password"); err != nil {
		return err
	}
	if err := requireField("confirm_password", confirm, "Password confirmation"); err != nil {
		return err
	}
	if password != confirm {
		return domain.NewValidationError("confirm_password", "Passwords do not match")
	}
	return CheckPassword(password)
}
