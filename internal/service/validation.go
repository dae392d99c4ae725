package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopsphere/shopsphere-backend/internal/apperrors"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperrors.NewValidation("email", "must be a valid email address")
	}
	return nil
}

// validatePassword enforces the signup strength rule: at least 8 characters
// with an upper-case letter, a lower-case letter, a digit, and a symbol.
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.NewValidation("password", "must be at least 8 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return apperrors.NewValidation("password",
			"must contain upper and lower case letters, a digit and a special character")
	}
	return nil
}

func validateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidation(field, "must not be empty")
	}
	return nil
}
