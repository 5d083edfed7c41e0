// Package validation provides input validation utilities
package validation

import (
	"regexp"
	"unicode"

	"github.com/abdanbarkaath/marketlink/internal/models"
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return models.NewValidationError("Password must be at least 12 characters long")
	}
	if len(password) > 128 {
		return models.NewValidationError("Password must not exceed 128 characters")
	}

	hasUpper := false
	hasLower := false
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if !hasUpper {
		return models.NewValidationError("Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return models.NewValidationError("Password must contain at least one lowercase letter")
	}

	if !regexp.MustCompile(`[0-9]`).MatchString(password) {
		return models.NewValidationError("Password must contain at least one digit")
	}

	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return models.NewValidationError("Invalid email format")
	}
	if len(email) > 254 {
		return models.NewValidationError("Email must not exceed 254 characters")
	}
	return nil
}

// ValidateUSState checks a two-letter state/region code.
func ValidateUSState(state string) error {
	if state == "" {
		return nil
	}
	if !regexp.MustCompile(`^[A-Z]{2}$`).MatchString(state) {
		return models.NewValidationError("State must be a two-letter uppercase code")
	}
	return nil
}
