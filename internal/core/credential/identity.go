package credential

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/99minutos/auth-service/internal/core/domain"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 50
	MaxEmailLen    = 255
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailCheck      = validator.New()
)

// ValidateUsername requires 3 to 50 letters, digits or underscores.
func ValidateUsername(username string) error {
	if n := len(username); n < MinUsernameLen || n > MaxUsernameLen {
		return fmt.Errorf("%w: username must be between %d and %d characters", domain.ErrValidation, MinUsernameLen, MaxUsernameLen)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username may only contain letters, digits and underscores", domain.ErrValidation)
	}
	return nil
}

// ValidateEmail checks address syntax and length.
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLen {
		return fmt.Errorf("%w: email must be at most %d characters", domain.ErrValidation, MaxEmailLen)
	}
	if err := emailCheck.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: email must be a valid email", domain.ErrValidation)
	}
	return nil
}
