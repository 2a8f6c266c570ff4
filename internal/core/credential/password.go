// Package credential turns plaintext passwords into bcrypt digests and
// verifies them later.
//
// bcrypt only looks at the first 72 bytes of its input, so longer passwords
// are rejected up front instead of being silently truncated.
package credential

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/auth-service/internal/core/domain"
)

const (
	MinPasswordBytes = 8
	MaxPasswordBytes = 72
)

// Manager hashes and verifies passwords with a fixed bcrypt cost.
type Manager struct {
	cost  int
	dummy []byte
}

// NewManager returns a Manager using the given bcrypt cost.
func NewManager(cost int) (*Manager, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("credential: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	// Compared against when there is no stored digest, so a lookup miss
	// costs the same as a wrong password.
	dummy, err := bcrypt.GenerateFromPassword([]byte("Unused-Passw0rd"), cost)
	if err != nil {
		return nil, fmt.Errorf("credential: prepare dummy digest: %w", err)
	}
	return &Manager{cost: cost, dummy: dummy}, nil
}

// Hash validates plaintext and returns a salted bcrypt digest. Two calls with
// the same input return different digests.
func (m *Manager) Hash(plaintext string) (string, error) {
	if err := ValidatePassword(plaintext); err != nil {
		return "", err
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), m.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. It never fails: oversize
// input, an empty or malformed digest and a mismatch all yield false. An
// empty digest is still checked against a dummy so the caller pays the full
// bcrypt cost.
func (m *Manager) Verify(plaintext, digest string) bool {
	if len(plaintext) > MaxPasswordBytes {
		return false
	}
	if digest == "" {
		_ = bcrypt.CompareHashAndPassword(m.dummy, []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// ValidatePassword enforces the byte-length window and requires at least one
// uppercase letter, one lowercase letter and one digit.
func ValidatePassword(plaintext string) error {
	if n := len(plaintext); n < MinPasswordBytes || n > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be between %d and %d bytes", domain.ErrValidation, MinPasswordBytes, MaxPasswordBytes)
	}

	var upper, lower, digit bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !upper:
		return fmt.Errorf("%w: password must contain an uppercase letter", domain.ErrValidation)
	case !lower:
		return fmt.Errorf("%w: password must contain a lowercase letter", domain.ErrValidation)
	case !digit:
		return fmt.Errorf("%w: password must contain a digit", domain.ErrValidation)
	}
	return nil
}
