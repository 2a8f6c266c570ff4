package ports

import (
	"context"
	"time"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthService implements registration, login and bearer authentication. The
// repository is passed per call so each request works on its own session.
type AuthService interface {
	Register(ctx context.Context, users UserRepository, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, users UserRepository, username, password string) (domain.AccessToken, error)
	Authenticate(ctx context.Context, users UserRepository, rawToken string) (*domain.User, error)
}

// PasswordManager hashes and verifies passwords.
type PasswordManager interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer mints and validates signed session tokens.
type TokenIssuer interface {
	Mint(subject string, issuedAt time.Time, ttl time.Duration) (domain.AccessToken, error)
	// Validate returns the token subject. Failures wrap domain.ErrTokenExpired
	// or domain.ErrTokenInvalid.
	Validate(token string, now time.Time) (string, error)
}

// LoginThrottle tracks failed logins per username.
type LoginThrottle interface {
	Allowed(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
