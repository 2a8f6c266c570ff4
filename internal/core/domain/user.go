package domain

import "time"

// User models a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TokenTypeBearer is the only token type the service issues.
const TokenTypeBearer = "bearer"

// AccessToken is a signed, time-limited credential minted at login.
type AccessToken struct {
	Value     string
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Lifetime is the validity window the token was minted with.
func (t AccessToken) Lifetime() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}
