package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// Issuer mints and validates HMAC-signed JWTs.
type Issuer struct {
	secret []byte
	method *jwt.SigningMethodHMAC
}

// Ensure Issuer implements the TokenIssuer port.
var _ ports.TokenIssuer = (*Issuer)(nil)

// NewIssuer builds an Issuer for one of HS256, HS384 or HS512.
func NewIssuer(secret, algorithm string) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token: unsupported signing algorithm %q", algorithm)
	}
	return &Issuer{secret: []byte(secret), method: method}, nil
}

// Mint signs a token for subject that expires at issuedAt+ttl.
func (i *Issuer) Mint(subject string, issuedAt time.Time, ttl time.Duration) (domain.AccessToken, error) {
	if subject == "" {
		return domain.AccessToken{}, errors.New("token: empty subject")
	}
	if ttl <= 0 {
		return domain.AccessToken{}, fmt.Errorf("token: non-positive ttl %s", ttl)
	}

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("sign token: %w", err)
	}

	return domain.AccessToken{
		Value:     signed,
		Type:      domain.TokenTypeBearer,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// Validate checks the signature and that now is before the expiry, and
// returns the subject.
func (i *Issuer) Validate(raw string, now time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.Subject, nil
}
