package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/credential"
	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// AuthService implements registration, login and bearer authentication.
type AuthService struct {
	passwords ports.PasswordManager
	tokens    ports.TokenIssuer
	throttle  ports.LoginThrottle
	tokenTTL  time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService wires the service. A nil throttle disables login throttling.
func NewAuthService(
	passwords ports.PasswordManager,
	tokens ports.TokenIssuer,
	throttle ports.LoginThrottle,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	if throttle == nil {
		throttle = noopThrottle{}
	}
	return &AuthService{
		passwords: passwords,
		tokens:    tokens,
		throttle:  throttle,
		tokenTTL:  tokenTTL,
		now:       time.Now,
		log:       log,
	}
}

func (s *AuthService) Register(ctx context.Context, users ports.UserRepository, in ports.RegisterInput) (*domain.User, error) {
	if err := credential.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := credential.ValidateEmail(in.Email); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	created, err := users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, users ports.UserRepository, username, password string) (domain.AccessToken, error) {
	if username == "" || password == "" {
		return domain.AccessToken{}, domain.ErrInvalidCredentials
	}

	allowed, err := s.throttle.Allowed(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, continuing")
	} else if !allowed {
		return domain.AccessToken{}, domain.ErrTooManyAttempts
	}

	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return domain.AccessToken{}, fmt.Errorf("login: %w", err)
		}
		s.passwords.Verify(password, "")
		s.recordFailure(ctx, username)
		return domain.AccessToken{}, domain.ErrInvalidCredentials
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, username)
		return domain.AccessToken{}, domain.ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
	}

	tok, err := s.tokens.Mint(user.Username, s.now(), s.tokenTTL)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("login: %w", err)
	}
	return tok, nil
}

func (s *AuthService) Authenticate(ctx context.Context, users ports.UserRepository, rawToken string) (*domain.User, error) {
	subject, err := s.tokens.Validate(rawToken, s.now())
	if err != nil {
		return nil, err
	}

	user, err := users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}

type noopThrottle struct{}

func (noopThrottle) Allowed(context.Context, string) (bool, error) { return true, nil }
func (noopThrottle) RecordFailure(context.Context, string) error   { return nil }
func (noopThrottle) Reset(context.Context, string) error           { return nil }
