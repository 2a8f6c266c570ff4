package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/auth-service/internal/core/credential"
	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/infrastructure/token"
)

type stubUserRepo struct {
	users   map[string]*domain.User
	nextID  int64
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUsernameExists
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = r.nextID
	copy.CreatedAt = time.Now().UTC()
	r.users[copy.Username] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

type stubThrottle struct {
	blocked  bool
	failures map[string]int
	resets   int
}

func (t *stubThrottle) Allowed(context.Context, string) (bool, error) { return !t.blocked, nil }

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	if t.failures == nil {
		t.failures = make(map[string]int)
	}
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(context.Context, string) error {
	t.resets++
	return nil
}

func newTestService(t *testing.T, throttle ports.LoginThrottle) *AuthService {
	t.Helper()
	passwords, err := credential.NewManager(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("credential manager: %v", err)
	}
	issuer, err := token.NewIssuer("secret", "HS256")
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	return NewAuthService(passwords, issuer, throttle, 30*time.Minute, zerolog.Nop())
}

var alice = ports.RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Passw0rd"}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, nil)

	user, err := svc.Register(context.Background(), repo, alice)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 || user.Username != "alice" || user.Email != "alice@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "" || user.PasswordHash == alice.Password {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(alice.Password)); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, nil)

	in := alice
	in.Password = "weak"
	if _, err := svc.Register(context.Background(), repo, in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatalf("nothing should have been persisted")
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	svc := newTestService(t, nil)

	if _, err := svc.Register(context.Background(), newStubUserRepo(), ports.RegisterInput{Password: "Passw0rd"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Register_InvalidIdentity(t *testing.T) {
	cases := map[string]ports.RegisterInput{
		"bad username":   {Username: "a b!", Email: "alice@x.com", Password: "Passw0rd"},
		"short username": {Username: "al", Email: "alice@x.com", Password: "Passw0rd"},
		"bad email":      {Username: "alice", Email: "not-an-email", Password: "Passw0rd"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newStubUserRepo()
			svc := newTestService(t, nil)

			user, err := svc.Register(context.Background(), repo, in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got user=%+v err=%v", user, err)
			}
			if len(repo.users) != 0 {
				t.Fatalf("nothing should have been persisted")
			}
		})
	}
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, nil)

	if _, err := svc.Register(context.Background(), repo, alice); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	sameName := alice
	sameName.Email = "other@x.com"
	if _, err := svc.Register(context.Background(), repo, sameName); !errors.Is(err, domain.ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}

	sameEmail := alice
	sameEmail.Username = "alice2"
	_, err := svc.Register(context.Background(), repo, sameEmail)
	if !errors.Is(err, domain.ErrEmailExists) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{}
	svc := newTestService(t, throttle)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Register(context.Background(), repo, alice); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	tok, err := svc.Login(context.Background(), repo, "alice", "Passw0rd")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if tok.Value == "" || tok.Type != domain.TokenTypeBearer {
		t.Fatalf("unexpected token: %+v", tok)
	}
	if !tok.ExpiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry: %v", tok.ExpiresAt)
	}
	if throttle.resets != 1 {
		t.Fatalf("expected throttle reset on success")
	}

	user, err := svc.Authenticate(context.Background(), repo, tok.Value)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{}
	svc := newTestService(t, throttle)

	if _, err := svc.Register(context.Background(), repo, alice); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, wrongPassword := svc.Login(context.Background(), repo, "alice", "WrongPassword123!")
	_, unknownUser := svc.Login(context.Background(), repo, "ghost", "Passw0rd")

	if wrongPassword != domain.ErrInvalidCredentials || unknownUser != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPassword, unknownUser)
	}
	if throttle.failures["alice"] != 1 || throttle.failures["ghost"] != 1 {
		t.Fatalf("expected failures recorded for both, got %v", throttle.failures)
	}
}

func TestAuthService_Login_EmptyCredentials(t *testing.T) {
	svc := newTestService(t, nil)

	if _, err := svc.Login(context.Background(), newStubUserRepo(), "", "Passw0rd"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, &stubThrottle{blocked: true})

	if _, err := svc.Register(context.Background(), repo, alice); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), repo, "alice", "Passw0rd"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("db down")
	svc := newTestService(t, nil)

	_, err := svc.Login(context.Background(), repo, "alice", "Passw0rd")
	if err == nil || errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestAuthService_Authenticate_Expired(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, nil)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Register(context.Background(), repo, alice); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	tok, err := svc.Login(context.Background(), repo, "alice", "Passw0rd")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	now = now.Add(31 * time.Minute)
	if _, err := svc.Authenticate(context.Background(), repo, tok.Value); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_Authenticate_UserGone(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, nil)

	if _, err := svc.Register(context.Background(), repo, alice); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	tok, err := svc.Login(context.Background(), repo, "alice", "Passw0rd")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	delete(repo.users, "alice")
	if _, err := svc.Authenticate(context.Background(), repo, tok.Value); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
