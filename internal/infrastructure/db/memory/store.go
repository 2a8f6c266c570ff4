// Package memory provides an in-process user store for tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// Store keeps users in maps guarded by a mutex. It satisfies both
// ports.StoreProvider and ports.UserRepository.
type Store struct {
	mu         sync.RWMutex
	byID       map[int64]*domain.User
	byUsername map[string]int64
	byEmail    map[string]int64
	nextID     int64
	now        func() time.Time
}

var (
	_ ports.StoreProvider  = (*Store)(nil)
	_ ports.UserRepository = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		byID:       make(map[int64]*domain.User),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		now:        time.Now,
	}
}

func (s *Store) Acquire(context.Context) (ports.StoreSession, error) {
	return session{store: s}, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[user.Username]; ok {
		return nil, domain.ErrUsernameExists
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return nil, domain.ErrEmailExists
	}

	s.nextID++
	created := *user
	created.ID = s.nextID
	created.CreatedAt = s.now().UTC()

	s.byID[created.ID] = &created
	s.byUsername[created.Username] = created.ID
	s.byEmail[created.Email] = created.ID

	out := created
	return &out, nil
}

func (s *Store) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s.copyOf(id), nil
}

// copyOf must be called with the lock held.
func (s *Store) copyOf(id int64) *domain.User {
	u := *s.byID[id]
	return &u
}

type session struct {
	store *Store
}

func (s session) Users() ports.UserRepository { return s.store }

func (session) Release() {}
