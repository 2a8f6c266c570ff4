package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// UserRepository defines persistence operations for users.
//
// Create must rely on the store's uniqueness constraints and report
// domain.ErrUsernameExists / domain.ErrEmailExists on violation. FindByUsername
// returns domain.ErrUserNotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// StoreSession is a storage handle scoped to a single request.
type StoreSession interface {
	Users() UserRepository
	// Release returns the underlying connection. It is safe to call once per
	// acquired session, on every exit path.
	Release()
}

// StoreProvider hands out request-scoped sessions.
type StoreProvider interface {
	Acquire(ctx context.Context) (StoreSession, error)
	Ping(ctx context.Context) error
}
