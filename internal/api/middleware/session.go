package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// Context keys set by this package.
const (
	ContextKeySession = "store_session"
	ContextKeyUser    = "current_user"
)

// Session acquires a storage session before the handler runs and releases it
// once the handler returns, whatever the outcome.
func Session(provider ports.StoreProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := provider.Acquire(c.Request().Context())
			if err != nil {
				return fmt.Errorf("acquire store session: %w", err)
			}
			defer sess.Release()

			c.Set(ContextKeySession, sess)
			return next(c)
		}
	}
}

// SessionFrom returns the session installed by Session, or nil.
func SessionFrom(c echo.Context) ports.StoreSession {
	sess, _ := c.Get(ContextKeySession).(ports.StoreSession)
	return sess
}

// UserFrom returns the user installed by Auth, or nil.
func UserFrom(c echo.Context) *domain.User {
	user, _ := c.Get(ContextKeyUser).(*domain.User)
	return user
}
