package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/api/middleware"
	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// ctxUsers returns the repository of the request's storage session. A
// missing session means the route was wired without middleware.Session.
func ctxUsers(c echo.Context) (ports.UserRepository, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil, errors.New("no store session in request context")
	}
	return sess.Users(), nil
}

// ctxUser returns the user resolved by middleware.Auth.
func ctxUser(c echo.Context) (*domain.User, error) {
	user := middleware.UserFrom(c)
	if user == nil {
		return nil, middleware.ErrNotAuthenticated
	}
	return user, nil
}
