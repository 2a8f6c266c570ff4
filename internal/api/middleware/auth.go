package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/api/metrics"
	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// ErrNotAuthenticated is returned when no bearer credentials were sent.
var ErrNotAuthenticated = fmt.Errorf("%w: not authenticated", domain.ErrUnauthorized)

// Auth resolves the bearer token to a user and stores it under
// ContextKeyUser. It must run after Session.
func Auth(svc ports.AuthService, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return ErrNotAuthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return ErrNotAuthenticated
			}

			sess := SessionFrom(c)
			if sess == nil {
				return errors.New("auth middleware: no store session in context")
			}

			user, err := svc.Authenticate(c.Request().Context(), sess.Users(), strings.TrimSpace(parts[1]))
			m.TokenValidations.WithLabelValues(validationResult(err)).Inc()
			if err != nil {
				return err
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

func validationResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, domain.ErrTokenExpired):
		return metrics.ResultExpired
	case errors.Is(err, domain.ErrUnauthorized):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
