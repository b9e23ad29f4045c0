package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/oblivions/storefront/internal/api/metrics"
	"github.com/oblivions/storefront/internal/core/domain"
)

// RequireAuthenticated lets the request through only with a live
// authenticated session.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !SessionFrom(c).Authenticated() {
				metrics.AuthzDenialsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthorized
			}
			return next(c)
		}
	}
}

// RequireRole enforces an exact role match. Mount it after
// RequireAuthenticated.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if !sess.Authenticated() {
				metrics.AuthzDenialsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthorized
			}
			if sess.Role != role {
				metrics.AuthzDenialsTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
