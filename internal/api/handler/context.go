package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/oblivions/storefront/internal/core/domain"
)

// SessionCookies writes and clears the session cookie.
type SessionCookies interface {
	Write(c echo.Context, sess *domain.Session) error
	Clear(c echo.Context)
}

// bind decodes the request body into req and runs the registered validator.
// Malformed bodies become a validation error instead of echo's generic 400.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
