package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oblivions/storefront/internal/api/metrics"
	"github.com/oblivions/storefront/internal/core/domain"
)

const (
	HeaderCSRFToken  = "CSRF-Token"
	HeaderXCSRFToken = "X-CSRF-Token"
)

// CSRF rejects state-changing requests whose token header does not match
// the token bound to the live session. Requests without a live session
// always fail.
func CSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isSafeMethod(c.Request().Method) {
				return next(c)
			}

			token := c.Request().Header.Get(HeaderCSRFToken)
			if token == "" {
				token = c.Request().Header.Get(HeaderXCSRFToken)
			}

			sess := SessionFrom(c)
			if sess == nil || token == "" || sess.CSRFToken == "" ||
				subtle.ConstantTimeCompare([]byte(token), []byte(sess.CSRFToken)) != 1 {
				metrics.CSRFRejectionsTotal.Inc()
				return domain.ErrCSRF
			}
			return next(c)
		}
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
