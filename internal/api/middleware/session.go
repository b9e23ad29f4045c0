package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oblivions/storefront/internal/core/domain"
	"github.com/oblivions/storefront/internal/core/ports"
)

const sessionContextKey = "session"

// LoadSession resolves the session named by the cookie and stores it on the
// context. Unknown, expired or tampered cookies leave the request anonymous
// and are cleared; store failures abort the request.
func LoadSession(authority ports.SessionAuthority, cookies *CookieCodec, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := cookies.Read(c)
			if sid == "" {
				if _, err := c.Cookie(SessionCookieName); err == nil {
					cookies.Clear(c)
				}
				return next(c)
			}

			sess, err := authority.Resolve(c.Request().Context(), sid)
			switch {
			case err == nil:
				SetSession(c, sess)
			case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExpired):
				log.Debug().Err(err).Msg("stale session cookie")
				cookies.Clear(c)
			default:
				return err
			}
			return next(c)
		}
	}
}

// SessionFrom returns the live session attached to the request, or nil.
func SessionFrom(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionContextKey).(*domain.Session)
	return sess
}

// SessionID returns the id of the attached session, or "".
func SessionID(c echo.Context) string {
	if sess := SessionFrom(c); sess != nil {
		return sess.ID
	}
	return ""
}

// SetSession attaches sess to the request. A nil sess detaches it.
func SetSession(c echo.Context, sess *domain.Session) {
	if sess == nil {
		c.Set(sessionContextKey, nil)
		c.Set("role", "")
		return
	}
	c.Set(sessionContextKey, sess)
	c.Set("role", sess.Role)
}
