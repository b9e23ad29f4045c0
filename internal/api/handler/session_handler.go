package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oblivions/storefront/internal/api/metrics"
	"github.com/oblivions/storefront/internal/api/middleware"
	"github.com/oblivions/storefront/internal/core/ports"
)

type SessionHandler struct {
	sessions ports.SessionAuthority
	cookies  SessionCookies
}

func NewSessionHandler(sessions ports.SessionAuthority, cookies SessionCookies) *SessionHandler {
	return &SessionHandler{sessions: sessions, cookies: cookies}
}

// CSRFToken returns the token bound to the caller's session, starting an
// anonymous session when there is none.
//
// @Summary      Get CSRF token
// @Tags         session
// @Produce      json
// @Success      200  {object}  csrfTokenResponse
// @Router       /csrf-token [get]
func (h *SessionHandler) CSRFToken(c echo.Context) error {
	current := middleware.SessionID(c)

	sess, err := h.sessions.Begin(c.Request().Context(), current)
	if err != nil {
		return err
	}
	if sess.ID != current {
		if err := h.cookies.Write(c, sess); err != nil {
			return err
		}
		middleware.SetSession(c, sess)
		metrics.SessionsIssuedTotal.WithLabelValues("anonymous").Inc()
	}

	return c.JSON(http.StatusOK, csrfTokenResponse{CSRFToken: sess.CSRFToken})
}

// Current reports the server's view of the caller's session. Clients use it
// to refresh their cached display state.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if !sess.Authenticated() {
		return c.JSON(http.StatusOK, sessionResponse{Authenticated: false})
	}
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: true,
		Name:          sess.Name,
		Role:          sess.Role,
	})
}
