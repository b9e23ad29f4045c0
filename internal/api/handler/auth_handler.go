package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oblivions/storefront/internal/api/metrics"
	"github.com/oblivions/storefront/internal/api/middleware"
	"github.com/oblivions/storefront/internal/core/domain"
	"github.com/oblivions/storefront/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     SessionCookies
}

func NewAuthHandler(authService ports.AuthService, cookies SessionCookies) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Register creates a user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        CSRF-Token  header    string           true  "CSRF token from /api/csrf-token"
// @Param        body        body      registerRequest  true  "Registration details"
// @Success      200         {object}  registerResponse
// @Failure      400         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Failure      409         {object}  errorResponse
// @Failure      500         {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid_input").Inc()
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), middleware.SessionID(c), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	if err := h.establish(c, res.Session); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, registerResponse{
		Message: "Registration successful",
		User: publicUser{
			ID:    res.User.ID,
			Name:  res.User.Name,
			Email: res.User.Email,
			Role:  res.User.Role,
		},
	})
}

// Login authenticates by email and password and rotates the session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        CSRF-Token  header    string        true  "CSRF token from /api/csrf-token"
// @Param        body        body      loginRequest  true  "Login credentials"
// @Success      200         {object}  loginResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_input").Inc()
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), middleware.SessionID(c), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	if err := h.establish(c, res.Session); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		Name:    res.Session.Name,
		Role:    res.Session.Role,
	})
}

// Logout destroys the current session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Param        CSRF-Token  header    string  true  "CSRF token from /api/csrf-token"
// @Success      200         {object}  messageResponse
// @Failure      403         {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), middleware.SessionID(c)); err != nil {
		return err
	}
	h.cookies.Clear(c)
	middleware.SetSession(c, nil)

	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) establish(c echo.Context, sess *domain.Session) error {
	if err := h.cookies.Write(c, sess); err != nil {
		return err
	}
	middleware.SetSession(c, sess)
	metrics.SessionsIssuedTotal.WithLabelValues("authenticated").Inc()
	return nil
}

func registerResult(err error) string {
	switch {
	case domain.IsValidation(err):
		return "invalid_input"
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case domain.IsValidation(err):
		return "invalid_input"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
