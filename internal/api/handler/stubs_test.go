package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/oblivions/storefront/internal/api/middleware"
	"github.com/oblivions/storefront/internal/core/domain"
	"github.com/oblivions/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	registerFn func(ctx context.Context, sessionID string, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, sessionID, email, password string) (*ports.AuthResult, error)
	logoutFn   func(ctx context.Context, sessionID string) error
}

func (s *stubAuthService) Register(ctx context.Context, sessionID string, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, sessionID, in)
}

func (s *stubAuthService) Login(ctx context.Context, sessionID, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, sessionID, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID string) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, sessionID)
}

type stubCookies struct {
	written []*domain.Session
	cleared int
}

func (s *stubCookies) Write(_ echo.Context, sess *domain.Session) error {
	s.written = append(s.written, sess)
	return nil
}

func (s *stubCookies) Clear(echo.Context) { s.cleared++ }

type stubAuthority struct {
	beginFn func(ctx context.Context, id string) (*domain.Session, error)
}

func (s *stubAuthority) Begin(ctx context.Context, id string) (*domain.Session, error) {
	return s.beginFn(ctx, id)
}

func (s *stubAuthority) Authenticate(context.Context, string, *domain.User) (*domain.Session, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthority) Resolve(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}

func (s *stubAuthority) Destroy(context.Context, string) error { return nil }

type stubAdminService struct {
	users    []domain.User
	orders   []domain.Order
	items    map[string][]domain.OrderItem
	err      error
	lastItem string
}

func (s *stubAdminService) ListUsers(context.Context) ([]domain.User, error) {
	return s.users, s.err
}

func (s *stubAdminService) ListOrders(context.Context) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubAdminService) ListOrderItems(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	s.lastItem = orderID
	if s.err != nil {
		return nil, s.err
	}
	items, ok := s.items[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return items, nil
}

func newJSONContext(method, target, body string, sess *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		middleware.SetSession(c, sess)
	}
	return c, rec
}
