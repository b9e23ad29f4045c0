package ports

import (
	"context"

	"github.com/oblivions/storefront/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by a successful register or login: the user and
// the freshly issued authenticated session.
type AuthResult struct {
	User    *domain.User
	Session *domain.Session
}

type AuthService interface {
	Register(ctx context.Context, sessionID string, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, sessionID, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// SessionAuthority owns the session lifecycle and the per-session CSRF token.
type SessionAuthority interface {
	// Begin returns the live session for id, or a new anonymous one.
	Begin(ctx context.Context, id string) (*domain.Session, error)
	// Authenticate replaces prevID with a new session bound to user.
	Authenticate(ctx context.Context, prevID string, user *domain.User) (*domain.Session, error)
	// Resolve returns the live session for id or ErrSessionNotFound / ErrSessionExpired.
	Resolve(ctx context.Context, id string) (*domain.Session, error)
	// Destroy removes the session; unknown ids are not an error.
	Destroy(ctx context.Context, id string) error
}
