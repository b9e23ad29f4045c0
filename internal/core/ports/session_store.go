package ports

import (
	"context"

	"github.com/oblivions/storefront/internal/core/domain"
)

// SessionStore persists sessions by id. Get returns domain.ErrSessionNotFound
// for unknown ids; expiry is judged by the caller, not the store.
type SessionStore interface {
	Save(ctx context.Context, sess *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
