package ports

import (
	"context"

	"github.com/oblivions/storefront/internal/core/domain"
)

// UserRepository is the credential store contract. Create must enforce
// email uniqueness itself and report a collision as domain.ErrUserExists;
// callers only pre-check as a courtesy.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
