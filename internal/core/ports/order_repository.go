package ports

import (
	"context"

	"github.com/oblivions/storefront/internal/core/domain"
)

// OrderRepository exposes orders to the admin dashboard. Create exists for
// seeding only; the storefront has no checkout.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order, items []domain.OrderItem) (*domain.Order, error)
	// List returns all orders newest first with customer fields joined.
	List(ctx context.Context) ([]domain.Order, error)
	// ListItems returns the lines of an order, or domain.ErrOrderNotFound
	// when no such order exists.
	ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
}
