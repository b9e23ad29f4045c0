package ports

import (
	"context"

	"github.com/oblivions/storefront/internal/core/domain"
)

// AdminService defines the read-only dashboard queries.
type AdminService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
}
