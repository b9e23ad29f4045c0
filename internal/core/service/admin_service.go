package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/oblivions/storefront/internal/core/domain"
	"github.com/oblivions/storefront/internal/core/ports"
)

type AdminService struct {
	users  ports.UserRepository
	orders ports.OrderRepository
	logger zerolog.Logger
}

func NewAdminService(users ports.UserRepository, orders ports.OrderRepository, logger zerolog.Logger) *AdminService {
	return &AdminService{users: users, orders: orders, logger: logger}
}

// ListUsers returns every account, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListOrders returns every order, newest first.
func (s *AdminService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for i := range orders {
		if orders[i].ShippingAddress == nil {
			orders[i].ShippingAddress = domain.Address{}
		}
	}
	return orders, nil
}

func (s *AdminService) ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	if items == nil {
		items = []domain.OrderItem{}
	}
	s.logger.Debug().Str("order_id", orderID).Int("count", len(items)).Msg("order items listed")
	return items, nil
}
