package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oblivions/storefront/internal/core/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create stores the order and its items in one transaction. Empty ids are
// filled in.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order, items []domain.OrderItem) (*domain.Order, error) {
	o := *order
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.ShippingAddress == nil {
		o.ShippingAddress = domain.Address{}
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("encode shipping address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin order tx: %w: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback()

	var userID any
	if o.UserID != "" {
		userID = o.UserID
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, total_price, status, created_at, shipping_address, contact_email, contact_phone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, userID, o.TotalPrice, o.Status, formatTime(o.CreatedAt), string(addr), o.ContactEmail, o.ContactPhone,
	); err != nil {
		return nil, fmt.Errorf("insert order: %w: %w", domain.ErrStorage, err)
	}

	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_name, quantity, price) VALUES (?, ?, ?, ?, ?)`,
			it.ID, o.ID, it.ProductName, it.Quantity, it.Price,
		); err != nil {
			return nil, fmt.Errorf("insert order item: %w: %w", domain.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w: %w", domain.ErrStorage, err)
	}
	return &o, nil
}

// List returns every order, newest first, with the owner's name and email
// when the order belongs to a user.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, COALESCE(o.user_id, ''), o.total_price, o.status, o.created_at,
		       o.shipping_address, o.contact_email, o.contact_phone,
		       COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w: %w", domain.ErrStorage, err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders rows: %w: %w", domain.ErrStorage, err)
	}
	return orders, nil
}

// ListItems returns the order's lines. Unknown orders yield
// domain.ErrOrderNotFound.
func (r *OrderRepository) ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, orderID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w: %w", domain.ErrStorage, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_name, quantity, price FROM order_items WHERE order_id = ? ORDER BY rowid`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w: %w", domain.ErrStorage, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list order items rows: %w: %w", domain.ErrStorage, err)
	}
	return items, nil
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		o         domain.Order
		createdAt string
		addr      string
	)
	if err := s.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &createdAt,
		&addr, &o.ContactEmail, &o.ContactPhone, &o.CustomerName, &o.CustomerEmail); err != nil {
		return nil, err
	}
	o.CreatedAt = parseTime(createdAt)
	o.ShippingAddress = domain.Address{}
	if addr != "" {
		if err := json.Unmarshal([]byte(addr), &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
	}
	return &o, nil
}
