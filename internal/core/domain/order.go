package domain

import "time"

const OrderStatusPending = "pending"

// Address is the free-form shipping address attached to an order.
type Address map[string]any

// Order is a placed order as seen by the admin dashboard. CustomerName and
// CustomerEmail are joined from the owning user and stay empty for guests.
type Order struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id,omitempty"`
	TotalPrice      int64     `json:"total_price"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	ShippingAddress Address   `json:"shipping_address"`
	ContactEmail    string    `json:"contact_email"`
	ContactPhone    string    `json:"contact_phone"`
	CustomerName    string    `json:"customer_name,omitempty"`
	CustomerEmail   string    `json:"customer_email,omitempty"`
}

// OrderItem is a single line of an order. Price is the unit price at the
// time the order was placed.
type OrderItem struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}
