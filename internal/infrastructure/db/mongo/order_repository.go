package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oblivions/storefront/internal/core/domain"
)

type OrderRepository struct {
	orders *mongo.Collection
	items  *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		orders: db.Collection(ordersCollection),
		items:  db.Collection(orderItemsCollection),
	}
}

type mongoOrder struct {
	ID              string         `bson:"_id"`
	UserID          string         `bson:"user_id,omitempty"`
	TotalPrice      int64          `bson:"total_price"`
	Status          string         `bson:"status"`
	CreatedAt       time.Time      `bson:"created_at"`
	ShippingAddress map[string]any `bson:"shipping_address"`
	ContactEmail    string         `bson:"contact_email"`
	ContactPhone    string         `bson:"contact_phone"`
	Customer        []mongoUser    `bson:"customer,omitempty"`
}

type mongoOrderItem struct {
	ID          string `bson:"_id"`
	OrderID     string `bson:"order_id"`
	ProductName string `bson:"product_name"`
	Quantity    int    `bson:"quantity"`
	Price       int64  `bson:"price"`
}

// Create inserts the order followed by its items. The two writes are not
// transactional; standalone deployments do not support multi-document
// transactions.
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

	if _, err := r.orders.InsertOne(ctx, mongoOrder{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalPrice:      o.TotalPrice,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		ShippingAddress: o.ShippingAddress,
		ContactEmail:    o.ContactEmail,
		ContactPhone:    o.ContactPhone,
	}); err != nil {
		return nil, fmt.Errorf("insert order: %w: %w", domain.ErrStorage, err)
	}

	if len(items) > 0 {
		docs := make([]any, 0, len(items))
		for _, it := range items {
			id := it.ID
			if id == "" {
				id = uuid.NewString()
			}
			docs = append(docs, mongoOrderItem{
				ID:          id,
				OrderID:     o.ID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				Price:       it.Price,
			})
		}
		if _, err := r.items.InsertMany(ctx, docs); err != nil {
			return nil, fmt.Errorf("insert order items: %w: %w", domain.ErrStorage, err)
		}
	}

	return &o, nil
}

// List returns every order, newest first, joined with its owner.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "customer"},
		}}},
	}

	cur, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w: %w", domain.ErrStorage, err)
	}
	defer cur.Close(ctx)

	var docs []mongoOrder
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w: %w", domain.ErrStorage, err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		o := domain.Order{
			ID:              d.ID,
			UserID:          d.UserID,
			TotalPrice:      d.TotalPrice,
			Status:          d.Status,
			CreatedAt:       d.CreatedAt.UTC(),
			ShippingAddress: domain.Address(d.ShippingAddress),
			ContactEmail:    d.ContactEmail,
			ContactPhone:    d.ContactPhone,
		}
		if len(d.Customer) > 0 {
			o.CustomerName = d.Customer[0].Name
			o.CustomerEmail = d.Customer[0].Email
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *OrderRepository) ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	if err := r.orders.FindOne(ctx, bson.M{"_id": orderID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w: %w", domain.ErrStorage, err)
	}

	cur, err := r.items.Find(ctx, bson.M{"order_id": orderID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list order items: %w: %w", domain.ErrStorage, err)
	}
	defer cur.Close(ctx)

	var docs []mongoOrderItem
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode order items: %w: %w", domain.ErrStorage, err)
	}

	items := make([]domain.OrderItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.OrderItem{
			ID:          d.ID,
			OrderID:     d.OrderID,
			ProductName: d.ProductName,
			Quantity:    d.Quantity,
			Price:       d.Price,
		})
	}
	return items, nil
}
