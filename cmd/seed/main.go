package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/oblivions/storefront/internal/core/cart"
	"github.com/oblivions/storefront/internal/core/domain"
	"github.com/oblivions/storefront/internal/core/ports"
	"github.com/oblivions/storefront/internal/core/service"
	"github.com/oblivions/storefront/internal/infrastructure/config"
	"github.com/oblivions/storefront/internal/infrastructure/db"
	"github.com/oblivions/storefront/internal/infrastructure/session"
	"github.com/oblivions/storefront/pkg/logger"
)

type seedConfig struct {
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Store config.StoreConfig
	Mongo config.MongoConfig
	Admin config.AdminConfig

	// Demo customers are created with this password.
	CustomerPassword string `env:"SEED_CUSTOMER_PASSWORD, default=Customer123"`
}

type demoCustomer struct {
	name  string
	email string
	phone string
	city  string
	cart  map[int]int
}

var customers = []demoCustomer{
	{name: "Ada Lovelace", email: "ada@example.com", phone: "+44 20 7946 0001", city: "London", cart: map[int]int{1: 1, 3: 2}},
	{name: "Grace Hopper", email: "grace@example.com", phone: "+1 202 555 0102", city: "Arlington", cart: map[int]int{2: 1}},
	{name: "Alan Turing", email: "alan@example.com", phone: "+44 161 496 0003", city: "Manchester", cart: map[int]int{4: 3, 1: 1}},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg seedConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "storefront-seed"})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("seed complete")
}

func run(ctx context.Context, cfg seedConfig, log zerolog.Logger) error {
	store, err := db.Open(ctx, cfg.Store, cfg.Mongo)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	sessions := service.NewSessionService(session.NewMemoryStore(), time.Minute, zerolog.Nop())
	auth := service.NewAuthService(store.Users, sessions, logger.Component("auth"))

	if cfg.Admin.Email != "" {
		if _, created, err := auth.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return fmt.Errorf("admin: %w", err)
		} else if !created {
			log.Info().Str("email", cfg.Admin.Email).Msg("admin already present")
		}
	} else {
		log.Warn().Msg("ADMIN_EMAIL not set; skipping admin account")
	}

	for _, c := range customers {
		res, err := auth.Register(ctx, "", ports.RegisterInput{Name: c.name, Email: c.email, Password: cfg.CustomerPassword})
		switch {
		case errors.Is(err, domain.ErrUserExists):
			log.Info().Str("email", c.email).Msg("customer already present; skipping order")
			continue
		case err != nil:
			return fmt.Errorf("customer %s: %w", c.email, err)
		}

		order, err := placeOrder(ctx, store.Orders, res.User, c)
		if err != nil {
			return fmt.Errorf("order for %s: %w", c.email, err)
		}
		log.Info().Str("email", c.email).Str("order_id", order.ID).Int64("total", order.TotalPrice).Msg("demo order created")
	}
	return nil
}

// placeOrder fills a throwaway cart and records its contents as an order.
func placeOrder(ctx context.Context, orders ports.OrderRepository, user *domain.User, c demoCustomer) (*domain.Order, error) {
	basket, err := cart.NewStore(cart.NopStorage{})
	if err != nil {
		return nil, err
	}
	for id, qty := range c.cart {
		if err := basket.Add(id); err != nil {
			return nil, err
		}
		if err := basket.SetQuantity(id, qty); err != nil {
			return nil, err
		}
	}

	lines := basket.Lines()
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			Price:       l.Product.Price,
		})
	}

	return orders.Create(ctx, &domain.Order{
		UserID:          user.ID,
		TotalPrice:      basket.Total(),
		ShippingAddress: domain.Address{"city": c.city, "country": "Demo"},
		ContactEmail:    c.email,
		ContactPhone:    c.phone,
	}, items)
}
