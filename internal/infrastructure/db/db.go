// Package db selects and opens the credential store named by STORE_DRIVER.
package db

import (
	"context"
	"fmt"

	"github.com/oblivions/storefront/internal/core/ports"
	"github.com/oblivions/storefront/internal/infrastructure/config"
	mongostore "github.com/oblivions/storefront/internal/infrastructure/db/mongo"
	"github.com/oblivions/storefront/internal/infrastructure/db/sqlite"
)

// Store bundles the repositories backed by one database.
type Store struct {
	Driver string
	Users  ports.UserRepository
	Orders ports.OrderRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks connectivity to the underlying database.
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the underlying connection pool.
func (s *Store) Close(ctx context.Context) error { return s.close(ctx) }

// Open connects to the configured driver and prepares its schema or indexes.
func Open(ctx context.Context, store config.StoreConfig, mongoCfg config.MongoConfig) (*Store, error) {
	switch store.Driver {
	case config.StoreSQLite, "":
		conn, err := sqlite.Open(ctx, store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: config.StoreSQLite,
			Users:  sqlite.NewUserRepository(conn),
			Orders: sqlite.NewOrderRepository(conn),
			ping:   conn.PingContext,
			close:  func(context.Context) error { return conn.Close() },
		}, nil

	case config.StoreMongo:
		client, database, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      mongoCfg.URI,
			Database: mongoCfg.Database,
		})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &Store{
			Driver: config.StoreMongo,
			Users:  mongostore.NewUserRepository(database),
			Orders: mongostore.NewOrderRepository(database),
			ping:   func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:  client.Disconnect,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", store.Driver)
	}
}
