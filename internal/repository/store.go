package repository

import (
	"context"
	"fmt"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/config"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
)

// Store bundles the repositories backed by one database
type Store interface {
	ProductRepository
	ProductSeeder
	CartRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects the store selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStore(DefaultProducts()...), nil
	case config.DriverMongo:
		return OpenMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverPostgres:
		return OpenPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// MemoryStore is the in-memory Store used for local runs and tests
type MemoryStore struct {
	*InMemoryProductRepository
	*InMemoryCartRepository
}

// NewMemoryStore creates a MemoryStore seeded with products
func NewMemoryStore(products ...models.Product) *MemoryStore {
	return &MemoryStore{
		InMemoryProductRepository: NewInMemoryProductRepository(products...),
		InMemoryCartRepository:    NewInMemoryCartRepository(),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}
