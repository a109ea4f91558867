package repository

import (
	"context"
	"sync"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
)

// CartRepository defines storage for shop cart items
type CartRepository interface {
	AddItem(ctx context.Context, item models.CartItem) error
	ListItems(ctx context.Context, shopCartID string) ([]models.CartItem, error)
}

// InMemoryCartRepository keeps cart items per shop cart in memory
type InMemoryCartRepository struct {
	mu    sync.RWMutex
	items map[string][]models.CartItem
}

// NewInMemoryCartRepository creates an empty cart repository
func NewInMemoryCartRepository() *InMemoryCartRepository {
	return &InMemoryCartRepository{
		items: make(map[string][]models.CartItem),
	}
}

// AddItem appends an item to its shop cart
func (r *InMemoryCartRepository) AddItem(ctx context.Context, item models.CartItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ShopCartID] = append(r.items[item.ShopCartID], item)
	return nil
}

// ListItems returns the items of a shop cart in the order they were added
func (r *InMemoryCartRepository) ListItems(ctx context.Context, shopCartID string) ([]models.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]models.CartItem, len(r.items[shopCartID]))
	copy(items, r.items[shopCartID])
	return items, nil
}
