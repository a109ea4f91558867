package repository

import (
	"context"
	"sync"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
)

// ProductRepository defines read access to the product catalog
type ProductRepository interface {
	// GetAll returns every product in store order.
	GetAll(ctx context.Context) ([]models.Product, error)
}

// ProductSeeder is implemented by stores that can be loaded with products.
// Products with a zero ProductID get an ID assigned by the store.
type ProductSeeder interface {
	InsertProducts(ctx context.Context, products []models.Product) error
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products []models.Product
}

// NewInMemoryProductRepository creates a repository holding the given products in order.
func NewInMemoryProductRepository(products ...models.Product) *InMemoryProductRepository {
	r := &InMemoryProductRepository{}
	_ = r.InsertProducts(context.Background(), products)
	return r
}

// DefaultProducts is the catalog the memory store starts with when nothing else is configured.
func DefaultProducts() []models.Product {
	return []models.Product{
		{ProductID: 1, ProductTitle: "Pen", Price: 2, Quantity: 10, ProductImage: "pen"},
		{ProductID: 2, ProductTitle: "Notebook", Price: 4.5, Quantity: 25, ProductImage: "notebook"},
		{ProductID: 3, ProductTitle: "Coffee Mug", Price: 9.99, Quantity: 7, ProductImage: "mug"},
		{ProductID: 4, ProductTitle: "Backpack", Price: 39, Quantity: 3, ProductImage: "backpack"},
	}
}

// GetAll returns all products in insertion order
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, len(r.products))
	copy(products, r.products)
	return products, nil
}

// InsertProducts appends products, assigning IDs after the current maximum
func (r *InMemoryProductRepository) InsertProducts(ctx context.Context, products []models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var maxID int64
	for _, p := range r.products {
		maxID = max(maxID, p.ProductID)
	}

	for _, p := range products {
		if p.ProductID == 0 {
			maxID++
			p.ProductID = maxID
		}
		maxID = max(maxID, p.ProductID)
		r.products = append(r.products, p)
	}
	return nil
}
