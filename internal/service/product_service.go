package service

import (
	"context"
	"fmt"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/repository"
)

// ProductService handles business logic for products
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns every product in store order, never nil
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}
