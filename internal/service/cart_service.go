package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/repository"
)

var (
	ErrEmptyShopCartID  = errors.New("shop cart id is required")
	ErrEmptyProductName = errors.New("product name is required")
	ErrNegativePrice    = errors.New("price must not be negative")
	ErrNegativeQuantity = errors.New("quantity must not be negative")
)

// CartService handles adding products to shop carts
type CartService struct {
	repo repository.CartRepository
	now  func() time.Time
}

// NewCartService creates a new cart service
func NewCartService(repo repository.CartRepository) *CartService {
	return &CartService{
		repo: repo,
		now:  time.Now,
	}
}

// AddProduct validates the request and stores it as a new cart item
func (s *CartService) AddProduct(ctx context.Context, req models.CartAddRequest) (*models.CartItem, error) {
	if err := validateCartAddRequest(req); err != nil {
		return nil, err
	}

	item := models.CartItem{
		CartItemID:  uuid.New().String(),
		ShopCartID:  strings.TrimSpace(req.ShopCartID),
		ProductName: strings.TrimSpace(req.ProductName),
		Price:       req.Price,
		Quantity:    req.Quantity,
		AddedAt:     s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	return &item, nil
}

// ListItems returns the items of a shop cart
func (s *CartService) ListItems(ctx context.Context, shopCartID string) ([]models.CartItem, error) {
	shopCartID = strings.TrimSpace(shopCartID)
	if shopCartID == "" {
		return nil, ErrEmptyShopCartID
	}

	items, err := s.repo.ListItems(ctx, shopCartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// IsValidationError reports whether err was caused by the request rather than the store
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyShopCartID) ||
		errors.Is(err, ErrEmptyProductName) ||
		errors.Is(err, ErrNegativePrice) ||
		errors.Is(err, ErrNegativeQuantity)
}

func validateCartAddRequest(req models.CartAddRequest) error {
	switch {
	case strings.TrimSpace(req.ShopCartID) == "":
		return ErrEmptyShopCartID
	case strings.TrimSpace(req.ProductName) == "":
		return ErrEmptyProductName
	case req.Price < 0:
		return ErrNegativePrice
	case req.Quantity < 0:
		return ErrNegativeQuantity
	}
	return nil
}
