package repository_test

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/suite"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/repository"
)

// storeSuite holds the checks every Store must pass. Concrete suites start a
// database in SetupSuite and reset it between tests.
type storeSuite struct {
	suite.Suite

	store repository.Store
	reset func(ctx context.Context) error
}

func (s *storeSuite) SetupTest() {
	if s.reset != nil {
		s.Require().NoError(s.reset(s.T().Context()))
	}
}

func (s *storeSuite) TestGetAllEmpty() {
	products, err := s.store.GetAll(s.T().Context())
	s.Require().NoError(err)
	s.Empty(products)
}

func (s *storeSuite) TestInsertProductsKeepsOrder() {
	ctx := s.T().Context()

	want := repository.DefaultProducts()
	s.Require().NoError(s.store.InsertProducts(ctx, want))

	got, err := s.store.GetAll(ctx)
	s.Require().NoError(err)

	if diff := cmp.Diff(want, got); diff != "" {
		s.Failf("products mismatch", "(-want +got):\n%s", diff)
	}
}

func (s *storeSuite) TestInsertProductsAssignsIDs() {
	ctx := s.T().Context()

	s.Require().NoError(s.store.InsertProducts(ctx, []models.Product{
		{ProductID: 10, ProductTitle: "Pen", Price: 2, Quantity: 10, ProductImage: "pen"},
	}))
	s.Require().NoError(s.store.InsertProducts(ctx, []models.Product{
		randomProduct(),
		randomProduct(),
	}))

	got, err := s.store.GetAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(int64(10), got[0].ProductID)
	s.Equal(int64(11), got[1].ProductID)
	s.Equal(int64(12), got[2].ProductID)
}

func (s *storeSuite) TestPricesRoundTripExactly() {
	ctx := s.T().Context()

	want := []models.Product{
		{ProductID: 1, ProductTitle: "Sample", Price: 9.999, Quantity: 1, ProductImage: "pen"},
		{ProductID: 2, ProductTitle: "Bulk", Price: 123456789.125, Quantity: 2, ProductImage: "mug"},
	}
	s.Require().NoError(s.store.InsertProducts(ctx, want))

	got, err := s.store.GetAll(ctx)
	s.Require().NoError(err)
	s.Equal(want, got)
}

func (s *storeSuite) TestCartItems() {
	ctx := s.T().Context()

	shopCartID := gofakeit.UUID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	first := randomCartItem(shopCartID, base)
	second := randomCartItem(shopCartID, base.Add(time.Second))
	other := randomCartItem(gofakeit.UUID(), base)

	for _, item := range []models.CartItem{second, other, first} {
		s.Require().NoError(s.store.AddItem(ctx, item))
	}

	got, err := s.store.ListItems(ctx, shopCartID)
	s.Require().NoError(err)

	opts := cmpopts.EquateApproxTime(time.Millisecond)
	if diff := cmp.Diff([]models.CartItem{first, second}, got, opts); diff != "" {
		s.Failf("cart items mismatch", "(-want +got):\n%s", diff)
	}

	none, err := s.store.ListItems(ctx, gofakeit.UUID())
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *storeSuite) TestPing() {
	ctx, cancel := context.WithTimeout(s.T().Context(), 5*time.Second)
	defer cancel()

	s.NoError(s.store.Ping(ctx))
}

func randomProduct() models.Product {
	return models.Product{
		ProductTitle: gofakeit.ProductName(),
		Price:        float64(gofakeit.Number(0, 10000)) / 100,
		Quantity:     gofakeit.Number(0, 100),
		ProductImage: gofakeit.Word(),
	}
}

func randomCartItem(shopCartID string, addedAt time.Time) models.CartItem {
	return models.CartItem{
		CartItemID:  gofakeit.UUID(),
		ShopCartID:  shopCartID,
		ProductName: gofakeit.ProductName(),
		Price:       float64(gofakeit.Number(0, 10000)) / 100,
		Quantity:    gofakeit.Number(1, 10),
		AddedAt:     addedAt,
	}
}
