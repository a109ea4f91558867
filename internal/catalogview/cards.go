package catalogview

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/assets"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
)

// Card is the rendered form of one product
type Card struct {
	Key      string
	Product  models.Product
	Title    string
	Price    string
	Quantity string
	Image    string
}

// BuildCards renders products in order. It fails on the first product whose
// image key has no bundled asset.
func BuildCards(products []models.Product, images *assets.Resolver) ([]Card, error) {
	cards := make([]Card, 0, len(products))
	for _, p := range products {
		img, err := images.Resolve(p.ProductImage)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", p.ProductID, err)
		}

		cards = append(cards, Card{
			Key:      strconv.FormatInt(p.ProductID, 10),
			Product:  p,
			Title:    p.ProductTitle,
			Price:    FormatPrice(p.Price),
			Quantity: strconv.Itoa(p.Quantity),
			Image:    img,
		})
	}
	return cards, nil
}

// FormatPrice renders a price with a "$" prefix and no padding: 2 -> "$2", 4.5 -> "$4.5"
func FormatPrice(price float64) string {
	return "$" + decimal.NewFromFloat(price).String()
}
