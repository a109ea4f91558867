package models

import "time"

// CartAddRequest is the body of POST /api/cartItems/add-product.
// It is built per click from a Product and the current user's shop cart.
type CartAddRequest struct {
	ShopCartID  string  `json:"ShopCartID"`
	Price       float64 `json:"Price"`
	ProductName string  `json:"ProductName"`
	Quantity    int     `json:"Quantity"`
}

// NewCartAddRequest copies the fields the cart needs out of a product.
func NewCartAddRequest(p Product, shopCartID string) CartAddRequest {
	return CartAddRequest{
		ShopCartID:  shopCartID,
		Price:       p.Price,
		ProductName: p.ProductTitle,
		Quantity:    p.Quantity,
	}
}

// CartItem is a product line stored in a shop cart
type CartItem struct {
	CartItemID  string    `json:"CartItemID" bson:"_id" db:"cart_item_id"`
	ShopCartID  string    `json:"ShopCartID" bson:"ShopCartID" db:"shop_cart_id"`
	ProductName string    `json:"ProductName" bson:"ProductName" db:"product_name"`
	Price       float64   `json:"Price" bson:"Price" db:"price"`
	Quantity    int       `json:"Quantity" bson:"Quantity" db:"quantity"`
	AddedAt     time.Time `json:"AddedAt" bson:"AddedAt" db:"added_at"`
}
