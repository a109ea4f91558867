package models

// Product represents a catalog item as stored and as served by GET /api/products.
// Field names match the JSON contract consumed by the storefront.
type Product struct {
	ProductID    int64   `json:"ProductID" bson:"ProductID" db:"product_id"`
	ProductTitle string  `json:"ProductTitle" bson:"ProductTitle" db:"product_title"`
	Price        float64 `json:"Price" bson:"Price" db:"price"`
	Quantity     int     `json:"Quantity" bson:"Quantity" db:"quantity"`
	ProductImage string  `json:"ProductImage" bson:"ProductImage" db:"product_image"`
}
