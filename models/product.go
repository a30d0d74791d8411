package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is shown for products without an image and for cart lines
// whose product no longer exists.
const PlaceholderImage = "/images/placeholder.jpg"

// Product represents an item in the catalog
type Product struct {
	ID            int64           `bson:"_id" json:"id"`
	Name          string          `bson:"name" json:"name"`
	Description   string          `bson:"description,omitempty" json:"description,omitempty"`
	Price         decimal.Decimal `bson:"price" json:"price"`
	ImageURL      string          `bson:"image_url" json:"imageUrl"`
	StockQuantity int             `bson:"stock_quantity" json:"stockQuantity"`
	CategoryID    int64           `bson:"category_id" json:"categoryId"`
	CreatedAt     time.Time       `bson:"created_at" json:"createdAt"`
}

// InStock reports whether at least one unit is available
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// Category groups products in the catalog
type Category struct {
	ID   int64  `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}
