package models

import "time"

// CartLine is one user's holding of one product. There is at most one line per
// (UserID, ProductID) pair and Quantity is always at least 1 while it exists.
type CartLine struct {
	ID        int64      `bson:"_id" json:"id"`
	UserID    string     `bson:"user_id" json:"userId"`
	ProductID int64      `bson:"product_id" json:"productId"`
	Quantity  int        `bson:"quantity" json:"quantity"`
	AddedAt   time.Time  `bson:"added_at" json:"addedAt"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}
