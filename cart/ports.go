package cart

import (
	"context"
	"time"

	"eshop/models"
)

// ProductFinder is the read-only view of the catalog the engine needs.
type ProductFinder interface {
	FindProduct(ctx context.Context, id int64) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error)
}

// LineStore persists cart lines. See store.CartLines for the contract.
type LineStore interface {
	FindLine(ctx context.Context, userID string, lineID int64) (*models.CartLine, error)
	FindLineByProduct(ctx context.Context, userID string, productID int64) (*models.CartLine, error)
	ListLines(ctx context.Context, userID string) ([]models.CartLine, error)
	SumQuantities(ctx context.Context, userID string) (int, error)
	InsertLine(ctx context.Context, line *models.CartLine) error
	SetLineQuantity(ctx context.Context, userID string, lineID int64, from, to int, at time.Time) error
	DeleteLine(ctx context.Context, userID string, lineID int64) error
}

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
