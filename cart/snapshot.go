package cart

import (
	"time"

	"eshop/models"

	"github.com/shopspring/decimal"
)

// UnknownProductName labels a line whose product has been deleted.
const UnknownProductName = "Unknown Product"

// Snapshot is a fully resolved, read-only view of one user's cart.
type Snapshot struct {
	UserID    string
	Lines     []SnapshotLine
	Total     decimal.Decimal
	ItemCount int
}

// SnapshotLine is a cart line joined with its product. Defunct lines carry
// placeholder values, a zero price and zero stock.
type SnapshotLine struct {
	LineID        int64
	ProductID     int64
	Name          string
	ImageURL      string
	Price         decimal.Decimal
	Quantity      int
	StockQuantity int
	Defunct       bool
	AddedAt       time.Time
	UpdatedAt     *time.Time
}

// LineTotal is price times quantity
func (l SnapshotLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func newSnapshot(userID string, lines []models.CartLine, products map[int64]*models.Product) *Snapshot {
	snap := &Snapshot{
		UserID: userID,
		Lines:  make([]SnapshotLine, 0, len(lines)),
		Total:  decimal.Zero,
	}
	for _, line := range lines {
		row := SnapshotLine{
			LineID:    line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			AddedAt:   line.AddedAt,
			UpdatedAt: line.UpdatedAt,
		}
		if product, ok := products[line.ProductID]; ok && product != nil {
			row.Name = product.Name
			row.ImageURL = product.ImageURL
			row.Price = product.Price
			row.StockQuantity = product.StockQuantity
		} else {
			row.Name = UnknownProductName
			row.Price = decimal.Zero
			row.Defunct = true
		}
		if row.ImageURL == "" {
			row.ImageURL = models.PlaceholderImage
		}

		snap.Lines = append(snap.Lines, row)
		snap.Total = snap.Total.Add(row.LineTotal())
		snap.ItemCount += row.Quantity
	}
	return snap
}
