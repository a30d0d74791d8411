package cart

import "github.com/shopspring/decimal"

// ItemView is one row of the rendered cart.
type ItemView struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"productId"`
	ProductName   string          `json:"productName"`
	ImageURL      string          `json:"imageUrl"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	StockQuantity int             `json:"stockQuantity"`
	Total         decimal.Decimal `json:"total"`
	Available     bool            `json:"available"`
}

// View is the cart as pages and the JSON API show it.
type View struct {
	Items []ItemView      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// IsEmpty reports whether there is nothing to show
func (v View) IsEmpty() bool {
	return len(v.Items) == 0
}

// NewView projects a snapshot into view rows. It has no side effects and
// cannot fail.
func NewView(snap *Snapshot) View {
	view := View{Items: []ItemView{}, Total: decimal.Zero}
	if snap == nil {
		return view
	}
	for _, line := range snap.Lines {
		item := ItemView{
			ID:            line.LineID,
			ProductID:     line.ProductID,
			ProductName:   line.Name,
			ImageURL:      line.ImageURL,
			Price:         line.Price,
			Quantity:      line.Quantity,
			StockQuantity: line.StockQuantity,
			Total:         line.LineTotal(),
			Available:     !line.Defunct,
		}
		view.Items = append(view.Items, item)
		view.Total = view.Total.Add(item.Total)
		view.Count += item.Quantity
	}
	return view
}
