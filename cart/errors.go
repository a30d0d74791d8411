package cart

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("cart: no user identity")
	ErrProductNotFound    = errors.New("cart: product not found")
	ErrCartLineNotFound   = errors.New("cart: cart line not found")
	ErrInsufficientStock  = errors.New("cart: insufficient stock")
	ErrInvalidQuantity    = errors.New("cart: quantity must be positive")
	ErrStorageUnavailable = errors.New("cart: storage unavailable")
)

// StockError reports a quantity above what the product has in stock.
// It matches ErrInsufficientStock with errors.Is.
type StockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("cart: insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

// Message turns an engine error into a stable string safe to show a shopper.
func Message(err error) string {
	var stockErr *StockError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &stockErr):
		return fmt.Sprintf("Only %d of this item in stock", stockErr.Available)
	case errors.Is(err, ErrUnauthenticated):
		return "You must be logged in to use the cart"
	case errors.Is(err, ErrProductNotFound):
		return "Product not found"
	case errors.Is(err, ErrCartLineNotFound):
		return "Cart item not found"
	case errors.Is(err, ErrInsufficientStock):
		return "Not enough of this item in stock"
	case errors.Is(err, ErrInvalidQuantity):
		return "Quantity must be at least 1"
	default:
		return "The cart could not be updated, please try again"
	}
}
