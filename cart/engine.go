// Package cart owns the mapping from (user, product) to a cart line. It
// enforces stock bounds and line uniqueness and computes counts and totals.
// Callers pass the user identity explicitly on every call.
package cart

import (
	"context"
	"errors"
	"fmt"
	"math"

	"eshop/models"
	"eshop/store"
)

// Service is the cart capability consumed by the JSON API, the pages and the
// badge fragment.
type Service interface {
	AddItem(ctx context.Context, userID string, productID int64, quantity int) (*models.CartLine, error)
	ChangeQuantity(ctx context.Context, userID string, productID int64, change int) (*models.CartLine, error)
	UpdateQuantity(ctx context.Context, userID string, lineID int64, quantity int) error
	RemoveItem(ctx context.Context, userID string, lineID int64) error
	GetItemCount(ctx context.Context, userID string) (int, error)
	GetSnapshot(ctx context.Context, userID string) (*Snapshot, error)
	Quantities(ctx context.Context, userID string) (map[int64]int, error)
}

var _ Service = (*Engine)(nil)

// maxAttempts bounds the re-read/retry loop when a conditional write loses a
// race with another process.
const maxAttempts = 5

var errTooManyConflicts = errors.New("too many concurrent modifications")

// Engine is the single implementation of Service.
type Engine struct {
	products ProductFinder
	lines    LineStore
	clock    Clock
	locks    *keyedMutex
}

// NewEngine builds an engine over the catalog and the line store
func NewEngine(products ProductFinder, lines LineStore) *Engine {
	return NewEngineWithClock(products, lines, nil)
}

// NewEngineWithClock is useful for tests.
func NewEngineWithClock(products ProductFinder, lines LineStore, clock Clock) *Engine {
	if clock == nil {
		clock = systemClock{}
	}
	return &Engine{
		products: products,
		lines:    lines,
		clock:    clock,
		locks:    newKeyedMutex(),
	}
}

// AddItem adds quantity units of a product to the user's cart, creating the
// line on first add. The resulting quantity may not exceed the product's stock.
func (e *Engine) AddItem(ctx context.Context, userID string, productID int64, quantity int) (*models.CartLine, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := e.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(lineKey(userID, productID))
	defer unlock()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		line, err := e.lines.FindLineByProduct(ctx, userID, productID)
		if errors.Is(err, store.ErrNotFound) {
			if quantity > product.StockQuantity {
				return nil, &StockError{ProductID: productID, Available: product.StockQuantity, Requested: quantity}
			}
			line = &models.CartLine{
				UserID:    userID,
				ProductID: productID,
				Quantity:  quantity,
				AddedAt:   e.clock.Now(),
			}
			err = e.lines.InsertLine(ctx, line)
			if errors.Is(err, store.ErrDuplicate) {
				// another process created the pair first; retry as an update
				continue
			}
			if err != nil {
				return nil, storageError("insert line", err)
			}
			return line, nil
		}
		if err != nil {
			return nil, storageError("find line", err)
		}

		// compared as a difference so a huge quantity cannot wrap the sum
		if quantity > product.StockQuantity-line.Quantity {
			return nil, &StockError{ProductID: productID, Available: product.StockQuantity, Requested: saturatingAdd(line.Quantity, quantity)}
		}
		updated, err := e.setQuantity(ctx, line, line.Quantity+quantity)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		return updated, err
	}
	return nil, storageError("add item", errTooManyConflicts)
}

// ChangeQuantity moves the user's line for a product up or down by change.
// Increases go through AddItem. Decreases are never blocked by stock and
// delete the line once it reaches zero; decreasing a product that is not in
// the cart does nothing. The returned line is nil when no line remains.
func (e *Engine) ChangeQuantity(ctx context.Context, userID string, productID int64, change int) (*models.CartLine, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if change > 0 {
		return e.AddItem(ctx, userID, productID, change)
	}
	if _, err := e.findProduct(ctx, productID); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(lineKey(userID, productID))
	defer unlock()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		line, err := e.lines.FindLineByProduct(ctx, userID, productID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, storageError("find line", err)
		}
		if change == 0 {
			return line, nil
		}

		next := line.Quantity + change
		if next <= 0 {
			err := e.lines.DeleteLine(ctx, userID, line.ID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, storageError("delete line", err)
			}
			return nil, nil
		}
		updated, err := e.setQuantity(ctx, line, next)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		return updated, err
	}
	return nil, storageError("change quantity", errTooManyConflicts)
}

// UpdateQuantity sets a line to an absolute quantity. Zero or less removes it.
func (e *Engine) UpdateQuantity(ctx context.Context, userID string, lineID int64, quantity int) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	line, err := e.findLine(ctx, userID, lineID)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return e.RemoveItem(ctx, userID, lineID)
	}

	product, err := e.findProduct(ctx, line.ProductID)
	if err != nil {
		return err
	}
	if quantity > product.StockQuantity {
		return &StockError{ProductID: product.ID, Available: product.StockQuantity, Requested: quantity}
	}

	unlock := e.locks.Lock(lineKey(userID, line.ProductID))
	defer unlock()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if line, err = e.findLine(ctx, userID, lineID); err != nil {
				return err
			}
		}
		_, err = e.setQuantity(ctx, line, quantity)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		return err
	}
	return storageError("update quantity", errTooManyConflicts)
}

// RemoveItem deletes a line the user owns. Removing a missing line returns
// ErrCartLineNotFound; callers may treat that as success.
func (e *Engine) RemoveItem(ctx context.Context, userID string, lineID int64) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	err := e.lines.DeleteLine(ctx, userID, lineID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCartLineNotFound
	}
	if err != nil {
		return storageError("delete line", err)
	}
	return nil
}

// GetItemCount is the sum of quantities across the user's lines.
func (e *Engine) GetItemCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}
	count, err := e.lines.SumQuantities(ctx, userID)
	if err != nil {
		return 0, storageError("sum quantities", err)
	}
	return count, nil
}

// Quantities maps product id to the quantity the user holds.
func (e *Engine) Quantities(ctx context.Context, userID string) (map[int64]int, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	lines, err := e.lines.ListLines(ctx, userID)
	if err != nil {
		return nil, storageError("list lines", err)
	}
	quantities := make(map[int64]int, len(lines))
	for _, line := range lines {
		quantities[line.ProductID] = line.Quantity
	}
	return quantities, nil
}

// GetSnapshot resolves every line against the catalog. Lines whose product
// is gone are kept with placeholder values.
func (e *Engine) GetSnapshot(ctx context.Context, userID string) (*Snapshot, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	lines, err := e.lines.ListLines(ctx, userID)
	if err != nil {
		return nil, storageError("list lines", err)
	}

	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := e.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, storageError("find products", err)
	}
	return newSnapshot(userID, lines, products), nil
}

func saturatingAdd(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

func (e *Engine) findProduct(ctx context.Context, productID int64) (*models.Product, error) {
	product, err := e.products.FindProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, storageError("find product", err)
	}
	return product, nil
}

func (e *Engine) findLine(ctx context.Context, userID string, lineID int64) (*models.CartLine, error) {
	line, err := e.lines.FindLine(ctx, userID, lineID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCartLineNotFound
	}
	if err != nil {
		return nil, storageError("find line", err)
	}
	return line, nil
}

// setQuantity passes store.ErrConflict through untouched so callers can retry.
func (e *Engine) setQuantity(ctx context.Context, line *models.CartLine, quantity int) (*models.CartLine, error) {
	now := e.clock.Now()
	err := e.lines.SetLineQuantity(ctx, line.UserID, line.ID, line.Quantity, quantity, now)
	if errors.Is(err, store.ErrConflict) {
		return nil, err
	}
	if err != nil {
		return nil, storageError("set quantity", err)
	}
	updated := *line
	updated.Quantity = quantity
	updated.UpdatedAt = &now
	return &updated, nil
}
