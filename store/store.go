// Package store persists the catalog, carts and accounts.
package store

import (
	"context"
	"errors"
	"time"

	"eshop/models"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrConflict is returned when a conditional update no longer matches the stored state.
	ErrConflict = errors.New("store: conflicting update")
)

// ProductFilter narrows ListProducts. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryID int64
	Search     string // case-insensitive substring of name or description
	Limit      int64
}

// Products is the catalog.
type Products interface {
	FindProduct(ctx context.Context, id int64) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	CountProductsInCategory(ctx context.Context, categoryID int64) (int64, error)
}

// Categories groups products.
type Categories interface {
	FindCategory(ctx context.Context, id int64) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	InsertCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

// CartLines stores one row per (user, product). Every lookup and write is
// scoped by user id, so a line owned by another user behaves as missing.
type CartLines interface {
	FindLine(ctx context.Context, userID string, lineID int64) (*models.CartLine, error)
	FindLineByProduct(ctx context.Context, userID string, productID int64) (*models.CartLine, error)
	ListLines(ctx context.Context, userID string) ([]models.CartLine, error)
	SumQuantities(ctx context.Context, userID string) (int, error)
	// InsertLine assigns line.ID. It returns ErrDuplicate when the pair already has a line.
	InsertLine(ctx context.Context, line *models.CartLine) error
	// SetLineQuantity writes to only when the stored quantity still equals from,
	// otherwise it returns ErrConflict.
	SetLineQuantity(ctx context.Context, userID string, lineID int64, from, to int, at time.Time) error
	DeleteLine(ctx context.Context, userID string, lineID int64) error
}

// Profile is the set of account fields a user may edit.
type Profile struct {
	FirstName string
	LastName  string
	Phone     string
}

// Users holds accounts.
type Users interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// InsertUser assigns u.ID. It returns ErrDuplicate when the email is taken.
	InsertUser(ctx context.Context, u *models.User) error
	UpdateUserProfile(ctx context.Context, id string, profile Profile) error
}
