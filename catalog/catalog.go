// Package catalog manages products and categories for the storefront and the
// admin panel.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eshop/models"
	"eshop/store"
	"eshop/utils"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// LatestLimit is how many products the home page shows
const LatestLimit = 12

var (
	ErrProductNotFound  = errors.New("catalog: product not found")
	ErrCategoryNotFound = errors.New("catalog: category not found")
	ErrCategoryExists   = errors.New("catalog: category already exists")
	ErrCategoryInUse    = errors.New("catalog: category still has products")
)

// ProductInput is the admin form for creating or editing a product
type ProductInput struct {
	Name          string          `json:"name" validate:"required,max=100"`
	Description   string          `json:"description" validate:"max=500"`
	Price         decimal.Decimal `json:"price" validate:"gte=0.01,lte=100000"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0,lte=1000"`
	CategoryID    int64           `json:"categoryId" validate:"required,gt=0"`
	ImageURL      string          `json:"imageUrl" validate:"max=500"`
}

// CategoryInput is the admin form for a category
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=50"`
}

// Service reads and writes the catalog
type Service struct {
	products   store.Products
	categories store.Categories
	validate   *validator.Validate
	now        func() time.Time
}

// NewService builds a catalog service over the product and category stores
func NewService(products store.Products, categories store.Categories) *Service {
	return &Service{
		products:   products,
		categories: categories,
		validate:   utils.NewValidator(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Latest returns the newest products for the home page
func (s *Service) Latest(ctx context.Context) ([]models.Product, error) {
	return s.List(ctx, store.ProductFilter{Limit: LatestLimit})
}

// List returns products matching the filter, newest first
func (s *Service) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	products, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Product returns one product
func (s *Service) Product(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.FindProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

// Categories lists every category by name
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateProduct validates and stores a new product
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in = normalizeProduct(in)
	if err := s.checkProduct(ctx, in); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		ImageURL:      in.ImageURL,
		StockQuantity: in.StockQuantity,
		CategoryID:    in.CategoryID,
		CreatedAt:     s.now(),
	}
	if err := s.products.InsertProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

// UpdateProduct replaces the editable fields of a product
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*models.Product, error) {
	existing, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	in = normalizeProduct(in)
	if err := s.checkProduct(ctx, in); err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Description = in.Description
	existing.Price = in.Price
	existing.ImageURL = in.ImageURL
	existing.StockQuantity = in.StockQuantity
	existing.CategoryID = in.CategoryID

	err = s.products.UpdateProduct(ctx, existing)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return existing, nil
}

// DeleteProduct removes a product. Cart lines that reference it stay and
// render as unavailable.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	err := s.products.DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// CreateCategory stores a new category with a unique name
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	category := &models.Category{Name: in.Name}
	err := s.categories.InsertCategory(ctx, category)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrCategoryExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category that no product uses
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	n, err := s.products.CountProductsInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return ErrCategoryInUse
	}
	err = s.categories.DeleteCategory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *Service) checkProduct(ctx context.Context, in ProductInput) error {
	if err := s.validate.Struct(in); err != nil {
		return err
	}
	_, err := s.categories.FindCategory(ctx, in.CategoryID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("find category: %w", err)
	}
	return nil
}

func normalizeProduct(in ProductInput) ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.ImageURL == "" {
		in.ImageURL = models.PlaceholderImage
	}
	in.Price = in.Price.Round(2)
	return in
}
