package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"eshop/catalog"
	"eshop/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProductController handles product-related requests
type ProductController struct {
	Catalog *catalog.Service
	Logger  *zap.Logger
}

// NewProductController creates a new ProductController
func NewProductController(service *catalog.Service, logger *zap.Logger) *ProductController {
	return &ProductController{
		Catalog: service,
		Logger:  logger,
	}
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	product, err := pc.Catalog.CreateProduct(r.Context(), in)
	if err != nil {
		pc.fail(w, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// GetProducts lists products, optionally filtered by category and search text
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter := store.ProductFilter{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid category ID", http.StatusBadRequest)
			return
		}
		filter.CategoryID = categoryID
	}

	products, err := pc.Catalog.List(r.Context(), filter)
	if err != nil {
		pc.fail(w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := pc.Catalog.Product(r.Context(), id)
	if err != nil {
		pc.fail(w, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	product, err := pc.Catalog.UpdateProduct(r.Context(), id, in)
	if err != nil {
		pc.fail(w, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	if err := pc.Catalog.DeleteProduct(r.Context(), id); err != nil {
		pc.fail(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (pc *ProductController) fail(w http.ResponseWriter, op string, err error) {
	catalogFail(w, pc.Logger, op, err)
}

// catalogFail maps catalog errors for both the product and category controllers
func catalogFail(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeValidation(w, err)
	case errors.Is(err, catalog.ErrProductNotFound):
		http.Error(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrCategoryNotFound):
		http.Error(w, "Category not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrCategoryExists):
		http.Error(w, "Category already exists", http.StatusConflict)
	case errors.Is(err, catalog.ErrCategoryInUse):
		http.Error(w, "Category still has products", http.StatusConflict)
	default:
		logger.Error(op+" failed", zap.Error(err))
		http.Error(w, "Error processing request", http.StatusInternalServerError)
	}
}
