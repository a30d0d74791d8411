package controllers

import (
	"net/http"

	"eshop/catalog"

	"go.uber.org/zap"
)

// CategoryController handles category requests
type CategoryController struct {
	Catalog *catalog.Service
	Logger  *zap.Logger
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(service *catalog.Service, logger *zap.Logger) *CategoryController {
	return &CategoryController{Catalog: service, Logger: logger}
}

// GetCategories lists all categories
func (cc *CategoryController) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := cc.Catalog.Categories(r.Context())
	if err != nil {
		catalogFail(w, cc.Logger, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory adds a category (Admin only)
func (cc *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	category, err := cc.Catalog.CreateCategory(r.Context(), in)
	if err != nil {
		catalogFail(w, cc.Logger, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// DeleteCategory removes an unused category (Admin only)
func (cc *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	if err := cc.Catalog.DeleteCategory(r.Context(), id); err != nil {
		catalogFail(w, cc.Logger, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
