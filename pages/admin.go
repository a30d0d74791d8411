package pages

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"eshop/catalog"
	"eshop/models"
	"eshop/store"
	"eshop/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type adminProducts struct {
	Products   []models.Product
	Categories []models.Category
}

// productForm keeps the raw form strings so a rejected form re-renders as typed
type productForm struct {
	Action        string
	Heading       string
	Name          string
	Description   string
	Price         string
	StockQuantity string
	CategoryID    int64
	ImageURL      string
	Categories    []models.Category
	Errors        []string
}

// AdminProducts lists every product and the category manager
func (h *Handler) AdminProducts(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	products, err := h.Catalog.List(r.Context(), store.ProductFilter{})
	if err != nil {
		h.serverError(w, r, "list products", err)
		return
	}
	categories, err := h.Catalog.Categories(r.Context())
	if err != nil {
		h.serverError(w, r, "list categories", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_products.html", "Manage products", adminProducts{
		Products:   products,
		Categories: categories,
	})
}

// CreateProductPage shows an empty product form
func (h *Handler) CreateProductPage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	h.renderProductForm(w, r, http.StatusOK, productForm{
		Action:        "/admin/products/create",
		Heading:       "New product",
		StockQuantity: "0",
	})
}

// CreateProduct saves the product form
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	form := readProductForm(r)
	form.Action = "/admin/products/create"
	form.Heading = "New product"

	in, errs := form.input()
	if len(errs) > 0 {
		form.Errors = errs
		h.renderProductForm(w, r, http.StatusBadRequest, form)
		return
	}
	product, err := h.Catalog.CreateProduct(r.Context(), in)
	if err != nil {
		h.productFormFailed(w, r, form, "create product", err)
		return
	}
	h.redirectWithFlash(w, r, "/admin/products", "success", "Created "+product.Name)
}

// EditProductPage shows the form filled with the current product
func (h *Handler) EditProductPage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := productID(r)
	if !ok {
		h.notFound(w, r, "Product not found.")
		return
	}
	product, err := h.Catalog.Product(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		h.notFound(w, r, "Product not found.")
		return
	}
	if err != nil {
		h.serverError(w, r, "load product", err)
		return
	}
	h.renderProductForm(w, r, http.StatusOK, productForm{
		Action:        editAction(id),
		Heading:       "Edit " + product.Name,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price.StringFixed(2),
		StockQuantity: strconv.Itoa(product.StockQuantity),
		CategoryID:    product.CategoryID,
		ImageURL:      product.ImageURL,
	})
}

// EditProduct saves changes to a product
func (h *Handler) EditProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := productID(r)
	if !ok {
		h.notFound(w, r, "Product not found.")
		return
	}
	form := readProductForm(r)
	form.Action = editAction(id)
	form.Heading = "Edit " + form.Name

	in, errs := form.input()
	if len(errs) > 0 {
		form.Errors = errs
		h.renderProductForm(w, r, http.StatusBadRequest, form)
		return
	}
	product, err := h.Catalog.UpdateProduct(r.Context(), id, in)
	if err != nil {
		h.productFormFailed(w, r, form, "update product", err)
		return
	}
	h.redirectWithFlash(w, r, "/admin/products", "success", "Saved "+product.Name)
}

// DeleteProduct removes a product from the catalog
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, ok := productID(r)
	if !ok {
		h.redirectWithFlash(w, r, "/admin/products", "error", "Product not found")
		return
	}
	err := h.Catalog.DeleteProduct(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		h.redirectWithFlash(w, r, "/admin/products", "error", "Product not found")
	case err != nil:
		h.serverError(w, r, "delete product", err)
	default:
		h.redirectWithFlash(w, r, "/admin/products", "success", "Product deleted")
	}
}

// CreateCategory adds a category from the admin panel
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	_, err := h.Catalog.CreateCategory(r.Context(), catalog.CategoryInput{Name: r.PostFormValue("name")})
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		h.redirectWithFlash(w, r, "/admin/products", "error", strings.Join(utils.ValidationMessages(err), "; "))
	case errors.Is(err, catalog.ErrCategoryExists):
		h.redirectWithFlash(w, r, "/admin/products", "error", "Category already exists")
	case err != nil:
		h.serverError(w, r, "create category", err)
	default:
		h.redirectWithFlash(w, r, "/admin/products", "success", "Category added")
	}
}

// DeleteCategory removes a category no product uses
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.redirectWithFlash(w, r, "/admin/products", "error", "Category not found")
		return
	}
	err = h.Catalog.DeleteCategory(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrCategoryInUse):
		h.redirectWithFlash(w, r, "/admin/products", "error", "Move or delete its products first")
	case errors.Is(err, catalog.ErrCategoryNotFound):
		h.redirectWithFlash(w, r, "/admin/products", "error", "Category not found")
	case err != nil:
		h.serverError(w, r, "delete category", err)
	default:
		h.redirectWithFlash(w, r, "/admin/products", "success", "Category deleted")
	}
}

func (h *Handler) renderProductForm(w http.ResponseWriter, r *http.Request, status int, form productForm) {
	categories, err := h.Catalog.Categories(r.Context())
	if err != nil {
		h.serverError(w, r, "list categories", err)
		return
	}
	form.Categories = categories
	h.render(w, r, status, "admin_form.html", form.Heading, form)
}

func (h *Handler) productFormFailed(w http.ResponseWriter, r *http.Request, form productForm, op string, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		form.Errors = utils.ValidationMessages(err)
	case errors.Is(err, catalog.ErrCategoryNotFound):
		form.Errors = []string{"Choose an existing category"}
	case errors.Is(err, catalog.ErrProductNotFound):
		h.notFound(w, r, "Product not found.")
		return
	default:
		h.serverError(w, r, op, err)
		return
	}
	h.renderProductForm(w, r, http.StatusBadRequest, form)
}

func readProductForm(r *http.Request) productForm {
	categoryID, _ := strconv.ParseInt(r.PostFormValue("categoryId"), 10, 64)
	return productForm{
		Name:          r.PostFormValue("name"),
		Description:   r.PostFormValue("description"),
		Price:         strings.TrimSpace(r.PostFormValue("price")),
		StockQuantity: strings.TrimSpace(r.PostFormValue("stockQuantity")),
		CategoryID:    categoryID,
		ImageURL:      r.PostFormValue("imageUrl"),
	}
}

// input converts the strings that need parsing before validation
func (f productForm) input() (catalog.ProductInput, []string) {
	var errs []string
	price, err := decimal.NewFromString(f.Price)
	if err != nil {
		errs = append(errs, "price must be a number")
	}
	stock, err := strconv.Atoi(f.StockQuantity)
	if err != nil {
		errs = append(errs, "stockQuantity must be a whole number")
	}
	return catalog.ProductInput{
		Name:          f.Name,
		Description:   f.Description,
		Price:         price,
		StockQuantity: stock,
		CategoryID:    f.CategoryID,
		ImageURL:      f.ImageURL,
	}, errs
}

func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func editAction(id int64) string {
	return "/admin/products/" + strconv.FormatInt(id, 10) + "/edit"
}
