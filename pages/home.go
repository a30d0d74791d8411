package pages

import (
	"errors"
	"net/http"
	"strconv"

	"eshop/cart"
	"eshop/middleware"
	"eshop/models"
	"eshop/store"

	"go.uber.org/zap"
)

type productList struct {
	Products   []models.Product
	Quantities map[int64]int
}

type catalogData struct {
	productList
	Categories []models.Category
	CategoryID int64
	Search     string
}

// Home shows the newest products with the quantity already in the cart
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.Latest(r.Context())
	if err != nil {
		h.serverError(w, r, "load home", err)
		return
	}
	h.render(w, r, http.StatusOK, "home.html", "Home", productList{
		Products:   products,
		Quantities: h.quantities(r),
	})
}

// CatalogPage lists products with the category filter and search box
func (h *Handler) CatalogPage(w http.ResponseWriter, r *http.Request) {
	filter := store.ProductFilter{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.CategoryID = id
		}
	}

	products, err := h.Catalog.List(r.Context(), filter)
	if err != nil {
		h.serverError(w, r, "list products", err)
		return
	}
	categories, err := h.Catalog.Categories(r.Context())
	if err != nil {
		h.serverError(w, r, "list categories", err)
		return
	}
	h.render(w, r, http.StatusOK, "catalog.html", "Catalog", catalogData{
		productList: productList{Products: products, Quantities: h.quantities(r)},
		Categories:  categories,
		CategoryID:  filter.CategoryID,
		Search:      filter.Search,
	})
}

// quantities is best effort; the listing still renders without it
func (h *Handler) quantities(r *http.Request) map[int64]int {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		return nil
	}
	quantities, err := h.Cart.Quantities(r.Context(), userID)
	if err != nil {
		h.Logger.Warn("cart quantities unavailable", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return quantities
}

// AddToCart handles the add button on listing pages
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	returnTo := safeReturn(r.PostFormValue("return"), "/catalog")
	userID, ok := h.requireUser(w, r, returnTo)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(r.PostFormValue("productId"), 10, 64)
	if err != nil {
		h.redirectWithFlash(w, r, returnTo, "error", cart.Message(cart.ErrProductNotFound))
		return
	}
	quantity := 1
	if raw := r.PostFormValue("quantity"); raw != "" {
		if quantity, err = strconv.Atoi(raw); err != nil {
			h.redirectWithFlash(w, r, returnTo, "error", cart.Message(cart.ErrInvalidQuantity))
			return
		}
	}

	if _, err := h.Cart.AddItem(r.Context(), userID, productID, quantity); err != nil {
		h.cartFailed(w, r, returnTo, "add to cart", err)
		return
	}
	h.redirectWithFlash(w, r, returnTo, "success", "Added to cart")
}

// ChangeQuantity handles the +/- controls next to each listed product
func (h *Handler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	returnTo := safeReturn(r.PostFormValue("return"), "/")
	userID, ok := h.requireUser(w, r, returnTo)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(r.PostFormValue("productId"), 10, 64)
	if err != nil {
		h.redirectWithFlash(w, r, returnTo, "error", cart.Message(cart.ErrProductNotFound))
		return
	}
	change, err := strconv.Atoi(r.PostFormValue("change"))
	if err != nil {
		h.redirectWithFlash(w, r, returnTo, "error", cart.Message(cart.ErrInvalidQuantity))
		return
	}

	if _, err := h.Cart.ChangeQuantity(r.Context(), userID, productID, change); err != nil {
		h.cartFailed(w, r, returnTo, "change quantity", err)
		return
	}
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

func (h *Handler) cartFailed(w http.ResponseWriter, r *http.Request, returnTo, op string, err error) {
	if errors.Is(err, cart.ErrStorageUnavailable) {
		h.Logger.Error(op+" failed",
			zap.String("request_id", middleware.RequestID(r.Context())),
			zap.Error(err),
		)
	}
	h.redirectWithFlash(w, r, returnTo, "error", cart.Message(err))
}
