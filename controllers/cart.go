package controllers

import (
	"errors"
	"net/http"

	"eshop/cart"
	"eshop/middleware"

	"go.uber.org/zap"
)

// CartController serves the JSON cart API used by the storefront scripts
type CartController struct {
	Cart   cart.Service
	Logger *zap.Logger
}

// NewCartController creates a new CartController
func NewCartController(service cart.Service, logger *zap.Logger) *CartController {
	return &CartController{
		Cart:   service,
		Logger: logger,
	}
}

type addToCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  *int  `json:"quantity"`
}

type updateCartItemRequest struct {
	CartItemID int64 `json:"cartItemId"`
	Quantity   int   `json:"quantity"`
}

type cartResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

type cartFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AddToCart adds a product to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, cartFailure{Message: "Invalid input"})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	userID := middleware.UserID(r.Context())
	if _, err := cc.Cart.AddItem(r.Context(), userID, req.ProductID, quantity); err != nil {
		cc.fail(w, r, "add to cart", err)
		return
	}
	cc.respondCount(w, r, "")
}

// UpdateCartItem sets the quantity of one of the user's lines
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, cartFailure{Message: "Invalid input"})
		return
	}

	userID := middleware.UserID(r.Context())
	if err := cc.Cart.UpdateQuantity(r.Context(), userID, req.CartItemID, req.Quantity); err != nil {
		cc.fail(w, r, "update cart item", err)
		return
	}
	cc.respondCount(w, r, "Cart updated")
}

// RemoveFromCart deletes a line. A line that is already gone counts as removed.
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathID(r, "cartItemId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, cartFailure{Message: "Invalid cart item ID"})
		return
	}

	userID := middleware.UserID(r.Context())
	err := cc.Cart.RemoveItem(r.Context(), userID, lineID)
	if err != nil && !errors.Is(err, cart.ErrCartLineNotFound) {
		cc.fail(w, r, "remove from cart", err)
		return
	}
	cc.respondCount(w, r, "")
}

// GetCartItemCount returns the badge count. Anonymous visitors get zero.
func (cc *CartController) GetCartItemCount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusOK, cart.Badge{})
		return
	}
	badge, err := cart.CountBadge(r.Context(), cc.Cart, userID)
	if err != nil {
		cc.fail(w, r, "count cart items", err)
		return
	}
	writeJSON(w, http.StatusOK, badge)
}

// GetCart returns the user's cart with line and cart totals
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	snap, err := cc.Cart.GetSnapshot(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		cc.fail(w, r, "get cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cart.NewView(snap))
}

func (cc *CartController) respondCount(w http.ResponseWriter, r *http.Request, message string) {
	count, err := cc.Cart.GetItemCount(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		cc.fail(w, r, "count cart items", err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Success: true, Count: count, Message: message})
}

func (cc *CartController) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := cartStatus(err)
	if status >= http.StatusInternalServerError {
		cc.Logger.Error(op+" failed",
			zap.String("request_id", middleware.RequestID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, cartFailure{Message: cart.Message(err)})
}

// cartStatus maps engine errors to HTTP statuses
func cartStatus(err error) int {
	switch {
	case errors.Is(err, cart.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, cart.ErrProductNotFound), errors.Is(err, cart.ErrCartLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
