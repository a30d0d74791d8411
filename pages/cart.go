package pages

import (
	"errors"
	"net/http"
	"strconv"

	"eshop/cart"
	"eshop/middleware"

	"go.uber.org/zap"
)

// CartPage renders the shopper's cart
func (h *Handler) CartPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r, "/cart")
	if !ok {
		return
	}
	snap, err := h.Cart.GetSnapshot(r.Context(), userID)
	if err != nil {
		h.serverError(w, r, "load cart", err)
		return
	}
	h.render(w, r, http.StatusOK, "cart.html", "Your cart", cart.NewView(snap))
}

// UpdateCartItem sets a line quantity from the cart page form
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r, "/cart")
	if !ok {
		return
	}
	lineID, err := strconv.ParseInt(r.PostFormValue("cartItemId"), 10, 64)
	if err != nil {
		h.redirectWithFlash(w, r, "/cart", "error", cart.Message(cart.ErrCartLineNotFound))
		return
	}
	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		h.redirectWithFlash(w, r, "/cart", "error", cart.Message(cart.ErrInvalidQuantity))
		return
	}

	if err := h.Cart.UpdateQuantity(r.Context(), userID, lineID, quantity); err != nil {
		h.cartFailed(w, r, "/cart", "update cart item", err)
		return
	}
	h.redirectWithFlash(w, r, "/cart", "success", "Cart updated")
}

// RemoveCartItem deletes a line; one that is already gone counts as removed
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r, "/cart")
	if !ok {
		return
	}
	lineID, err := strconv.ParseInt(r.PostFormValue("cartItemId"), 10, 64)
	if err != nil {
		h.redirectWithFlash(w, r, "/cart", "error", cart.Message(cart.ErrCartLineNotFound))
		return
	}

	err = h.Cart.RemoveItem(r.Context(), userID, lineID)
	if err != nil && !errors.Is(err, cart.ErrCartLineNotFound) {
		h.cartFailed(w, r, "/cart", "remove cart item", err)
		return
	}
	h.redirectWithFlash(w, r, "/cart", "success", "Item removed")
}

// CartSummary is the badge fragment other pages can load on their own
func (h *Handler) CartSummary(w http.ResponseWriter, r *http.Request) {
	var badge cart.Badge
	if userID := middleware.UserID(r.Context()); userID != "" {
		var err error
		badge, err = cart.CountBadge(r.Context(), h.Cart, userID)
		if err != nil {
			h.Logger.Warn("cart badge unavailable", zap.String("user_id", userID), zap.Error(err))
		}
	}
	h.execute(w, http.StatusOK, "cart_summary.html", "summary", badge)
}
