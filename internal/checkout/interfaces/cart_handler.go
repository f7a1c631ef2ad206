package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	handlerBase
}

func NewCartHandler(
	sessions CheckoutProvider,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
	log logrus.FieldLogger,
) *CartHandler {
	return &CartHandler{handlerBase: newHandlerBase(sessions, respondJSON, respondError, log)}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	checkout, ok := h.checkoutFor(w, r)
	if !ok {
		return
	}
	h.success(w, http.StatusOK, "Cart retrieved successfully.", checkout.CartView())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item domain.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	checkout, ok := h.checkoutFor(w, r)
	if !ok {
		return
	}
	view, err := checkout.AddItem(r.Context(), item)
	if err != nil {
		h.handleServiceError(w, err, "Failed to add item to cart")
		return
	}
	h.success(w, http.StatusCreated, "Item added to cart.", view)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemID")
	var req struct {
		Delta *int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Delta == nil {
		h.respondError(w, http.StatusBadRequest, "Field 'delta' is required")
		return
	}

	checkout, ok := h.checkoutFor(w, r)
	if !ok {
		return
	}
	view, err := checkout.UpdateQuantity(r.Context(), itemID, *req.Delta)
	if err != nil {
		h.handleServiceError(w, err, "Failed to update cart")
		return
	}
	h.success(w, http.StatusOK, "Cart updated.", view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemID")
	confirmed := false
	if raw := r.URL.Query().Get("confirm"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid confirm parameter")
			return
		}
		confirmed = parsed
	}

	checkout, ok := h.checkoutFor(w, r)
	if !ok {
		return
	}
	view, err := checkout.RemoveItem(r.Context(), itemID, confirmed)
	if err != nil {
		h.handleServiceError(w, err, "Failed to remove item")
		return
	}
	h.success(w, http.StatusOK, "Item removed from cart.", view)
}
