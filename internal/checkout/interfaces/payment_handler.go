package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	"github.com/sirupsen/logrus"
)

type PaymentHandler struct {
	handlerBase
}

func NewPaymentHandler(
	sessions CheckoutProvider,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
	log logrus.FieldLogger,
) *PaymentHandler {
	return &PaymentHandler{handlerBase: newHandlerBase(sessions, respondJSON, respondError, log)}
}

func (h *PaymentHandler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	checkout, ok := h.checkoutFor(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Methods retrieved successfully.",
		"methods": checkout.Methods(),
	})
}

func (h *PaymentHandler) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	checkout, ok := h.checkoutFor(w, r)
	if !ok {
		return
	}
	view, err := checkout.SelectPaymentMethod(req.Method)
	if err != nil {
		h.handleServiceError(w, err, "Failed to select payment method")
		return
	}
	h.success(w, http.StatusOK, "Payment method selected.", view)
}

func (h *PaymentHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	var form domain.PaymentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	checkout, ok := h.checkoutFor(w, r)
	if !ok {
		return
	}
	view, err := checkout.UpdateForm(form)
	if err != nil {
		h.handleServiceError(w, err, "Failed to update payment form")
		return
	}
	h.success(w, http.StatusOK, "Payment form updated.", view)
}
