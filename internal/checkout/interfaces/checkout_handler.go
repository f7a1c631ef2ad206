package interfaces

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/application"
	"github.com/sirupsen/logrus"
)

type CheckoutHandler struct {
	handlerBase
}

func NewCheckoutHandler(
	sessions CheckoutProvider,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
	log logrus.FieldLogger,
) *CheckoutHandler {
	return &CheckoutHandler{handlerBase: newHandlerBase(sessions, respondJSON, respondError, log)}
}

func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	checkout, ok := h.checkoutFor(w, r)
	if !ok {
		return
	}
	h.success(w, http.StatusOK, "Checkout retrieved successfully.", checkout.View())
}

// Submit accepts an empty body; the receipt e-mail is optional.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req application.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	checkout, ok := h.checkoutFor(w, r)
	if !ok {
		return
	}
	ticket, err := checkout.Submit(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "Failed to start payment")
		return
	}
	h.success(w, http.StatusAccepted, "Payment is being processed.", ticket)
}
