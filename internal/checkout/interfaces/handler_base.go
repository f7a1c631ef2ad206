package interfaces

import (
	"context"
	"errors"
	"net/http"

	"github.com/sebuszqo/BarberCheckout/internal/auth"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/application"
	checkoutErrors "github.com/sebuszqo/BarberCheckout/internal/checkout/errors"
	"github.com/sirupsen/logrus"
)

type CheckoutProvider interface {
	Get(ctx context.Context, sessionID string) (*application.Checkout, error)
}

type respondJSONFunc func(w http.ResponseWriter, status int, payload interface{})
type respondErrorFunc func(w http.ResponseWriter, status int, message string, errors ...[]string)

// handlerBase carries what every checkout handler needs: the per-session
// checkout lookup and the shared response writers.
type handlerBase struct {
	sessions     CheckoutProvider
	respondJSON  respondJSONFunc
	respondError respondErrorFunc
	log          logrus.FieldLogger
}

func newHandlerBase(sessions CheckoutProvider, respondJSON respondJSONFunc, respondError respondErrorFunc, log logrus.FieldLogger) handlerBase {
	if sessions == nil || respondJSON == nil || respondError == nil || log == nil {
		panic("Sessions, logger and response functions must not be nil")
	}
	return handlerBase{
		sessions:     sessions,
		respondJSON:  respondJSON,
		respondError: respondError,
		log:          log,
	}
}

func (h handlerBase) checkoutFor(w http.ResponseWriter, r *http.Request) (*application.Checkout, bool) {
	sessionID, ok := auth.SessionIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Session is required")
		return nil, false
	}

	checkout, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		h.log.WithError(err).WithField("session_id", sessionID).Error("Failed to load checkout session")
		h.respondError(w, http.StatusInternalServerError, "Failed to load cart")
		return nil, false
	}
	return checkout, true
}

func (h handlerBase) success(w http.ResponseWriter, status int, message string, data interface{}) {
	h.respondJSON(w, status, map[string]interface{}{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func (h handlerBase) handleServiceError(w http.ResponseWriter, err error, fallback string) {
	var validationErrors *checkoutErrors.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		h.respondError(w, http.StatusBadRequest, "Validation failed", validationErrors.Messages())
	case checkoutErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkoutErrors.ErrItemNotFound):
		h.respondError(w, http.StatusNotFound, "Item not found in cart")
	case errors.Is(err, checkoutErrors.ErrRemovalNotConfirmed):
		h.respondError(w, http.StatusPreconditionRequired, "Are you sure you want to remove this product from your cart?")
	case errors.Is(err, checkoutErrors.ErrPaymentInProgress):
		h.respondError(w, http.StatusConflict, "Payment is already being processed")
	case errors.Is(err, checkoutErrors.ErrSessionExpired):
		h.respondError(w, http.StatusConflict, "Your checkout session expired, please try again")
	default:
		h.log.WithError(err).Error(fallback)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}
