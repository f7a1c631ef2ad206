package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/interfaces"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const readinessTimeout = 2 * time.Second

type Response struct {
	Message string `json:"message"`
}

type Server struct {
	router            *http.ServeMux
	cartHandler       *interfaces.CartHandler
	paymentHandler    *interfaces.PaymentHandler
	checkoutHandler   *interfaces.CheckoutHandler
	sessionMiddleware func(http.Handler) http.Handler
	store             domain.StateStore
	databaseHealth    func(ctx context.Context) map[string]string
	log               logrus.FieldLogger
}

func NewServer(
	cartHandler *interfaces.CartHandler,
	paymentHandler *interfaces.PaymentHandler,
	checkoutHandler *interfaces.CheckoutHandler,
	sessionMiddleware func(http.Handler) http.Handler,
	store domain.StateStore,
	log logrus.FieldLogger,
) *Server {
	return &Server{
		router:            http.NewServeMux(),
		cartHandler:       cartHandler,
		paymentHandler:    paymentHandler,
		checkoutHandler:   checkoutHandler,
		sessionMiddleware: sessionMiddleware,
		store:             store,
		log:               log,
	}
}

// SetDatabaseHealth adds the SQL connection's health report to /api/ready.
func (s *Server) SetDatabaseHealth(health func(ctx context.Context) map[string]string) {
	s.databaseHealth = health
}

func loggingMiddleware(log logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Debug("Request started")

		next.ServeHTTP(rw, r)

		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rw.status,
			"duration": time.Since(start).String(),
		}).Info("Request completed")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.WithError(err).Warn("Cart store is not reachable")
		interfaces.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
		return
	}
	if s.databaseHealth != nil {
		health := s.databaseHealth(ctx)
		if health["status"] != "up" {
			s.log.WithField("error", health["error"]).Warn("Database health check failed")
			interfaces.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unavailable",
				"database": health["status"],
			})
			return
		}
		interfaces.RespondJSON(w, http.StatusOK, map[string]string{
			"status":   "ready",
			"database": health["status"],
		})
		return
	}
	interfaces.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// Routes bound to the shopper's session cookie
	sessionRoutes := http.NewServeMux()
	sessionRoutes.Handle("GET /api/checkout", http.HandlerFunc(s.checkoutHandler.GetCheckout))
	sessionRoutes.Handle("POST /api/checkout", http.HandlerFunc(s.checkoutHandler.Submit))

	sessionRoutes.Handle("GET /api/cart", http.HandlerFunc(s.cartHandler.GetCart))
	sessionRoutes.Handle("POST /api/cart/items", http.HandlerFunc(s.cartHandler.AddItem))
	sessionRoutes.Handle("PATCH /api/cart/items/{itemID}",
		s.cartHandler.ValidateCartPathParamsMiddleware(http.HandlerFunc(s.cartHandler.UpdateQuantity), "itemID"))
	sessionRoutes.Handle("DELETE /api/cart/items/{itemID}",
		s.cartHandler.ValidateCartPathParamsMiddleware(http.HandlerFunc(s.cartHandler.RemoveItem), "itemID"))

	sessionRoutes.Handle("GET /api/payment/methods", http.HandlerFunc(s.paymentHandler.GetPaymentMethods))
	sessionRoutes.Handle("PUT /api/payment/method", http.HandlerFunc(s.paymentHandler.SelectPaymentMethod))
	sessionRoutes.Handle("PUT /api/payment/form", http.HandlerFunc(s.paymentHandler.UpdateForm))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/ready", publicRoutes)
	mainRouter.Handle("/api/checkout", s.sessionMiddleware(sessionRoutes))
	mainRouter.Handle("/api/cart", s.sessionMiddleware(sessionRoutes))
	mainRouter.Handle("/api/cart/", s.sessionMiddleware(sessionRoutes))
	mainRouter.Handle("/api/payment/", s.sessionMiddleware(sessionRoutes))
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

// Handler wraps the router with request logging and OTel HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.router
	handler = loggingMiddleware(s.log, handler)
	handler = otelhttp.NewHandler(handler, "barber-checkout")
	return handler
}
