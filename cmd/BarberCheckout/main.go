package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sebuszqo/BarberCheckout/internal/auth"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/application"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/infrastructure"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/interfaces"
	"github.com/sebuszqo/BarberCheckout/internal/config"
	emailService "github.com/sebuszqo/BarberCheckout/internal/email"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "barber-checkout",
	Short: "Cart and payment service for the barbershop shop page",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the cart_storage table for the postgres or sqlite store",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("missing configuration: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	dbService, err := openDatabase(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("could not initialize database: %w", err)
	}
	if dbService == nil {
		return fmt.Errorf("store driver %q has no schema to migrate", cfg.StoreDriver)
	}
	defer dbService.Close()

	return dbService.Migrate(cmd.Context())
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("missing configuration, update to start server: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.EnableTracing {
		tp := initTracing(log)
		defer tp.Shutdown(context.Background())
	} else {
		log.Info("Tracing disabled.")
	}

	catalog, err := cfg.LoadPaymentMethods()
	if err != nil {
		return err
	}

	store, err := openStateStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()
	cartRepo := infrastructure.NewCartRepository(store, log)

	receipts, err := emailService.NewReceiptService(emailService.Config{
		From:     cfg.EmailAddress,
		Password: cfg.EmailPassword,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
	}, log)
	if err != nil {
		return err
	}
	defer receipts.Close()

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		return err
	}

	checkoutOptions := application.Options{
		Catalog: catalog,
		View: application.ViewOptions{
			CurrencySymbol:      cfg.CurrencySymbol,
			ContinueShoppingURL: cfg.ContinueShoppingURL,
		},
		PaymentDelay: cfg.PaymentDelay,
		Receipts:     receipts,
		Logger:       log,
	}
	registry := application.NewSessionRegistry(func(ctx context.Context, sessionID string) (*application.Checkout, error) {
		return application.NewCheckout(ctx, sessionID, cartRepo, checkoutOptions)
	}, time.Now, log)

	sweeper, err := StartSessionSweeper(registry, cfg.SessionSweepSchedule, cfg.SessionIdleTimeout, log)
	if err != nil {
		return fmt.Errorf("scheduler didn't start: %w", err)
	}
	defer sweeper.Stop()

	server := NewServer(
		interfaces.NewCartHandler(registry, interfaces.RespondJSON, interfaces.RespondError, log),
		interfaces.NewPaymentHandler(registry, interfaces.RespondJSON, interfaces.RespondError, log),
		interfaces.NewCheckoutHandler(registry, interfaces.RespondJSON, interfaces.RespondError, log),
		auth.SessionMiddleware(jwtManager, auth.SessionMiddlewareConfig{SecureCookie: cfg.SecureCookie}, log),
		store,
		log,
	)
	if store.db != nil {
		server.SetDatabaseHealth(store.db.Health)
	}
	server.RegisterRoutes()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreDriver}).Info("Server starting")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
