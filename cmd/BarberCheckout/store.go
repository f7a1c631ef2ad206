package main

import (
	"context"
	"fmt"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/infrastructure"
	"github.com/sebuszqo/BarberCheckout/internal/config"
	database "github.com/sebuszqo/BarberCheckout/internal/db"
	"github.com/sirupsen/logrus"
)

// openDatabase returns nil for store drivers that are not SQL backed.
func openDatabase(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*database.DBService, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return database.NewDBService(ctx, database.DriverPostgres, cfg.DBConnectionString, log)
	case config.StoreSQLite:
		return database.NewDBService(ctx, database.DriverSQLite, cfg.SQLitePath, log)
	default:
		return nil, nil
	}
}

// openedStore is the cart state backend picked by STORE_DRIVER. db is set only for SQL drivers.
type openedStore struct {
	domain.StateStore
	db    *database.DBService
	close func()
}

func openStateStore(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*openedStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("Using in-memory cart store, carts are lost on restart")
		return &openedStore{StateStore: infrastructure.NewMemoryStateStore(), close: func() {}}, nil

	case config.StorePostgres, config.StoreSQLite:
		dbService, err := openDatabase(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("could not initialize database: %w", err)
		}
		if err := dbService.Migrate(ctx); err != nil {
			dbService.Close()
			return nil, err
		}
		store, err := infrastructure.NewSQLStateStore(dbService.DB, dbService.Driver)
		if err != nil {
			dbService.Close()
			return nil, err
		}
		return &openedStore{StateStore: store, db: dbService, close: func() { dbService.Close() }}, nil

	case config.StoreRedis:
		store := infrastructure.NewRedisStateStore(cfg.RedisAddr, log)
		if err := store.Initialize(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("could not connect to redis: %w", err)
		}
		return &openedStore{StateStore: store, close: func() { store.Close() }}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
