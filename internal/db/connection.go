package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

const createCartStorageTable = `
CREATE TABLE IF NOT EXISTS cart_storage (
    namespace   TEXT      NOT NULL,
    storage_key TEXT      NOT NULL,
    value       TEXT      NOT NULL,
    updated_at  TIMESTAMP NOT NULL,
    PRIMARY KEY (namespace, storage_key)
)`

// DBService represents a service that interacts with a database.
type DBService struct {
	DB     *sql.DB
	Driver string
	log    logrus.FieldLogger
}

// NewDBService opens the database with the given database/sql driver and checks the connection.
func NewDBService(ctx context.Context, driver, connStr string, log logrus.FieldLogger) (*DBService, error) {
	if connStr == "" {
		return nil, fmt.Errorf("missing connection string for driver %s", driver)
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %w", err)
	}

	switch driver {
	case DriverPostgres:
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	case DriverSQLite:
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	return &DBService{DB: db, Driver: driver, log: log}, nil
}

// Migrate creates the cart_storage table when it does not exist yet.
func (s *DBService) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, createCartStorageTable); err != nil {
		return fmt.Errorf("could not create cart_storage table: %w", err)
	}
	s.log.WithField("driver", s.Driver).Info("Database schema is up to date")
	return nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *DBService) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	err := s.DB.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	return stats
}

// Close closes the database connection.
func (s *DBService) Close() error {
	s.log.WithField("driver", s.Driver).Info("Closing database connection")
	return s.DB.Close()
}
