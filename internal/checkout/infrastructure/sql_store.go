package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type sqlDialect struct {
	get    string
	upsert string
	delete string
}

var (
	postgresDialect = sqlDialect{
		get: `SELECT value FROM cart_storage WHERE namespace = $1 AND storage_key = $2`,
		upsert: `INSERT INTO cart_storage (namespace, storage_key, value, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (namespace, storage_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		delete: `DELETE FROM cart_storage WHERE namespace = $1 AND storage_key = $2`,
	}
	sqliteDialect = sqlDialect{
		get: `SELECT value FROM cart_storage WHERE namespace = ? AND storage_key = ?`,
		upsert: `INSERT INTO cart_storage (namespace, storage_key, value, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (namespace, storage_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		delete: `DELETE FROM cart_storage WHERE namespace = ? AND storage_key = ?`,
	}
)

// SQLStateStore keeps state in the cart_storage table of a PostgreSQL or SQLite database.
type SQLStateStore struct {
	db      *sql.DB
	dialect sqlDialect
}

// NewSQLStateStore takes the database/sql driver name the handle was opened with ("pgx" or "sqlite").
func NewSQLStateStore(db *sql.DB, driverName string) (*SQLStateStore, error) {
	switch driverName {
	case "pgx":
		return &SQLStateStore{db: db, dialect: postgresDialect}, nil
	case "sqlite":
		return &SQLStateStore{db: db, dialect: sqliteDialect}, nil
	}
	return nil, fmt.Errorf("unsupported sql driver %q", driverName)
}

func (s *SQLStateStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.get, namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLStateStore) Set(ctx context.Context, namespace, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert, namespace, key, value, time.Now().UTC())
	return err
}

func (s *SQLStateStore) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.delete, namespace, key)
	return err
}

func (s *SQLStateStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
