package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mtlsdemo/pkg/config"
	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/models"

	_ "modernc.org/sqlite"
)

// Schema creates the orders table.
const Schema = `
CREATE TABLE IF NOT EXISTS orders (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    description TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'pending',
    created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);
`

// SeedOrders are inserted into an empty SQLite database so the demo has something to show.
var SeedOrders = []models.Order{
	{Description: "Workload attestation kit", Status: models.OrderStatusCompleted},
	{Description: "Trust bundle rotation", Status: models.OrderStatusProcessing},
	{Description: "SVID renewal audit", Status: models.OrderStatusPending},
}

// OpenSQLite opens (and creates) a local order database. It stands in for PostgreSQL when
// running the services outside a cluster.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrDatabaseError, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := database.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to enable WAL mode: %w", ErrDatabaseError, err)
	}

	if _, err := database.ExecContext(ctx, Schema); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to initialize schema: %w", ErrDatabaseError, err)
	}

	s := &SQLStore{db: database, driver: config.DriverSQLite}
	if err := s.seed(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}

	log.Info().Str("path", path).Msg("SQLite order store ready")
	return s, nil
}

func (s *SQLStore) seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return fmt.Errorf("%w: failed to count orders: %w", ErrDatabaseError, err)
	}
	if count > 0 {
		return nil
	}

	// Oldest first so that the first seed order ends up last in Orders.
	base := time.Now().UTC().Add(-time.Duration(len(SeedOrders)) * time.Hour)
	for i, order := range SeedOrders {
		createdAt := base.Add(time.Duration(i) * time.Hour)
		if err := s.Insert(ctx, order.Description, order.Status, createdAt); err != nil {
			return err
		}
	}
	return nil
}

// Insert adds an order using SQLite placeholders. The demo itself never writes orders.
func (s *SQLStore) Insert(ctx context.Context, description, status string, createdAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (description, status, created_at) VALUES (?, ?, ?)`,
		description, status, createdAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert order: %w", ErrDatabaseError, err)
	}
	return nil
}
