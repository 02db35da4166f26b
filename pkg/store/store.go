// Package store reads demo orders from the backend's database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mtlsdemo/pkg/config"
	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/models"
)

// ErrDatabaseError wraps every failure returned by a SQL-backed store.
var ErrDatabaseError = errors.New("database error")

// Store defines the operations the backend needs from its database.
type Store interface {
	// Orders returns all orders, newest first.
	Orders(ctx context.Context) ([]models.Order, error)

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close() error
}

// Identity is the workload identity used when connecting, and the one expected from the database.
type Identity struct {
	SPIFFEID     string
	PeerSPIFFEID string
}

const ordersQuery = `SELECT id, description, status, created_at FROM orders ORDER BY created_at DESC, id DESC`

// SQLStore implements Store on database/sql.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open connects to the database named by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, id Identity) (*SQLStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg, id)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", ErrDatabaseError, cfg.Driver)
	}
}

// Driver returns the database/sql driver name.
func (s *SQLStore) Driver() string {
	return s.driver
}

// Orders implements Store.
func (s *SQLStore) Orders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, ordersQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query orders: %w", ErrDatabaseError, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close order rows")
		}
	}()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(&order.ID, &order.Description, &order.Status, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan order: %w", ErrDatabaseError, err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating orders: %w", ErrDatabaseError, err)
	}

	log.Info().Int("count", len(orders)).Str("driver", s.driver).Msg("Retrieved orders")
	return orders, nil
}

// Ping implements Store.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: health check failed: %w", ErrDatabaseError, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func configurePool(db *sql.DB, cfg config.DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Int("max_idle_conns", cfg.MaxIdleConns).
		Dur("conn_max_lifetime", cfg.ConnMaxLifetime).
		Msg("Connection pool configured")
}
