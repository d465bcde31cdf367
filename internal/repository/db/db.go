// Package db implements the MetadataStore against PostgreSQL, using
// database/sql directly (no ORM) so rows map onto domain.ShardRecord with
// plain driver calls.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Database wraps a *sql.DB connection pool to a PostgreSQL metadata store.
type Database struct {
	Conn *sql.DB
}

// NewDatabase opens a connection pool against dsn, a postgres:// connection string.
func NewDatabase(dsn string) (*Database, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Database{Conn: conn}, nil
}

// Close releases the underlying connection pool.
func (d *Database) Close() error {
	return d.Conn.Close()
}

// PingContext verifies connectivity, used by health checks.
func (d *Database) PingContext(ctx context.Context) error {
	return d.Conn.PingContext(ctx)
}
