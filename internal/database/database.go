// Package database centralises sqlx connection helpers for both supported
// dialects.  PostgreSQL goes through pgx's database/sql adapter; MySQL
// through go-sql-driver/mysql with parseTime forced on so DATETIME columns
// scan into time.Time.
//
// Public entry points:
//
//	Open(ctx, dialect, dsn)                    – conservative pool sizes.
//	OpenWithOptions(ctx, dialect, dsn, opts)   – fine-grained control.
//
// Both helpers ping the database before returning so callers fail fast at
// startup.  Callers should Close() the returned *sqlx.DB.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitequery/internal/schema"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultOptions is 10 open, 5 idle, 30-minute lifetime.
func DefaultOptions() Options {
	return Options{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute}
}

// Open connects with DefaultOptions.
func Open(ctx context.Context, d schema.Dialect, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, d, dsn, DefaultOptions())
}

// OpenWithOptions connects, applies the pool settings, and pings.
func OpenWithOptions(ctx context.Context, d schema.Dialect, dsn string, opts Options) (*sqlx.DB, error) {
	dsn, err := NormalizeDSN(d, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}
	Configure(db, opts)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}
	return db, nil
}

// Configure applies opts to an open pool.  Zero fields are left alone.
func Configure(db *sqlx.DB, opts Options) {
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
}

// NormalizeDSN returns dsn in the form the dialect's driver expects.
// MySQL DSNs get parseTime=true; PostgreSQL DSNs pass through unchanged.
func NormalizeDSN(d schema.Dialect, dsn string) (string, error) {
	switch d {
	case schema.Postgres:
		return dsn, nil
	case schema.MySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	default:
		return "", fmt.Errorf("%w: %q", schema.ErrUnknownDialect, string(d))
	}
}
