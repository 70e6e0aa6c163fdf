// internal/migrations/migrations.go
//
// Embedded DDL for `sites` and `site_url_slug`, applied with
// golang-migrate.
//
// Context
// -------
// One directory per dialect, each holding numbered up/down pairs.  MySQL
// creates an index for the foreign key on its own, so it has no 000003.
// Every file holds a single statement; the MySQL driver does not need
// multiStatements=true.
//
// Up and Down treat migrate.ErrNoChange as success.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/sitequery/internal/schema"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

// FS returns the migration files for d.
func FS(d schema.Dialect) (fs.FS, error) {
	switch d {
	case schema.Postgres, schema.MySQL:
		return fs.Sub(files, d.String())
	default:
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownDialect, string(d))
	}
}

// Migrator applies the embedded migrations to one database.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.SugaredLogger
}

// New binds the embedded files to db.  log may be nil.
func New(db *sqlx.DB, d schema.Dialect, log *zap.SugaredLogger) (*Migrator, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	sub, err := FS(d)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("migrations source: %w", err)
	}

	var drv database.Driver
	switch d {
	case schema.Postgres:
		drv, err = migratepg.WithInstance(db.DB, &migratepg.Config{})
	case schema.MySQL:
		drv, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.String(), drv)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration.
func (g *Migrator) Up() error {
	if err := g.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	g.logVersion("migrated up")
	return nil
}

// Down reverts every applied migration.
func (g *Migrator) Down() error {
	if err := g.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	g.logVersion("migrated down")
	return nil
}

func (g *Migrator) logVersion(msg string) {
	v, dirty, err := g.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		g.log.Infow(msg, "version", 0)
		return
	}
	g.log.Infow(msg, "version", v, "dirty", dirty)
}
