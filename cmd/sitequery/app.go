package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/sitequery/internal/config"
	"github.com/yanizio/sitequery/internal/database"
	"github.com/yanizio/sitequery/internal/logger"
	"github.com/yanizio/sitequery/internal/schema"
	"github.com/yanizio/sitequery/internal/site"
)

// app carries what every database-backed subcommand needs.
type app struct {
	flags struct {
		root  string
		debug bool
	}

	cfg  *config.Config
	log  *zap.SugaredLogger
	tee  bool
	db   *sqlx.DB
	repo *site.Repository
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(ctx, config.Options{Root: a.flags.root})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.flags.debug {
		level = "debug"
	}
	if a.log, err = logger.New(cfg.Paths.Root, level, a.tee); err != nil {
		return fmt.Errorf("start logger: %w", err)
	}

	d, err := schema.ParseDialect(cfg.Database.Dialect)
	if err != nil {
		return err
	}

	a.log.Infow("connecting to database", "dialect", d)
	a.db, err = database.OpenWithOptions(ctx, d, cfg.Database.DSN, database.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	a.log.Infow("database online", "dialect", d)

	a.repo = site.NewRepository(a.db, d)
	return nil
}

// close releases the pool and flushes the logger.  Safe to call twice.
func (a *app) close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	if a.log != nil {
		// Sync on a console sink returns EINVAL on some platforms.
		_ = a.log.Sync()
	}
	return errors.Join(errs...)
}
