// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from four layers (highest
precedence last):

  1. Compiled-in defaults (koanf confmap).
  2. Optional `<root>/conf/.env`, loaded into the process environment.
  3. Optional `<root>/conf/global.yaml`.
  4. Environment variables prefixed `SITEQUERY_`, where `__` maps to “.”
     (e.g., `SITEQUERY_DATABASE__DSN → database.dsn`).

If no layer sets `database.dsn`, the plain `DATABASE_URL` variable is
used.  String values starting with `vault:` are then resolved through the
secret source.  The tree is then unmarshalled, its dialect normalised,
and the result validated.

Instrumentation
---------------
  • DEBUG spans: root discovery, YAML read, vault resolution.
  • ERROR spans: YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span:  final “config loaded” with key highlights.
  • Logs use the global sugared logger (`zap.S()`) because the file logger
    is configured from the result of this call.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/sitequery/internal/schema"
	"github.com/yanizio/sitequery/internal/vault"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SITEQUERY_"

// ErrMissingDSN is returned when no layer provides a database DSN.
var ErrMissingDSN = errors.New("config: database DSN is not set (database.dsn, SITEQUERY_DATABASE__DSN or DATABASE_URL)")

// SecretSource resolves `vault:` references.
type SecretSource interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Options tunes one Load call.  The zero value discovers the root and
// builds a Vault client only if a `vault:` reference is present.
type Options struct {
	Root    string
	Secrets SecretSource
}

var defaults = map[string]any{
	"database.dialect":           "postgres",
	"database.max_open_conns":    10,
	"database.max_idle_conns":    5,
	"database.conn_max_lifetime": "30m",
	"seed.sites":                 100,
	"seed.slugs":                 1000,
	"seed.batch_size":            500,
	"seed.rand_seed":             0,
	"log.level":                  "info",
	"metrics.listen_addr":        "",
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves SITEQUERY_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to the working directory.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load merges all layers and returns the validated Config.
func Load(ctx context.Context, opts Options) (*Config, error) {
	root := opts.Root
	if root == "" {
		root = rootDir()
	}
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			return nil, fmt.Errorf("config yaml %s: %w", yamlPath, err)
		}
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	}

	// Env overrides: SITEQUERY_DATABASE__DSN → database.dsn
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("config env: %w", err)
	}

	if k.String("database.dsn") == "" {
		if url := os.Getenv("DATABASE_URL"); url != "" {
			_ = k.Set("database.dsn", url)
		}
	}

	if err := resolveSecrets(ctx, k, opts.Secrets); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	cfg.Paths.Root = root

	if cfg.Database.DSN == "" {
		return nil, ErrMissingDSN
	}
	d, err := schema.ParseDialect(cfg.Database.Dialect)
	if err != nil {
		return nil, fmt.Errorf("config database.dialect: %w", err)
	}
	cfg.Database.Dialect = d.String()

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	zap.S().Infow("config loaded",
		"dialect", cfg.Database.Dialect,
		"metrics_addr", cfg.Metrics.ListenAddr,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets swaps every `vault:` string value for its secret.  The
// Vault client is only built when a reference exists.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, src SecretSource) error {
	for _, key := range k.Keys() {
		ref, ok := k.Get(key).(string)
		if !ok || !vault.IsRef(ref) {
			continue
		}
		if src == nil {
			cli, err := vault.New(zap.S())
			if err != nil {
				return fmt.Errorf("config %s: %w", key, err)
			}
			src = cli
		}
		val, err := src.Resolve(ctx, ref)
		if err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
		zap.S().Debugw("config value resolved from vault", "key", key)
	}
	return nil
}
