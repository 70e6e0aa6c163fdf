// internal/config/model.go
//
// Typed configuration model for sitequery.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from four layers:
//
//   • compiled-in defaults                        – lowest precedence,
//   • optional `.env`                             – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `SITEQUERY_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through the
// Vault client before unmarshalling, so the model never stores Vault
// references, only plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// Database section
//

// Database selects the dialect and connection pool.  DSN is mandatory but
// checked by the loader so the error can be ErrMissingDSN.
type Database struct {
	Dialect         string        `koanf:"dialect"           validate:"required,oneof=postgres mysql"`
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"min=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"min=0"`
}

//
// Seed section
//

// Seed holds the defaults for `run --seed` and `seed`.  RandSeed 0 means
// pick one at random.  BatchSize is bounded by seed.MaxBatchSize.
type Seed struct {
	Sites     int    `koanf:"sites"      validate:"min=0"`
	Slugs     int    `koanf:"slugs"      validate:"min=0"`
	BatchSize int    `koanf:"batch_size" validate:"min=1,max=9000"`
	RandSeed  uint64 `koanf:"rand_seed"`
}

// Log section.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// Metrics section.  An empty ListenAddr disables the HTTP endpoint.
type Metrics struct {
	ListenAddr string `koanf:"listen_addr" validate:"omitempty,hostname_port"`
}

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // SITEQUERY_ROOT, --config, or discovered parent
}

//
// Root aggregate
//

// Config is the aggregate returned by Load().  Callers pass it down; there
// is no package-level copy.
type Config struct {
	Database Database `koanf:"database"`
	Seed     Seed     `koanf:"seed"`
	Log      Log      `koanf:"log"`
	Metrics  Metrics  `koanf:"metrics"`
	Paths    Paths    `koanf:"-"`
}
