// internal/schema/dialect.go
//
// SQL dialects understood by the query builder and the database opener.
//
// Context
// -------
// Both fetch strategies need a lateral join and JSON aggregation, so only
// engines that support both are listed:
//
//   - postgres  - the default, reached through the pgx stdlib driver.
//   - mysql     - MySQL 8.0.14 or newer, through go-sql-driver/mysql.
//
// Notes
// -----
//   - `DriverName` is the name registered with database/sql.
//   - `BindType` is the sqlx bind-variable style: `$N` for postgres, `?`
//     for mysql.  Builders write `?` and rebind once.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect names a supported SQL engine.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// ErrUnknownDialect is returned by ParseDialect for unsupported engines.
var ErrUnknownDialect = errors.New("unknown sql dialect")

// ParseDialect maps a config value onto a Dialect.  Matching is
// case-insensitive and accepts "postgresql" and "pgx" as aliases.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDialect, s)
}

// DriverName returns the database/sql driver registered for d.
func (d Dialect) DriverName() string {
	if d == MySQL {
		return "mysql"
	}
	return "pgx"
}

// BindType returns the sqlx bind style for d.
func (d Dialect) BindType() int {
	if d == MySQL {
		return sqlx.QUESTION
	}
	return sqlx.DOLLAR
}

// Rebind converts `?` placeholders in q to d's bind style.
func (d Dialect) Rebind(q string) string { return sqlx.Rebind(d.BindType(), q) }

// Quote wraps a single identifier in the dialect's quote characters.
func (d Dialect) Quote(ident string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (d Dialect) String() string { return string(d) }
