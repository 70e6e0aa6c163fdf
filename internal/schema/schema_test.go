package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		" pgx ":      Postgres,
		"mysql":      MySQL,
	}
	for in, want := range cases {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDialect("sqlite")
	assert.True(t, errors.Is(err, ErrUnknownDialect))
}

func TestDialectQuote(t *testing.T) {
	assert.Equal(t, `"sites"`, Postgres.Quote("sites"))
	assert.Equal(t, `"a""b"`, Postgres.Quote(`a"b`))
	assert.Equal(t, "`sites`", MySQL.Quote("sites"))
	assert.Equal(t, "pgx", Postgres.DriverName())
	assert.Equal(t, "mysql", MySQL.DriverName())
}

func TestSitesColumnOrder(t *testing.T) {
	var names []string
	for _, c := range Sites.Columns() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"site_id", "uucode", "title", "description", "type", "hero_image_url",
		"is_active", "created_at", "created_by", "updated_at", "updated_by",
		"tags", "address",
	}, names)

	assert.Same(t, Sites.SiteID, Sites.PrimaryKey())
	assert.True(t, Sites.UUCode.NotNull)
	assert.False(t, Sites.Title.NotNull)
	assert.Equal(t, "true", Sites.IsActive.Default(Postgres))
	assert.Equal(t, "", Sites.Title.Default(MySQL))
}

func TestSiteURLSlugColumnOrder(t *testing.T) {
	var names []string
	for _, c := range SiteURLSlug.Columns() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"site_url_slug_id", "site_id", "url_slug", "is_active",
		"created_at", "created_by", "updated_at", "updated_by",
	}, names)

	c, ok := SiteURLSlug.Column("url_slug")
	require.True(t, ok)
	assert.Same(t, SiteURLSlug.URLSlug, c)

	_, ok = SiteURLSlug.Column("missing")
	assert.False(t, ok)
}

func TestRelations(t *testing.T) {
	assert.Equal(t, HasMany, SiteURLSlugs.Kind)
	assert.Same(t, Sites.Table, SiteURLSlugs.From)
	assert.Same(t, SiteURLSlug.SiteID, SiteURLSlugs.ToColumn)

	assert.Equal(t, BelongsTo, SiteOfSlug.Kind)
	assert.Same(t, SiteURLSlug.Table, SiteOfSlug.From)
	assert.Same(t, Sites.Table, SiteOfSlug.To)
	assert.Same(t, SiteURLSlug.SiteID, SiteOfSlug.FromColumn)
	assert.Same(t, Sites.SiteID, SiteOfSlug.ToColumn)
	assert.Equal(t, "belongs-to", SiteOfSlug.Kind.String())
}

func TestColumnsReturnsCopy(t *testing.T) {
	cols := Sites.Columns()
	cols[0] = nil
	assert.NotNil(t, Sites.Columns()[0])
}

func TestQualified(t *testing.T) {
	assert.Equal(t, `"site_url_slug"."site_id"`, SiteURLSlug.SiteID.Qualified(Postgres))
	assert.Equal(t, "`sites`.`site_id`", Sites.SiteID.Qualified(MySQL))
}

func TestColumnTypes(t *testing.T) {
	// created_by / updated_by differ in type between the two tables.
	for _, d := range []Dialect{Postgres, MySQL} {
		assert.Equal(t, "BOOLEAN", Sites.CreatedBy.Type(d))
		assert.Equal(t, "BOOLEAN", Sites.UpdatedBy.Type(d))
	}
	assert.Equal(t, "INTEGER", SiteURLSlug.CreatedBy.Type(Postgres))
	assert.Equal(t, "INT", SiteURLSlug.UpdatedBy.Type(MySQL))

	assert.Equal(t, "JSONB", Sites.Tags.Type(Postgres))
	assert.Equal(t, "JSON", Sites.Tags.Type(MySQL))
	assert.Equal(t, fmt.Sprintf("VARCHAR(%d)", URLSlugMaxLen), SiteURLSlug.URLSlug.Type(MySQL))

	for _, tbl := range []*Table{Sites.Table, SiteURLSlug.Table} {
		for _, c := range tbl.Columns() {
			assert.NotEmpty(t, c.Type(Postgres), "%s.%s", tbl.Name, c.Name)
			assert.NotEmpty(t, c.Type(MySQL), "%s.%s", tbl.Name, c.Name)
		}
	}
}

func TestColumnDefinition(t *testing.T) {
	assert.Equal(t, "site_id SERIAL PRIMARY KEY", Sites.SiteID.Definition(Postgres))
	assert.Equal(t, "site_id INT AUTO_INCREMENT PRIMARY KEY", Sites.SiteID.Definition(MySQL))
	assert.Equal(t, "created_at TIMESTAMP NOT NULL DEFAULT now()", Sites.CreatedAt.Definition(Postgres))
	assert.Equal(t, "created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)", SiteURLSlug.CreatedAt.Definition(MySQL))
	assert.Equal(t, "url_slug VARCHAR(50)", SiteURLSlug.URLSlug.Definition(Postgres))
}

func TestCreateTable(t *testing.T) {
	got := CreateTable(Postgres, SiteURLSlug.Table, SiteOfSlug, SiteURLSlugs)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS site_url_slug (
    site_url_slug_id SERIAL PRIMARY KEY,
    site_id INTEGER NOT NULL,
    url_slug VARCHAR(50),
    is_active BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMP NOT NULL DEFAULT now(),
    created_by INTEGER,
    updated_at TIMESTAMP,
    updated_by INTEGER,
    FOREIGN KEY (site_id) REFERENCES sites (site_id)
);`, got)

	// has-many relations and foreign keys of other tables are ignored
	assert.NotContains(t, CreateTable(MySQL, Sites.Table, SiteOfSlug), "FOREIGN KEY")
}

func TestBindType(t *testing.T) {
	assert.Equal(t, "select $1, $2", Postgres.Rebind("select ?, ?"))
	assert.Equal(t, "select ?, ?", MySQL.Rebind("select ?, ?"))
}
