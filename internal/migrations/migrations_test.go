package migrations

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/sitequery/internal/schema"
)

func readUps(t *testing.T, d schema.Dialect) string {
	t.Helper()
	sub, err := FS(d)
	require.NoError(t, err)

	ups, err := fs.Glob(sub, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	var b strings.Builder
	for _, name := range ups {
		raw, err := fs.ReadFile(sub, name)
		require.NoError(t, err)
		b.Write(raw)
	}
	return b.String()
}

func TestMigrations_CoverSchema(t *testing.T) {
	for _, d := range []schema.Dialect{schema.Postgres, schema.MySQL} {
		t.Run(d.String(), func(t *testing.T) {
			// collapse the column alignment so definitions compare verbatim
			ddl := strings.Join(strings.Fields(readUps(t, d)), " ")
			for _, tbl := range []*schema.Table{schema.Sites.Table, schema.SiteURLSlug.Table} {
				assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS "+tbl.Name+" (")
				for _, c := range tbl.Columns() {
					def := regexp.MustCompile(`(^|[(,] )` + regexp.QuoteMeta(c.Definition(d)) + `[, ]`)
					assert.Regexp(t, def, ddl, "%s.%s", tbl.Name, c.Name)
				}
			}
			assert.Contains(t, ddl, "REFERENCES sites (site_id)")
		})
	}
}

func TestMigrations_Paired(t *testing.T) {
	for _, d := range []schema.Dialect{schema.Postgres, schema.MySQL} {
		sub, err := FS(d)
		require.NoError(t, err)
		ups, _ := fs.Glob(sub, "*.up.sql")
		downs, _ := fs.Glob(sub, "*.down.sql")
		require.Len(t, downs, len(ups), d.String())
		for i, up := range ups {
			assert.Equal(t, strings.TrimSuffix(up, ".up.sql"), strings.TrimSuffix(downs[i], ".down.sql"))
		}
	}
}

func TestFS_UnknownDialect(t *testing.T) {
	_, err := FS(schema.Dialect("sqlite"))
	assert.ErrorIs(t, err, schema.ErrUnknownDialect)
}
