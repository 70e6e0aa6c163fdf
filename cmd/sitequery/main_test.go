package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/sitequery/internal/config"
	"github.com/yanizio/sitequery/internal/seed"
)

func runArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(&app{})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSQLCommand(t *testing.T) {
	out, err := runArgs(t, "sql")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "SQL with joins\nselect "))
	assert.Contains(t, out, "\n\nSQL with json aggregation\nselect ")
	assert.Contains(t, out, "json_agg(json_build_array(")
}

func TestSQLCommand_MySQL(t *testing.T) {
	out, err := runArgs(t, "sql", "--dialect", "mysql")
	require.NoError(t, err)
	assert.Contains(t, out, "json_arrayagg(json_array(")
	assert.Contains(t, out, "`site_url_slug`")
}

func TestSQLCommand_BadDialect(t *testing.T) {
	_, err := runArgs(t, "sql", "--dialect", "oracle")
	assert.Error(t, err)
}

func TestSeedFlags_Options(t *testing.T) {
	var sf seedFlags
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	sf.register(cmd.Flags())
	require.NoError(t, cmd.ParseFlags([]string{"--slugs", "25"}))

	cfg := config.Seed{Sites: 9, Slugs: 1000, BatchSize: 50, RandSeed: 4}
	assert.Equal(t, seed.Options{Sites: 9, Slugs: 25, BatchSize: 50, RandSeed: 4}, sf.options(cmd.Flags(), cfg))
}

func TestSQLCommand_DDL(t *testing.T) {
	out, err := runArgs(t, "sql", "--ddl", "--dialect", "mysql")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS sites (\n    site_id INT AUTO_INCREMENT PRIMARY KEY,")
	assert.Contains(t, out, "FOREIGN KEY (site_id) REFERENCES sites (site_id)")
	assert.NotContains(t, out, "SQL with joins")
}

func TestExecute_ReportsErrorOnce(t *testing.T) {
	var stderr bytes.Buffer
	code := execute(context.Background(), &app{}, []string{"sql", "--dialect", "oracle"}, &stderr)

	assert.Equal(t, 1, code)
	assert.Equal(t, 1, strings.Count(stderr.String(), "unknown sql dialect"), stderr.String())
}

func TestExecute_MissingDSN(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "SITEQUERY_DATABASE__DSN", "SITEQUERY_ROOT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	var stderr bytes.Buffer
	code := execute(context.Background(), &app{}, []string{"run", "--root", t.TempDir()}, &stderr)

	assert.Equal(t, 1, code)
	assert.Equal(t, 1, strings.Count(stderr.String(), "database DSN is not set"), stderr.String())
}

func TestExecute_ClosesPoolOnFailure(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	a := &app{db: sqlx.NewDb(raw, "pgx")}
	code := execute(context.Background(), a, []string{"sql", "--dialect", "oracle"}, &bytes.Buffer{})

	assert.Equal(t, 1, code)
	assert.Nil(t, a.db)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, a.close(), "second close is a no-op")
}
