// internal/site/repository.go
//
// sqlx-backed reads and bulk writes for sites and their URL slugs.
//
// Context
// -------
// The repository runs the SQL produced by internal/query and scans the
// results into the models in this package:
//
//   - FetchFlat       join-and-flatten, one row per (site, slug) pair.
//   - FetchNested     aggregate-and-nest, one row per site.
//   - InsertSites     multi-row insert returning the new site ids.
//   - InsertURLSlugs  multi-row insert of slugs.
//   - Count, Orphans  sanity checks used after seeding.
//
// Errors are wrapped with the operation name and returned; nothing is
// retried or logged here.
package site

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitequery/internal/query"
	"github.com/yanizio/sitequery/internal/schema"
)

// Repository executes site queries against one pool.
type Repository struct {
	db      *sqlx.DB
	dialect schema.Dialect
}

// NewRepository binds a repository to db.  The dialect must match the
// driver db was opened with.
func NewRepository(db *sqlx.DB, d schema.Dialect) *Repository {
	return &Repository{db: db, dialect: d}
}

// Dialect returns the dialect queries are rendered for.
func (r *Repository) Dialect() schema.Dialect { return r.dialect }

// FlatQuery returns the SQL used by FetchFlat.
func (r *Repository) FlatQuery() (query.Query, error) {
	return query.FlatJoin(r.dialect, schema.SiteURLSlugs)
}

// NestedQuery returns the SQL used by FetchNested.
func (r *Repository) NestedQuery() (query.Query, error) {
	return query.NestedAggregate(r.dialect, schema.SiteURLSlugs)
}

// FetchFlat returns every site left-joined with its slugs.
func (r *Repository) FetchFlat(ctx context.Context) ([]FlatRow, error) {
	q, err := r.FlatQuery()
	if err != nil {
		return nil, err
	}
	rows := make([]FlatRow, 0)
	if err := r.db.SelectContext(ctx, &rows, q.SQL, q.Args...); err != nil {
		return nil, fmt.Errorf("fetch flat: %w", err)
	}
	return rows, nil
}

// FetchNested returns every site with its slugs aggregated into one column.
func (r *Repository) FetchNested(ctx context.Context) ([]NestedRow, error) {
	q, err := r.NestedQuery()
	if err != nil {
		return nil, err
	}
	rows := make([]NestedRow, 0)
	if err := r.db.SelectContext(ctx, &rows, q.SQL, q.Args...); err != nil {
		return nil, fmt.Errorf("fetch nested: %w", err)
	}
	return rows, nil
}

var siteInsertColumns = []*schema.Column{
	schema.Sites.UUCode,
	schema.Sites.Title,
	schema.Sites.Description,
	schema.Sites.Type,
	schema.Sites.HeroImageURL,
	schema.Sites.Tags,
	schema.Sites.Address,
}

// InsertSites writes sites in one statement and returns their ids in
// insert order.  is_active and created_at take their column defaults.
//
// On MySQL the ids are derived from LAST_INSERT_ID(), which reports the
// first id of a multi-row insert, stepping by the session's
// auto_increment_increment.  Both are read on the same connection.
func (r *Repository) InsertSites(ctx context.Context, sites []Site) ([]int64, error) {
	rows := make([][]any, len(sites))
	for i, s := range sites {
		rows[i] = []any{s.UUCode, s.Title, s.Description, s.Type, s.HeroImageURL, s.Tags, s.Address}
	}
	q, err := query.InsertMany(r.dialect, schema.Sites.Table, siteInsertColumns, rows, schema.Sites.SiteID)
	if err != nil {
		return nil, err
	}

	if query.SupportsReturning(r.dialect) {
		ids := make([]int64, 0, len(sites))
		if err := r.db.SelectContext(ctx, &ids, q.SQL, q.Args...); err != nil {
			return nil, fmt.Errorf("insert sites: %w", err)
		}
		return ids, nil
	}

	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("insert sites: %w", err)
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("insert sites: %w", err)
	}
	first, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert sites: last insert id: %w", err)
	}
	var step int64
	if err := conn.GetContext(ctx, &step, autoIncrementStep); err != nil {
		return nil, fmt.Errorf("insert sites: auto_increment_increment: %w", err)
	}
	step = max(step, 1)

	ids := make([]int64, len(sites))
	for i := range ids {
		ids[i] = first + int64(i)*step
	}
	return ids, nil
}

const autoIncrementStep = "select @@auto_increment_increment"

var slugInsertColumns = []*schema.Column{
	schema.SiteURLSlug.SiteID,
	schema.SiteURLSlug.URLSlug,
}

// InsertURLSlugs writes slugs in one statement and returns the number of
// rows inserted.
func (r *Repository) InsertURLSlugs(ctx context.Context, slugs []URLSlug) (int64, error) {
	rows := make([][]any, len(slugs))
	for i, s := range slugs {
		if err := CheckSlug(s.URLSlug); err != nil {
			return 0, fmt.Errorf("insert url slugs: row %d: %w", i, err)
		}
		rows[i] = []any{s.SiteID, s.URLSlug}
	}
	q, err := query.InsertMany(r.dialect, schema.SiteURLSlug.Table, slugInsertColumns, rows, nil)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return 0, fmt.Errorf("insert url slugs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert url slugs: rows affected: %w", err)
	}
	return n, nil
}

// Count returns the number of rows in t.
func (r *Repository) Count(ctx context.Context, t *schema.Table) (int, error) {
	var n int
	q := query.Count(r.dialect, t)
	if err := r.db.GetContext(ctx, &n, q.SQL); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.Name, err)
	}
	return n, nil
}

// Orphans returns the number of slugs whose site no longer exists.
func (r *Repository) Orphans(ctx context.Context) (int, error) {
	q, err := query.Orphans(r.dialect, schema.SiteOfSlug)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.GetContext(ctx, &n, q.SQL); err != nil {
		return 0, fmt.Errorf("count orphan slugs: %w", err)
	}
	return n, nil
}
