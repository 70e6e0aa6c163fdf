package query

import (
	"fmt"
	"strings"

	"github.com/yanizio/sitequery/internal/schema"
)

// InsertMany renders a multi-row INSERT.  Placeholders follow the
// dialect's bind style.  When returning is non-nil and the dialect
// supports it, a RETURNING clause is appended.
func InsertMany(d schema.Dialect, t *schema.Table, cols []*schema.Column, rows [][]any, returning *schema.Column) (Query, error) {
	if len(rows) == 0 {
		return Query{}, fmt.Errorf("insert into %s: %w", t.Name, ErrEmptyInsert)
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = d.Quote(c.Name)
	}
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"

	var b strings.Builder
	b.WriteString("insert into ")
	b.WriteString(d.Quote(t.Name))
	b.WriteString(" (")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(") values ")

	args := make([]any, 0, len(rows)*len(cols))
	for i, row := range rows {
		if len(row) != len(cols) {
			return Query{}, fmt.Errorf("insert into %s: row %d has %d values, want %d", t.Name, i, len(row), len(cols))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(group)
		args = append(args, row...)
	}
	if returning != nil && SupportsReturning(d) {
		b.WriteString(" returning ")
		b.WriteString(d.Quote(returning.Name))
	}

	return Query{SQL: d.Rebind(b.String()), Args: args}, nil
}

// SupportsReturning reports whether INSERT ... RETURNING is available.
func SupportsReturning(d schema.Dialect) bool { return d == schema.Postgres }

// Count renders `select count(*)` over a whole table.
func Count(d schema.Dialect, t *schema.Table) Query {
	return Query{SQL: "select count(*) from " + d.Quote(t.Name)}
}

// Orphans counts rows on the From side of a belongs-to relation whose
// referenced row does not exist.
func Orphans(d schema.Dialect, rel *schema.Relation) (Query, error) {
	if rel.Kind != schema.BelongsTo {
		return Query{}, fmt.Errorf("orphans on %s %q: %w", rel.Kind, rel.Name, ErrRelationKind)
	}
	q := "select count(*) from " + d.Quote(rel.From.Name) +
		" left join " + d.Quote(rel.To.Name) +
		" on " + rel.FromColumn.Qualified(d) + " = " + rel.ToColumn.Qualified(d) +
		" where " + rel.ToColumn.Qualified(d) + " is null"
	return Query{SQL: q}, nil
}

