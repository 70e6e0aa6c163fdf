// internal/query/query.go
//
// SQL text builders for the two one-to-many fetch strategies.
//
/*
Context
--------
Both builders take a has-many Relation from internal/schema and return a
Query that selects every column of the parent table plus the children:

  - FlatJoin         one row per (parent, child) pair via LEFT JOIN.  A
                     parent without children yields one row whose child
                     columns are all NULL.
  - NestedAggregate  one row per parent.  Children are folded into a JSON
                     array of positional tuples by a LATERAL subquery and
                     default to an empty array.

Child columns in FlatJoin are aliased `<child_table>.<column>` so sqlx can
map them onto a nested struct without clashing with parent columns that
share a name (`site_id`, `is_active`, `created_at`, ...).

Notes
-----
  - Keywords are lower-case to keep the printed SQL easy to diff.
  - Builders are pure; nothing here opens a connection.
*/
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yanizio/sitequery/internal/schema"
)

var (
	// ErrRelationKind is returned when a builder gets the wrong side of a
	// relation.
	ErrRelationKind = errors.New("unsupported relation kind")

	// ErrEmptyInsert is returned by InsertMany when there are no rows.
	ErrEmptyInsert = errors.New("insert without rows")
)

// Query is rendered SQL plus its bind arguments.
type Query struct {
	SQL  string
	Args []any
}

func (q Query) String() string { return q.SQL }

// AggregateAlias is the alias given to the lateral subquery and to the
// correlated child table inside it.
func AggregateAlias(rel *schema.Relation) string {
	return rel.From.Name + "_" + rel.Name
}

// FlatJoin renders the join-and-flatten strategy for a has-many relation.
func FlatJoin(d schema.Dialect, rel *schema.Relation) (Query, error) {
	if rel.Kind != schema.HasMany {
		return Query{}, fmt.Errorf("flat join on %s %q: %w", rel.Kind, rel.Name, ErrRelationKind)
	}
	parent, child := rel.From, rel.To

	cols := make([]string, 0, len(parent.Columns())+len(child.Columns()))
	for _, c := range parent.Columns() {
		cols = append(cols, c.Qualified(d))
	}
	for _, c := range child.Columns() {
		cols = append(cols, c.Qualified(d)+" as "+d.Quote(child.Name+"."+c.Name))
	}

	var b strings.Builder
	b.WriteString("select ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" from ")
	b.WriteString(d.Quote(parent.Name))
	b.WriteString(" left join ")
	b.WriteString(d.Quote(child.Name))
	b.WriteString(" on ")
	b.WriteString(rel.FromColumn.Qualified(d))
	b.WriteString(" = ")
	b.WriteString(rel.ToColumn.Qualified(d))
	return Query{SQL: b.String()}, nil
}

// NestedAggregate renders the aggregate-and-nest strategy for a has-many
// relation.  The aggregated column is named after the relation.
func NestedAggregate(d schema.Dialect, rel *schema.Relation) (Query, error) {
	if rel.Kind != schema.HasMany {
		return Query{}, fmt.Errorf("nested aggregate on %s %q: %w", rel.Kind, rel.Name, ErrRelationKind)
	}
	parent, child := rel.From, rel.To
	alias := d.Quote(AggregateAlias(rel))
	fn := jsonFuncs(d)

	cols := make([]string, 0, len(parent.Columns())+1)
	for _, c := range parent.Columns() {
		cols = append(cols, c.Qualified(d))
	}
	cols = append(cols, alias+"."+d.Quote("data")+" as "+d.Quote(rel.Name))

	tuple := make([]string, 0, len(child.Columns()))
	for _, c := range child.Columns() {
		tuple = append(tuple, alias+"."+d.Quote(c.Name))
	}

	var b strings.Builder
	b.WriteString("select ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" from ")
	b.WriteString(d.Quote(parent.Name))
	b.WriteString(" left join lateral (select coalesce(")
	fmt.Fprintf(&b, "%s(%s(%s))", fn.agg, fn.array, strings.Join(tuple, ", "))
	b.WriteString(", ")
	b.WriteString(fn.empty)
	b.WriteString(") as ")
	b.WriteString(d.Quote("data"))
	b.WriteString(" from ")
	b.WriteString(d.Quote(child.Name))
	b.WriteString(" ")
	b.WriteString(alias)
	b.WriteString(" where ")
	b.WriteString(alias + "." + d.Quote(rel.ToColumn.Name))
	b.WriteString(" = ")
	b.WriteString(rel.FromColumn.Qualified(d))
	b.WriteString(") ")
	b.WriteString(alias)
	b.WriteString(" on true")
	return Query{SQL: b.String()}, nil
}

type jsonFuncSet struct {
	agg, array, empty string
}

func jsonFuncs(d schema.Dialect) jsonFuncSet {
	if d == schema.MySQL {
		return jsonFuncSet{agg: "json_arrayagg", array: "json_array", empty: "json_array()"}
	}
	return jsonFuncSet{agg: "json_agg", array: "json_build_array", empty: "'[]'::json"}
}
