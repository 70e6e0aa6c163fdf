// internal/schema/table.go
//
// Declarative table, column, and relation descriptors.
//
// Context
// -------
// Query builders reference `*Column` values instead of raw strings so a
// renamed column only changes in one place.  Descriptors are pure data:
// they never touch a database and have no failure modes.
//
// Column types and defaults are kept per dialect.  `CreateTable` renders
// them; the files in internal/migrations must match its output column
// for column.
package schema

import "strings"

// Column describes one column of a Table.  Types and Defaults are keyed
// by dialect; a column without a default has no Defaults entry.
type Column struct {
	Table      *Table
	Name       string
	Types      map[Dialect]string
	NotNull    bool
	PrimaryKey bool
	Defaults   map[Dialect]string
}

// Qualified renders `"table"."column"` for the dialect.
func (c *Column) Qualified(d Dialect) string {
	return d.Quote(c.Table.Name) + "." + d.Quote(c.Name)
}

// Type returns the SQL type of c in d.
func (c *Column) Type(d Dialect) string { return c.Types[d] }

// Default returns the default expression of c in d, or "".
func (c *Column) Default(d Dialect) string { return c.Defaults[d] }

// Definition renders the column as it appears inside CREATE TABLE,
// unquoted: `name TYPE [PRIMARY KEY | NOT NULL] [DEFAULT expr]`.
func (c *Column) Definition(d Dialect) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	b.WriteString(c.Type(d))
	switch {
	case c.PrimaryKey:
		b.WriteString(" PRIMARY KEY")
	case c.NotNull:
		b.WriteString(" NOT NULL")
	}
	if def := c.Default(d); def != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(def)
	}
	return b.String()
}

// Table is an ordered list of columns under a name.  Column order is the
// order used by `select *`-style projections and by positional JSON tuples.
type Table struct {
	Name    string
	columns []*Column
}

func newTable(name string) *Table { return &Table{Name: name} }

// Columns returns the columns in declaration order.  The slice is a copy.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// PrimaryKey returns the first primary-key column, or nil.
func (t *Table) PrimaryKey() *Column {
	for _, c := range t.columns {
		if c.PrimaryKey {
			return c
		}
	}
	return nil
}

type columnOption func(*Column)

func notNull(c *Column)    { c.NotNull = true }
func primaryKey(c *Column) { c.PrimaryKey, c.NotNull = true, true }

// typed sets the column type for postgres and mysql.
func typed(pg, my string) columnOption {
	return func(c *Column) { c.Types = map[Dialect]string{Postgres: pg, MySQL: my} }
}

// defaultTo sets the default expression for postgres and mysql.
func defaultTo(pg, my string) columnOption {
	return func(c *Column) { c.Defaults = map[Dialect]string{Postgres: pg, MySQL: my} }
}

func (t *Table) add(name string, opts ...columnOption) *Column {
	c := &Column{Table: t, Name: name}
	for _, o := range opts {
		o(c)
	}
	t.columns = append(t.columns, c)
	return c
}

// RelationKind tells which side of a foreign key a Relation starts from.
type RelationKind int

const (
	HasMany RelationKind = iota + 1
	BelongsTo
)

func (k RelationKind) String() string {
	switch k {
	case HasMany:
		return "has-many"
	case BelongsTo:
		return "belongs-to"
	}
	return "unknown"
}

// Relation joins From to To on FromColumn = ToColumn.  For HasMany the
// From side is the parent; for BelongsTo it is the child.
type Relation struct {
	Name       string
	Kind       RelationKind
	From       *Table
	To         *Table
	FromColumn *Column
	ToColumn   *Column
}

// Inverse returns the relation seen from the other table.
func (r *Relation) Inverse(name string) *Relation {
	kind := BelongsTo
	if r.Kind == BelongsTo {
		kind = HasMany
	}
	return &Relation{
		Name:       name,
		Kind:       kind,
		From:       r.To,
		To:         r.From,
		FromColumn: r.ToColumn,
		ToColumn:   r.FromColumn,
	}
}

// CreateTable renders `CREATE TABLE IF NOT EXISTS` for t in d.  Every
// belongs-to relation starting at t becomes a FOREIGN KEY constraint.
func CreateTable(d Dialect, t *Table, fks ...*Relation) string {
	lines := make([]string, 0, len(t.columns)+len(fks))
	for _, c := range t.columns {
		lines = append(lines, "    "+c.Definition(d))
	}
	for _, fk := range fks {
		if fk.Kind != BelongsTo || fk.From != t {
			continue
		}
		lines = append(lines, "    FOREIGN KEY ("+fk.FromColumn.Name+") REFERENCES "+
			fk.To.Name+" ("+fk.ToColumn.Name+")")
	}
	return "CREATE TABLE IF NOT EXISTS " + t.Name + " (\n" + strings.Join(lines, ",\n") + "\n);"
}
