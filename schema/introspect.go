package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/zoobzio/dynq"
	"github.com/zoobzio/dynq/internal/types"
	"github.com/zoobzio/dynq/sqlite"
)

// Querier runs a query. *sql.DB, *sql.Conn and *sql.Tx satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Loader reads the column metadata of one table from a database.
type Loader interface {
	LoadColumns(ctx context.Context, table string) ([]types.ColumnMeta, error)
}

// Introspector is a metadata provider backed by a database. Tables are
// fetched by Load and cached; Column only consults the cache, so graphs
// never trigger I/O while they are built or rendered.
type Introspector struct {
	loader Loader
	cache  *Registry
	group  singleflight.Group
}

// NewIntrospector creates an introspector that loads through l.
func NewIntrospector(l Loader) *Introspector {
	return &Introspector{loader: l, cache: NewRegistry()}
}

// Load fetches every table not yet cached. Tables load concurrently and
// concurrent loads of the same table share one query.
func (in *Introspector) Load(ctx context.Context, tables ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range tables {
		if in.cache.Has(t) {
			continue
		}
		g.Go(func() error { return in.load(ctx, t) })
	}
	return g.Wait()
}

func (in *Introspector) load(ctx context.Context, table string) error {
	_, err, _ := in.group.Do(table, func() (any, error) {
		if in.cache.Has(table) {
			return nil, nil
		}
		cols, err := in.loader.LoadColumns(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("schema: load %s: %w", table, err)
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("schema: table %q not found", table)
		}
		in.cache.Add(table, cols...)
		return nil, nil
	})
	return err
}

// Invalidate drops a cached table so the next Load fetches it again.
func (in *Introspector) Invalidate(table string) {
	in.cache.Remove(table)
}

// Column returns cached metadata of one column.
func (in *Introspector) Column(table, column string) (types.ColumnMeta, bool) {
	return in.cache.Column(table, column)
}

// Columns returns the cached columns of a table.
func (in *Introspector) Columns(table string) []types.ColumnMeta {
	return in.cache.Columns(table)
}

// InformationSchemaLoader reads INFORMATION_SCHEMA views. Its queries are
// built with dynq and rendered with Renderer, so it serves any dialect that
// exposes the standard views.
type InformationSchemaLoader struct {
	DB       Querier
	Renderer dynq.Renderer
	// Schema restricts lookups to one schema when set.
	Schema string
}

// LoadColumns implements Loader.
func (l InformationSchemaLoader) LoadColumns(ctx context.Context, table string) ([]types.ColumnMeta, error) {
	res, err := l.ColumnsQuery(table).Render(l.Renderer)
	if err != nil {
		return nil, err
	}
	rows, err := l.DB.QueryContext(ctx, res.SQL, res.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []types.ColumnMeta
	for rows.Next() {
		var (
			name, dataType, nullable string
			maxLength                sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &maxLength, &nullable); err != nil {
			return nil, err
		}
		kind, size := KindFromSQL(dataType)
		if maxLength.Valid && maxLength.Int64 > 0 {
			size = int(maxLength.Int64)
		}
		cols = append(cols, types.ColumnMeta{
			Name:      name,
			Kind:      kind,
			SQLType:   dataType,
			Nullable:  strings.EqualFold(nullable, "YES"),
			MaxLength: size,
			Template:  types.ParamTemplate{Kind: kind, Size: size},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, nil
	}

	keys, err := l.primaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	for i := range cols {
		cols[i].PrimaryKey = keys[cols[i].Name]
	}
	return cols, nil
}

// ColumnsQuery builds the query listing a table's columns in ordinal order.
func (l InformationSchemaLoader) ColumnsQuery(table string) *dynq.Query {
	c := dynq.New("columns").InSchema("information_schema")
	c.Select(c.Col("column_name"), c.Col("data_type"), c.Col("character_maximum_length"), c.Col("is_nullable")).
		Where(c.Col("table_name").Eq(table))
	if l.Schema != "" {
		c.Where(c.Col("table_schema").Eq(l.Schema))
	}
	return c.OrderBy(c.Col("ordinal_position").Asc())
}

// PrimaryKeyQuery builds the query listing a table's primary key columns.
func (l InformationSchemaLoader) PrimaryKeyQuery(table string) *dynq.Query {
	g := dynq.NewGraph()
	k := g.Query("key_column_usage", "k").InSchema("information_schema")
	t := g.Query("table_constraints", "t").InSchema("information_schema")
	k.Select(k.Col("column_name")).
		InnerJoin(t,
			t.Col("constraint_name").Eq(k.Col("constraint_name")),
			t.Col("table_name").Eq(k.Col("table_name"))).
		Where(t.Col("constraint_type").Eq("PRIMARY KEY"), k.Col("table_name").Eq(table))
	if l.Schema != "" {
		k.Where(k.Col("table_schema").Eq(l.Schema))
	}
	return k
}

func (l InformationSchemaLoader) primaryKeys(ctx context.Context, table string) (map[string]bool, error) {
	res, err := l.PrimaryKeyQuery(table).Render(l.Renderer)
	if err != nil {
		return nil, err
	}
	rows, err := l.DB.QueryContext(ctx, res.SQL, res.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		keys[name] = true
	}
	return keys, rows.Err()
}

// SQLiteLoader reads column metadata with PRAGMA table_info.
type SQLiteLoader struct {
	DB Querier
}

// LoadColumns implements Loader.
func (l SQLiteLoader) LoadColumns(ctx context.Context, table string) ([]types.ColumnMeta, error) {
	query := "PRAGMA table_info(" + sqlite.New().QuoteIdentifier(table) + ")"
	rows, err := l.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []types.ColumnMeta
	keys := 0
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		kind, size := KindFromSQL(dataType)
		if pk > 0 {
			keys++
		}
		cols = append(cols, types.ColumnMeta{
			Name:       name,
			Kind:       kind,
			SQLType:    dataType,
			PrimaryKey: pk > 0,
			Nullable:   notNull == 0 && pk == 0,
			MaxLength:  size,
			Template:   types.ParamTemplate{Kind: kind, Size: size},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// A single INTEGER PRIMARY KEY column aliases the rowid.
	if keys == 1 {
		for i := range cols {
			if cols[i].PrimaryKey && strings.EqualFold(cols[i].SQLType, "INTEGER") {
				cols[i].AutoIncrement = true
			}
		}
	}
	return cols, nil
}
