package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/dynq"
	"github.com/zoobzio/dynq/crud"
	"github.com/zoobzio/dynq/sqlexec"
)

// schemaDDL creates the customers and orders tables in one dialect.
type schemaDDL struct {
	drop   []string
	create []string
}

// Dialect is a renderer usable for both queries and write commands.
type Dialect interface {
	dynq.Renderer
	crud.Dialect
}

var customerColumns = []dynq.ColumnMeta{
	{Name: "id", Kind: dynq.KindInt32, PrimaryKey: true},
	{Name: "name", Kind: dynq.KindString, MaxLength: 50},
	{Name: "region", Kind: dynq.KindString, MaxLength: 10},
}

var orderColumns = []dynq.ColumnMeta{
	{Name: "id", Kind: dynq.KindInt32, PrimaryKey: true},
	{Name: "customer_id", Kind: dynq.KindInt32},
	{Name: "total", Kind: dynq.KindInt32},
	{Name: "status", Kind: dynq.KindString, MaxLength: 20},
	{Name: "version", Kind: dynq.KindInt32, Concurrency: true},
}

func portableDDL(text, intType string) schemaDDL {
	return schemaDDL{
		drop: []string{"DROP TABLE IF EXISTS orders", "DROP TABLE IF EXISTS customers"},
		create: []string{
			fmt.Sprintf("CREATE TABLE customers (id %[1]s PRIMARY KEY, name %[2]s(50) NOT NULL, region %[2]s(10) NOT NULL)", intType, text),
			fmt.Sprintf("CREATE TABLE orders (id %[1]s PRIMARY KEY, customer_id %[1]s NOT NULL, total %[1]s NOT NULL, status %[2]s(20) NOT NULL, version %[1]s NOT NULL)", intType, text),
		},
	}
}

// runScenarios seeds the tables through crud commands and checks queries of
// every clause kind against the database.
func runScenarios(t *testing.T, db *sql.DB, d Dialect, ddl schemaDDL) {
	t.Helper()
	ctx := context.Background()

	for _, stmt := range append(ddl.drop, ddl.create...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	var logs strings.Builder
	ex := sqlexec.New(db, d, sqlexec.WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	builder := crud.NewBuilder(d)

	insert := func(table string, cols []dynq.ColumnMeta, values map[string]any) {
		t.Helper()
		cmd, err := builder.Build(crud.Row{Table: table, Columns: cols, Current: values, State: crud.Added})
		require.NoError(t, err)
		n, err := ex.Save(ctx, cmd)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	}
	for _, c := range []map[string]any{
		{"id": 1, "name": "Ada", "region": "EU"},
		{"id": 2, "name": "Grace", "region": "EU"},
		{"id": 3, "name": "Linus", "region": "US"},
	} {
		insert("customers", customerColumns, c)
	}
	for _, o := range []map[string]any{
		{"id": 10, "customer_id": 1, "total": 100, "status": "open", "version": 1},
		{"id": 11, "customer_id": 1, "total": 250, "status": "shipped", "version": 1},
		{"id": 12, "customer_id": 2, "total": 40, "status": "open", "version": 1},
		{"id": 13, "customer_id": 3, "total": 500, "status": "shipped", "version": 1},
	} {
		insert("orders", orderColumns, o)
	}

	t.Run("where and order", func(t *testing.T) {
		c := dynq.New("customers")
		c.Select(c.Col("name")).Where(c.Col("region").Eq("EU")).OrderBy(c.Col("name").Asc())
		assert.Equal(t, []string{"Ada", "Grace"}, firstColumn(t, ex, c))
	})

	t.Run("join group having", func(t *testing.T) {
		g := dynq.NewGraph()
		c := g.Query("customers", "c")
		o := g.Query("orders", "o")
		c.Select(c.Col("name"), o.Col("total").Sum().As("spent")).
			InnerJoin(o, o.Col("customer_id").Eq(c.Col("id"))).
			GroupBy(c.Col("name")).
			Having(o.Col("total").Sum().Gt(100)).
			OrderBy(c.Col("name").Asc())

		rows, err := ex.Query(ctx, c)
		require.NoError(t, err)
		defer rows.Close()

		got := map[string]int64{}
		for rows.Next() {
			var name string
			var spent int64
			require.NoError(t, rows.Scan(&name, &spent))
			got[name] = spent
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, map[string]int64{"Ada": 350, "Linus": 500}, got)
	})

	t.Run("in subquery", func(t *testing.T) {
		c := dynq.New("customers")
		o := c.Sub("orders")
		o.Select(o.Col("customer_id")).Where(o.Col("status").Eq("shipped"))
		c.Select(c.Col("name")).Where(c.Col("id").In(o)).OrderBy(c.Col("name").Asc())
		assert.Equal(t, []string{"Ada", "Linus"}, firstColumn(t, ex, c))
	})

	t.Run("or group and literal list", func(t *testing.T) {
		o := dynq.New("orders")
		o.Select(o.Col("id")).
			Where(dynq.Or(o.Col("total").Gt(400), o.Col("status").In("open"))).
			OrderBy(o.Col("id").Asc())
		assert.Equal(t, []string{"10", "12", "13"}, firstColumn(t, ex, o))
	})

	t.Run("page", func(t *testing.T) {
		c := dynq.New("customers")
		c.Select(c.Col("name")).OrderBy(c.Col("name").Asc()).Page(2, 2)
		assert.Equal(t, []string{"Linus"}, firstColumn(t, ex, c))
	})

	t.Run("case", func(t *testing.T) {
		o := dynq.New("orders")
		o.Select(dynq.Case().When(o.Col("total").Gt(200)).Then("big").Else("small").End().As("size")).
			Where(o.Col("id").Eq(13))
		assert.Equal(t, []string{"big"}, firstColumn(t, ex, o))
	})

	t.Run("functions", func(t *testing.T) {
		c := dynq.New("customers")
		c.Select(c.Col("name").Upper()).Where(c.Col("id").Eq(2))
		assert.Equal(t, []string{"GRACE"}, firstColumn(t, ex, c))
	})

	t.Run("update with concurrency", func(t *testing.T) {
		row := crud.Row{
			Table:    "orders",
			Columns:  orderColumns,
			Original: map[string]any{"id": 10, "customer_id": 1, "total": 100, "status": "open", "version": 1},
			Current:  map[string]any{"id": 10, "customer_id": 1, "total": 100, "status": "closed", "version": 1},
			State:    crud.Modified,
		}
		cmd, err := builder.Build(row)
		require.NoError(t, err)

		n, err := ex.Save(ctx, cmd)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, err = ex.Save(ctx, cmd)
		assert.True(t, errors.Is(err, dynq.ErrConcurrencyConflict), "stale version: %v", err)

		o := dynq.New("orders")
		o.Select(o.Col("version")).Where(o.Col("id").Eq(10))
		assert.Equal(t, []string{"2"}, firstColumn(t, ex, o))
	})

	t.Run("delete", func(t *testing.T) {
		cmd, err := builder.Build(crud.Row{
			Table:    "orders",
			Columns:  orderColumns,
			Original: map[string]any{"id": 12, "version": 1},
			State:    crud.Deleted,
		})
		require.NoError(t, err)
		n, err := ex.Save(ctx, cmd)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		var count int64
		require.NoError(t, ex.Scalar(ctx, dynq.New("orders").CountAll(), &count))
		assert.EqualValues(t, 3, count)
	})

	snap := ex.Stats().Snapshot()
	assert.Zero(t, snap.Errors)
	assert.EqualValues(t, 1, snap.Conflicts)
	assert.Contains(t, logs.String(), "concurrency conflict")
}

// firstColumn runs q and returns the first column of every row as text.
func firstColumn(t *testing.T, ex *sqlexec.Executor, q *dynq.Query) []string {
	t.Helper()
	rows, err := ex.Query(context.Background(), q)
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)

	var out []string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		switch v := vals[0].(type) {
		case []byte:
			out = append(out, string(v))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	require.NoError(t, rows.Err())
	return out
}
