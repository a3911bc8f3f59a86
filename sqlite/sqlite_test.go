package sqlite

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/zoobzio/dynq"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *dynq.Query
		expected string
	}{
		{
			name: "substring and date part",
			build: func() *dynq.Query {
				q := dynq.New("users")
				return q.Select(q.Col("name").SubstringFrom(2, 3), q.Col("created").DatePart(dynq.Year).As("y"))
			},
			expected: `SELECT SUBSTR("name", 2, 3) AS "name", CAST(STRFTIME('%Y', "created") AS INTEGER) AS "y" FROM "users"`,
		},
		{
			name: "cast affinity",
			build: func() *dynq.Query {
				q := dynq.New("users")
				return q.Select(q.Col("age").Cast(dynq.CastString, 10).As("a"))
			},
			expected: `SELECT CAST("age" AS TEXT) AS "a" FROM "users"`,
		},
		{
			name: "skip without take",
			build: func() *dynq.Query {
				return dynq.New("users").Skip(5)
			},
			expected: `SELECT * FROM "users" LIMIT -1 OFFSET 5`,
		},
		{
			name: "boolean literals",
			build: func() *dynq.Query {
				q := dynq.New("users")
				return q.Where(q.Col("active").In(true))
			},
			expected: `SELECT * FROM "users" WHERE "active" IN (1)`,
		},
		{
			name: "division",
			build: func() *dynq.Query {
				q := dynq.New("stats")
				return q.Select(dynq.Div(q.Col("a"), 4).As("q"))
			},
			expected: `SELECT ROUND(CAST("a" AS REAL) / ?, 6) AS "q" FROM "stats"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.build().Render(New())
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if result.SQL != tt.expected {
				t.Errorf("SQL = %q, want %q", result.SQL, tt.expected)
			}
		})
	}
}

func TestRender_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		build func() *dynq.Query
	}{
		{"rollup", func() *dynq.Query {
			q := dynq.New("sales")
			return q.Select(q.Col("region")).GroupBy(q.Col("region")).WithRollup()
		}},
		{"stddev", func() *dynq.Query {
			q := dynq.New("sales")
			return q.Select(q.Col("amount").StdDev())
		}},
		{"quarter", func() *dynq.Query {
			q := dynq.New("sales")
			return q.Select(q.Col("sold").DatePart(dynq.Quarter))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Render(New())
			if !errors.Is(err, dynq.ErrUnsupportedSyntax) {
				t.Errorf("Render() error = %v, want ErrUnsupportedSyntax", err)
			}
		})
	}
}

func openOrders(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	stmts := []string{
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, customer TEXT, total REAL, status TEXT)`,
		`INSERT INTO orders VALUES (1, 'ann', 10.5, 'open'), (2, 'bob', 20, 'shipped'), (3, 'ann', 5, 'open'), (4, 'cy', 7, 'held')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	return db
}

func TestExecute_Aggregate(t *testing.T) {
	db := openOrders(t)

	q := dynq.New("orders", "o")
	q.Select(q.Col("customer"), q.Col("total").Sum().As("spent")).
		Where(q.Col("status").In("open", "held")).
		GroupBy(q.Col("customer")).
		Having(q.Col("total").Sum().Gt(6)).
		OrderBy(q.Col("customer").Asc())

	result, err := q.Render(New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	expected := `SELECT "o"."customer", SUM("o"."total") AS "spent" FROM "orders" "o" WHERE "o"."status" IN ('open', 'held') GROUP BY "o"."customer" HAVING SUM("o"."total") > ? ORDER BY "o"."customer" ASC`
	if result.SQL != expected {
		t.Fatalf("SQL = %q, want %q", result.SQL, expected)
	}

	rows, err := db.Query(result.SQL, result.Args()...)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	type spend struct {
		customer string
		spent    float64
	}
	var got []spend
	for rows.Next() {
		var s spend
		if err := rows.Scan(&s.customer, &s.spent); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, s)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := []spend{{"ann", 15.5}, {"cy", 7}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExecute_Page(t *testing.T) {
	db := openOrders(t)

	q := dynq.New("orders")
	q.Select(q.Col("id")).OrderBy(q.Col("id").Asc()).Page(2, 1)

	result, err := q.Render(New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var id, rowNum int
	if err := db.QueryRow(result.SQL, result.Args()...).Scan(&id, &rowNum); err != nil {
		t.Fatalf("query %q: %v", result.SQL, err)
	}
	if id != 2 || rowNum != 2 {
		t.Errorf("got id %d row %d, want 2 and 2", id, rowNum)
	}
}

func TestExecute_SubQuery(t *testing.T) {
	db := openOrders(t)

	g := dynq.NewGraph()
	q := g.Query("orders", "o")
	big := g.Query("orders", "b")
	big.Select(big.Col("customer")).Where(big.Col("total").Ge(10))
	q.Select(q.Col("id")).
		Where(q.Col("customer").In(big), q.Col("status").Ne("shipped")).
		OrderBy(q.Col("id").Asc())

	result, err := q.Render(New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	expected := `SELECT "o"."id" FROM "orders" "o" WHERE "o"."customer" IN (SELECT "b"."customer" FROM "orders" "b" WHERE "b"."total" >= ?) AND "o"."status" <> ? ORDER BY "o"."id" ASC`
	if result.SQL != expected {
		t.Fatalf("SQL = %q, want %q", result.SQL, expected)
	}

	rows, err := db.Query(result.SQL, result.Args()...)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan: %v", err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("ids = %v, want [1 3]", ids)
	}
}
