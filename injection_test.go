package dynq

import (
	"testing"

	"github.com/zoobzio/dynq/mssql"
	"github.com/zoobzio/dynq/mysql"
	"github.com/zoobzio/dynq/oracle"
	"github.com/zoobzio/dynq/postgres"
)

func TestInjection_Identifiers(t *testing.T) {
	tests := []struct {
		name     string
		r        Renderer
		table    string
		column   string
		expected string
	}{
		{
			name:     "postgres column",
			r:        postgres.New(),
			table:    "users",
			column:   `name"; DROP TABLE users; --`,
			expected: `SELECT * FROM "users" WHERE "name""; DROP TABLE users; --" = $1`,
		},
		{
			name:     "oracle table",
			r:        oracle.New(),
			table:    `users" WHERE 1=1 --`,
			column:   "id",
			expected: `SELECT * FROM "users"" WHERE 1=1 --" WHERE "id" = :id1`,
		},
		{
			name:     "mssql bracket",
			r:        mssql.New(),
			table:    "t]; DROP TABLE x; --",
			column:   "id",
			expected: "SELECT * FROM [t]]; DROP TABLE x; --] WHERE [id] = @id1",
		},
		{
			name:     "mysql backtick",
			r:        mysql.New(),
			table:    "t` UNION SELECT 1 --",
			column:   "id",
			expected: "SELECT * FROM `t`` UNION SELECT 1 --` WHERE `id` = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New(tt.table)
			q.Where(q.Col(tt.column).Eq(1))
			result := mustRender(t, q, tt.r)
			if result.SQL != tt.expected {
				t.Errorf("SQL = %q, want %q", result.SQL, tt.expected)
			}
		})
	}
}

func TestInjection_Values(t *testing.T) {
	payload := "' OR '1'='1"

	t.Run("bound values never reach the text", func(t *testing.T) {
		q := New("users")
		q.Where(q.Col("name").Eq(payload), q.Col("bio").Like(payload))
		result := mustRender(t, q, postgres.New())
		expected := `SELECT * FROM "users" WHERE "name" = $1 AND "bio" LIKE $2`
		if result.SQL != expected {
			t.Errorf("SQL = %q, want %q", result.SQL, expected)
		}
		for _, p := range result.Params {
			if p.Value != payload {
				t.Errorf("param %s = %v, want %q", p.Name, p.Value, payload)
			}
		}
	})

	t.Run("inlined lists are escaped", func(t *testing.T) {
		tests := []struct {
			r        Renderer
			value    string
			expected string
		}{
			{postgres.New(), payload, `SELECT * FROM "users" WHERE "name" IN (''' OR ''1''=''1')`},
			{mssql.New(), payload, `SELECT * FROM [users] WHERE [name] IN (N''' OR ''1''=''1')`},
			{mysql.New(), `\' OR 1=1 --`, "SELECT * FROM `users` WHERE `name` IN ('\\\\'' OR 1=1 --')"},
		}
		for _, tt := range tests {
			q := New("users")
			q.Where(q.Col("name").In(tt.value))
			result := mustRender(t, q, tt.r)
			if result.SQL != tt.expected {
				t.Errorf("%s: SQL = %q, want %q", tt.r.Name(), result.SQL, tt.expected)
			}
		}
	})
}
