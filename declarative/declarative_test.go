package declarative

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/dynq"
	"github.com/zoobzio/dynq/postgres"
)

func render(t *testing.T, src string, params map[string]any) *dynq.QueryResult {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	q, err := Build(doc, params)
	require.NoError(t, err)
	result, err := q.Render(postgres.New())
	require.NoError(t, err)
	return result
}

func TestBuild_Aggregate(t *testing.T) {
	result := render(t, `
table: Orders
alias: o
fields:
  - field: o.CustomerId
  - field: o.Total
    aggregate: sum
    alias: Spent
where:
  field: o.Status
  operator: in
  values: [open, shipped]
group_by: [o.CustomerId]
`, nil)

	assert.Equal(t, `SELECT "o"."CustomerId", SUM("o"."Total") AS "Spent" FROM "Orders" "o" WHERE "o"."Status" IN ('open', 'shipped') GROUP BY "o"."CustomerId"`, result.SQL)
	assert.Empty(t, result.Params)
}

func TestBuild_JoinParamsAndUUID(t *testing.T) {
	result := render(t, `
table: Customers
alias: c
fields:
  - field: c.Name
    functions: [trim, upper]
  - field: o.Id
    aggregate: count_distinct
    alias: Orders
joins:
  - type: left
    table: Orders
    alias: o
    on:
      - field: o.CustomerId
        operator: equal
        right_field: c.Id
where:
  logic: or
  conditions:
    - field: c.Id
      operator: equal
      value: "uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8"
    - field: c.Region
      operator: equal
      param: region
group_by: [c.Name]
order_by:
  - field: c.Name
    direction: desc
take: 10
`, map[string]any{"region": "EU"})

	assert.Equal(t, `SELECT UPPER(TRIM("c"."Name")) AS "Name", COUNT(DISTINCT "o"."Id") AS "Orders" FROM "Customers" "c" LEFT JOIN "Orders" "o" ON "o"."CustomerId" = "c"."Id" WHERE ("c"."Id" = $1 OR "c"."Region" = $2) GROUP BY "c"."Name" ORDER BY "c"."Name" DESC LIMIT 10`, result.SQL)
	assert.Equal(t, []any{uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), "EU"}, result.Args())

	p, ok := result.Param("Id1")
	require.True(t, ok)
	assert.Equal(t, dynq.KindGUID, p.Kind)
}

func TestBuild_Subquery(t *testing.T) {
	result := render(t, `
table: Customers
where:
  field: Id
  operator: in
  subquery:
    table: Orders
    fields:
      - field: CustomerId
    where:
      field: Total
      operator: gt
      value: 100
`, nil)

	assert.Equal(t, `SELECT * FROM "Customers" WHERE "Id" IN (SELECT "CustomerId" FROM "Orders" WHERE "Total" > $1)`, result.SQL)
	assert.Equal(t, []any{100}, result.Args())
}

func TestBuild_JSON(t *testing.T) {
	result := render(t, `{"table": "Events", "where": {"field": "Day", "operator": "between", "values": [1, 7]}, "top": 5}`, nil)
	assert.Equal(t, `SELECT * FROM "Events" WHERE "Day" BETWEEN $1 AND $2 LIMIT 5`, result.SQL)
}

func TestBuild_Page(t *testing.T) {
	result := render(t, `
table: Events
order_by:
  - field: At
page:
  number: 2
  size: 10
`, nil)
	assert.Equal(t, `SELECT * FROM (SELECT "Events".*, ROW_NUMBER() OVER (ORDER BY "At" ASC) AS "RowNum" FROM "Events") "PagingWrapper" WHERE "RowNum" BETWEEN 11 AND 20 ORDER BY "RowNum"`, result.SQL)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(""))
	assert.EqualError(t, err, "declarative: empty document")

	_, err = Parse([]byte("table: T\nlimit: 5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field limit not found")
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
		kind    error
	}{
		{"no table", "alias: a\n", "table is required", nil},
		{"unknown alias", "table: T\nfields:\n  - field: x.A\n", `unknown alias "x"`, nil},
		{"missing param", "table: T\nwhere: {field: A, operator: eq, param: p}\n", `missing param "p"`, nil},
		{"unknown operator", "table: T\nwhere: {field: A, operator: near, value: 1}\n", "unknown operand", dynq.ErrInvalidOperand},
		{"arity", "table: T\nwhere: {field: A, operator: between, value: 1}\n", "takes 2 values", dynq.ErrInvalidOperand},
		{"two sides", "table: T\nwhere: {field: A, operator: eq, value: 1, param: p}\n", "more than one right-hand side", nil},
		{"bad uuid", "table: T\nwhere: {field: A, operator: eq, value: 'uuid:nope'}\n", "invalid UUID", nil},
		{"direction", "table: T\norder_by: [{field: A, direction: up}]\n", `invalid direction "up"`, nil},
		{"join alias", "table: T\njoins: [{table: U}]\n", "join requires table and alias", nil},
		{"join type", "table: T\njoins: [{type: outer, table: U, alias: u, on: [{field: u.A, operator: eq, right_field: B}]}]\n", `invalid join type "outer"`, nil},
		{"aggregate", "table: T\nfields: [{field: A, aggregate: median}]\n", `unknown aggregate "median"`, nil},
		{"function", "table: T\nfields: [{field: A, functions: [reverse]}]\n", `unknown function "reverse"`, nil},
		{"logic", "table: T\nwhere: {logic: xor, conditions: [{field: A, operator: isnull}]}\n", `invalid logic "xor"`, nil},
		{"paging", "table: T\ntop: 5\ntake: 3\n", "mutually exclusive", dynq.ErrInvalidOperand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.src))
			require.NoError(t, err)
			_, err = Build(doc, map[string]any{})
			require.Error(t, err)
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error = %q, want it to contain %q", err, tt.message)
			}
			if tt.kind != nil && !errors.Is(err, tt.kind) {
				t.Errorf("error = %v, want %v", err, tt.kind)
			}
		})
	}

	_, err := Build(nil, nil)
	assert.EqualError(t, err, "declarative: nil document")
}
