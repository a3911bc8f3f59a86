package dynq_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/zoobzio/dynq"
	"github.com/zoobzio/dynq/mssql"
	"github.com/zoobzio/dynq/mysql"
	"github.com/zoobzio/dynq/oracle"
	"github.com/zoobzio/dynq/postgres"
	"github.com/zoobzio/dynq/sqlite"
)

var dialects = []dynq.Renderer{
	oracle.New(),
	mssql.New(),
	postgres.New(),
	mysql.New(),
	sqlite.New(),
}

// golden formats a result as its SQL followed by one name=value line per
// parameter.
func golden(result *dynq.QueryResult) []byte {
	var b strings.Builder
	b.WriteString(result.SQL)
	b.WriteString("\n")
	for _, p := range result.Params {
		fmt.Fprintf(&b, "%s=%v\n", p.Name, p.Value)
	}
	return []byte(b.String())
}

func customerOrders() *dynq.Query {
	g := dynq.NewGraph()
	c := g.Query("Customers", "c")
	o := g.Query("Orders", "o")
	return c.Select(c.Col("Name"), o.Col("Total").Sum().As("Spent")).
		InnerJoin(o, o.Col("CustomerId").Eq(c.Col("Id"))).
		Where(c.Col("Region").Eq("EU"), o.Col("Status").In("open", "shipped")).
		GroupBy(c.Col("Name")).
		Having(o.Col("Total").Sum().Gt(100)).
		OrderBy(c.Col("Name").Asc())
}

func pagedEmployees() *dynq.Query {
	q := dynq.New("Employees")
	return q.Select(q.Col("Id"), q.Col("LastName")).
		Where(q.Col("Active").Eq(true)).
		OrderBy(q.Col("LastName").Asc()).
		Page(3, 20)
}

func TestGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	queries := map[string]func() *dynq.Query{
		"customer_orders": customerOrders,
		"paged_employees": pagedEmployees,
	}

	for name, build := range queries {
		for _, r := range dialects {
			t.Run(name+"/"+r.Name(), func(t *testing.T) {
				result, err := build().Render(r)
				if err != nil {
					t.Fatalf("Render() error = %v", err)
				}
				g.Assert(t, name+"_"+r.Name(), golden(result))
			})
		}
	}
}
