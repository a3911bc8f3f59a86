// Package testing provides test utilities for dynq.
package testing

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/zoobzio/dbml"

	"github.com/zoobzio/dynq"
	"github.com/zoobzio/dynq/schema"
)

// TestProject describes the shop schema shared by dynq tests: customers,
// orders, order_lines, products and employees.
func TestProject() *dbml.Project {
	project := dbml.NewProject("shop")

	customers := dbml.NewTable("customers")
	customers.AddColumn(dbml.NewColumn("id", "bigint"))
	customers.AddColumn(dbml.NewColumn("name", "varchar(50)"))
	customers.AddColumn(dbml.NewColumn("region", "char(2)"))
	customers.AddColumn(dbml.NewColumn("vip", "boolean"))
	customers.AddColumn(dbml.NewColumn("created_at", "timestamp"))
	project.AddTable(customers)

	orders := dbml.NewTable("orders")
	orders.AddColumn(dbml.NewColumn("id", "bigint"))
	orders.AddColumn(dbml.NewColumn("customer_id", "bigint"))
	orders.AddColumn(dbml.NewColumn("total", "numeric(12, 2)"))
	orders.AddColumn(dbml.NewColumn("status", "varchar(20)"))
	orders.AddColumn(dbml.NewColumn("created_at", "timestamp"))
	project.AddTable(orders)

	lines := dbml.NewTable("order_lines")
	lines.AddColumn(dbml.NewColumn("order_id", "bigint"))
	lines.AddColumn(dbml.NewColumn("product_id", "bigint"))
	lines.AddColumn(dbml.NewColumn("qty", "int"))
	project.AddTable(lines)

	products := dbml.NewTable("products")
	products.AddColumn(dbml.NewColumn("id", "bigint"))
	products.AddColumn(dbml.NewColumn("name", "varchar(100)"))
	products.AddColumn(dbml.NewColumn("price", "numeric"))
	products.AddColumn(dbml.NewColumn("category", "varchar(30)"))
	products.AddColumn(dbml.NewColumn("sku", "uuid"))
	project.AddTable(products)

	employees := dbml.NewTable("employees")
	employees.AddColumn(dbml.NewColumn("id", "int"))
	employees.AddColumn(dbml.NewColumn("last_name", "nvarchar(40)"))
	employees.AddColumn(dbml.NewColumn("salary", "decimal(10, 2)"))
	employees.AddColumn(dbml.NewColumn("active", "bit"))
	project.AddTable(employees)

	return project
}

// TestRegistry returns a metadata registry loaded from TestProject.
func TestRegistry(t testing.TB) *schema.Registry {
	t.Helper()
	r, err := schema.FromDBML(TestProject())
	if err != nil {
		t.Fatalf("Failed to load test schema: %v", err)
	}
	return r
}

// TestGraph returns an empty graph whose parameters are typed from
// TestRegistry.
func TestGraph(t testing.TB) *dynq.Graph {
	t.Helper()
	return dynq.NewGraph(dynq.WithMetadata(TestRegistry(t)))
}

// MustRender renders q with r and fails the test on error.
func MustRender(t testing.TB, q *dynq.Query, r dynq.Renderer) *dynq.QueryResult {
	t.Helper()
	res, err := q.Render(r)
	if err != nil {
		t.Fatalf("Render with %s failed: %v", r.Name(), err)
	}
	return res
}

// AssertSQL compares expected and actual SQL, reporting a diff.
func AssertSQL(t testing.TB, expected, actual string) {
	t.Helper()
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("SQL mismatch (-want +got):\n%s", diff)
	}
}

// AssertParams checks parameter names in binding order.
func AssertParams(t testing.TB, expected []string, res *dynq.QueryResult) {
	t.Helper()
	if diff := cmp.Diff(expected, res.Names(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Param mismatch (-want +got):\n%s", diff)
	}
}

// AssertArgs checks the values handed to database/sql.
func AssertArgs(t testing.TB, expected []any, res *dynq.QueryResult) {
	t.Helper()
	if diff := cmp.Diff(expected, res.Args()); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

// AssertContainsParam checks that a parameter is bound under name.
func AssertContainsParam(t testing.TB, res *dynq.QueryResult, name string) dynq.Param {
	t.Helper()
	p, ok := res.Param(name)
	if !ok {
		t.Errorf("Expected param %q not found in %v", name, res.Names())
	}
	return p
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertErrorIs checks that err matches target, typically one of the
// dynq.Err* kinds.
func AssertErrorIs(t testing.TB, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("Expected error matching %v, got: %v", target, err)
	}
}

// AssertErrorContains checks that error message contains substring.
func AssertErrorContains(t testing.TB, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error containing %q but got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("Expected error containing %q, got: %v", substr, err)
	}
}
