package dynq

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zoobzio/dynq/postgres"
)

func TestWhere_Grouping(t *testing.T) {
	tests := []struct {
		name     string
		build    func(q *Query) *Query
		expected string
	}{
		{
			name: "and with or group",
			build: func(q *Query) *Query {
				return q.Where(q.Col("A").Eq(1), Or(q.Col("B").Eq(2), q.Col("C").Eq(3)))
			},
			expected: `"A" = $1 AND ("B" = $2 OR "C" = $3)`,
		},
		{
			name: "nested groups",
			build: func(q *Query) *Query {
				return q.Where(Or(And(q.Col("A").Eq(1), q.Col("B").Eq(2)), q.Col("C").IsNull()))
			},
			expected: `(("A" = $1 AND "B" = $2) OR "C" IS NULL)`,
		},
		{
			name: "successive calls",
			build: func(q *Query) *Query {
				return q.Where(q.Col("A").Eq(1)).Where(q.Col("B").Eq(2))
			},
			expected: `"A" = $1 AND "B" = $2`,
		},
		{
			name: "default conjunction",
			build: func(q *Query) *Query {
				return q.DefaultConjunction(OR).Where(q.Col("A").Eq(1), q.Col("B").Eq(2))
			},
			expected: `"A" = $1 OR "B" = $2`,
		},
		{
			name: "explicit tokens",
			build: func(q *Query) *Query {
				return q.Where(q.Col("A").Eq(1), OrTok, Open, q.Col("B").Eq(2), AndNotTok, q.Col("C").Eq(3), Close)
			},
			expected: `"A" = $1 OR ("B" = $2 AND NOT "C" = $3)`,
		},
		{
			name: "open inserts default conjunction",
			build: func(q *Query) *Query {
				return q.Where(q.Col("A").Eq(1), Open, q.Col("B").Eq(2), OrNotTok, q.Col("C").Eq(3), Close)
			},
			expected: `"A" = $1 AND ("B" = $2 OR NOT "C" = $3)`,
		},
		{
			name: "empty group is skipped",
			build: func(q *Query) *Query {
				return q.Where(q.Col("A").Eq(1), Or())
			},
			expected: `"A" = $1`,
		},
		{
			name: "nested empty groups are skipped",
			build: func(q *Query) *Query {
				return q.Where(q.Col("A").Eq(1), Or(And()), Or(And(Or()), And()), q.Col("B").Eq(2))
			},
			expected: `"A" = $1 AND "B" = $2`,
		},
		{
			name: "explicit group spanning calls",
			build: func(q *Query) *Query {
				return q.Where(Open, q.Col("A").Eq(1)).Where(q.Col("B").Eq(2), Close)
			},
			expected: `("A" = $1 AND "B" = $2)`,
		},
		{
			name: "raw predicate",
			build: func(q *Query) *Query {
				return q.Where(q.Col("A").Eq(1), "1 = 1")
			},
			expected: `"A" = $1 AND 1 = 1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.build(New("T"))
			result := mustRender(t, q, postgres.New())
			expected := `SELECT * FROM "T" WHERE ` + tt.expected
			if result.SQL != expected {
				t.Errorf("SQL = %q, want %q", result.SQL, expected)
			}
		})
	}
}

func TestWhere_MalformedStreams(t *testing.T) {
	tests := []struct {
		name  string
		build func(q *Query) *Query
	}{
		{"leading conjunction", func(q *Query) *Query { return q.Where(AndTok, q.Col("A").Eq(1)) }},
		{"double conjunction", func(q *Query) *Query { return q.Where(q.Col("A").Eq(1), OrTok, AndTok, q.Col("B").Eq(2)) }},
		{"unclosed group", func(q *Query) *Query { return q.Where(Open, q.Col("A").Eq(1)) }},
		{"unopened group", func(q *Query) *Query { return q.Where(q.Col("A").Eq(1), Close) }},
		{"trailing conjunction", func(q *Query) *Query { return q.Where(q.Col("A").Eq(1), OrTok) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.build(New("T"))
			if _, err := q.Render(postgres.New()); !errors.Is(err, ErrMalformedGraph) {
				t.Errorf("Render() error = %v, want ErrMalformedGraph", err)
			}
		})
	}

	if q := New("T").Where(Or(And())); q.Err() != nil || len(q.Node().Where) != 0 {
		t.Errorf("Where(Or(And())) = %v with %d tokens, want no error and no tokens", q.Err(), len(q.Node().Where))
	}

	if q := New("T").Where(42); !errors.Is(q.Err(), ErrInvalidOperand) {
		t.Errorf("Where(42) Err() = %v, want ErrInvalidOperand", q.Err())
	}
}

func TestWhere_UnbalancedTokensFailAtCall(t *testing.T) {
	tests := []struct {
		name  string
		build func(q *Query) *Query
	}{
		{"close without open", func(q *Query) *Query { return q.Where(q.Col("A").Eq(1), Close) }},
		{"close after balanced group", func(q *Query) *Query {
			return q.Where(Open, q.Col("A").Eq(1), Close, Close)
		}},
		{"close in later call", func(q *Query) *Query { return q.Where(q.Col("A").Eq(1)).Where(Close) }},
		{"close escapes group", func(q *Query) *Query {
			return q.Where(Open, q.Col("A").Eq(1), Or(q.Col("B").Eq(2), Close))
		}},
		{"open left inside group", func(q *Query) *Query { return q.Where(Or(q.Col("A").Eq(1), Open, q.Col("B").Eq(2))) }},
		{"having", func(q *Query) *Query { return q.Having(Close) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.build(New("T"))
			if !errors.Is(q.Err(), ErrMalformedGraph) {
				t.Errorf("Err() = %v, want ErrMalformedGraph", q.Err())
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name     string
		pred     func(q *Query) Predicate
		expected string
		params   []any
	}{
		{"ne", func(q *Query) Predicate { return q.Col("A").Ne("x") }, `"A" <> $1`, []any{"x"}},
		{"ge", func(q *Query) Predicate { return q.Col("A").Ge(1.5) }, `"A" >= $1`, []any{1.5}},
		{"lt", func(q *Query) Predicate { return q.Col("A").Lt(int32(3)) }, `"A" < $1`, []any{int32(3)}},
		{"le column", func(q *Query) Predicate { return q.Col("A").Le(q.Col("B")) }, `"A" <= "B"`, nil},
		{"like escape", func(q *Query) Predicate { return q.Col("A").Like("50!%", '!') }, `"A" LIKE $1 ESCAPE '!'`, []any{"50!%"}},
		{"not like", func(q *Query) Predicate { return q.Col("A").NotLike("x%") }, `"A" NOT LIKE $1`, []any{"x%"}},
		{"like non string", func(q *Query) Predicate { return q.Col("A").Like(5) }, `"A" LIKE $1`, []any{"5"}},
		{"between values", func(q *Query) Predicate { return q.Col("A").Between(1, 9) }, `"A" BETWEEN $1 AND $2`, []any{1, 9}},
		{"between columns", func(q *Query) Predicate { return q.Col("A").Between(q.Col("Lo"), 9) }, `"A" BETWEEN "Lo" AND $1`, []any{9}},
		{"in", func(q *Query) Predicate { return q.Col("A").In(1, 2, 3) }, `"A" IN (1, 2, 3)`, nil},
		{"in slice", func(q *Query) Predicate { return q.Col("A").In([]int{1, 2, 3}) }, `"A" IN (1, 2, 3)`, nil},
		{"not in", func(q *Query) Predicate { return q.Col("A").NotIn("a", "b") }, `"A" NOT IN ('a', 'b')`, nil},
		{"is not null", func(q *Query) Predicate { return q.Col("A").IsNotNull() }, `"A" IS NOT NULL`, nil},
		{"value first", func(q *Query) Predicate { return Eq(5, q.Col("A")) }, `$1 = "A"`, []any{5}},
		{"expression first", func(q *Query) Predicate { return Gt(q.Col("A"), q.Col("B")) }, `"A" > "B"`, nil},
		{"chained left", func(q *Query) Predicate { return q.Col("A").Upper().Eq("X") }, `UPPER("A") = $1`, []any{"X"}},
		{"typed compare", func(q *Query) Predicate { return Compare(q.Col("A"), GreaterThan, int64(7)) }, `"A" > $1`, []any{int64(7)}},
		{"typed in", func(q *Query) Predicate { return Compare(q.Col("A"), In, "x") }, `"A" IN ('x')`, nil},
		{"char literal", func(q *Query) Predicate { return q.Col("A").Eq(Char('Y')) }, `"A" = $1`, []any{"Y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New("T")
			q.Where(tt.pred(q))
			result := mustRender(t, q, postgres.New())
			expected := `SELECT * FROM "T" WHERE ` + tt.expected
			if result.SQL != expected {
				t.Errorf("SQL = %q, want %q", result.SQL, expected)
			}
			if diff := cmp.Diff(tt.params, nilIfEmpty(result.Args())); diff != "" {
				t.Errorf("Args() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func nilIfEmpty(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	return args
}

func TestIn_SliceEquivalence(t *testing.T) {
	a := New("T")
	a.Where(a.Col("A").In("x", "y", "z"))
	b := New("T")
	b.Where(b.Col("A").In([]string{"x", "y", "z"}))

	ra := mustRender(t, a, postgres.New())
	rb := mustRender(t, b, postgres.New())
	if ra.SQL != rb.SQL {
		t.Errorf("In(a, b, c) = %q, In([]T{a, b, c}) = %q", ra.SQL, rb.SQL)
	}
}

func TestPredicate_Errors(t *testing.T) {
	tests := []struct {
		name string
		pred func(q *Query) Predicate
		want error
	}{
		{"nil value", func(q *Query) Predicate { return q.Col("A").Eq(nil) }, ErrUnsupportedSyntax},
		{"unsupported type", func(q *Query) Predicate { return q.Col("A").Eq(struct{}{}) }, ErrInvalidOperand},
		{"like sub-query", func(q *Query) Predicate { return q.Col("A").Like(q.Sub("S", "s")) }, ErrUnsupportedSyntax},
		{"no expression", func(q *Query) Predicate { return Eq(1, 2) }, ErrInvalidOperand},
		{"compare arity", func(q *Query) Predicate { return Compare(q.Col("A"), Between, 1) }, ErrInvalidOperand},
		{"exists nil", func(q *Query) Predicate { return Exists(nil) }, ErrInvalidOperand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.pred(New("T"))
			if !errors.Is(p.Err(), tt.want) {
				t.Errorf("Err() = %v, want %v", p.Err(), tt.want)
			}
		})
	}

	t.Run("sub-query bound", func(t *testing.T) {
		q := New("T")
		q.Where(q.Col("A").Between(q.Sub("S", "s"), 5))
		if _, err := q.Render(postgres.New()); !errors.Is(err, ErrUnsupportedSyntax) {
			t.Errorf("Render() error = %v, want ErrUnsupportedSyntax", err)
		}
	})
}
