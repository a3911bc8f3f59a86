package dynq

import (
	"slices"

	"github.com/zoobzio/dynq/internal/types"
)

// Expr is a column, arithmetic combination, CASE expression, scalar
// sub-query or raw SQL fragment, optionally wrapped in a chain of
// functions. Expr is a value: every method returns a new Expr and leaves
// the receiver untouched.
type Expr struct {
	e     types.Expression
	graph *Graph
	err   error
}

// Col returns a column of the query. With metadata attached to the graph the
// column takes its declared kind.
func (q *Query) Col(name string) Expr {
	ref := &types.ColumnRef{Name: name, Query: q.id}
	if meta, ok := q.graph.metadata(q.id, name); ok {
		ref.Kind = meta.Kind
	}
	return Expr{e: types.Expression{Column: ref}, graph: q.graph}
}

// Star returns the query's "*" column.
func (q *Query) Star() Expr {
	return Expr{e: types.Expression{Column: &types.ColumnRef{Name: "*", Query: q.id}}, graph: q.graph}
}

// AsExpr wraps the query as a scalar sub-select.
func (q *Query) AsExpr() Expr {
	return Expr{e: types.Expression{Query: q.id}, graph: q.graph, err: q.err}
}

// Raw returns a raw SQL fragment emitted verbatim. The caller is responsible
// for its safety.
func Raw(sql string) Expr {
	return Expr{e: types.Expression{Raw: sql, IsLiteral: true}}
}

// Err returns the error recorded while building the expression.
func (x Expr) Err() error { return x.err }

// Name returns the base column name, or "" when the expression is not
// rooted at a column.
func (x Expr) Name() string { return x.e.Name() }

// Kind returns the scalar kind the expression produces.
func (x Expr) Kind() ScalarKind { return x.e.Kind() }

// Expression returns the raw expression.
func (x Expr) Expression() types.Expression { return x.e }

func (x Expr) with(s types.SubOperator) Expr {
	x.e.Chain = append(slices.Clone(x.e.Chain), s)
	return x
}

func (x Expr) fail(err error) Expr {
	if x.err == nil {
		x.err = err
	}
	return x
}

// Upper converts to upper case.
func (x Expr) Upper() Expr { return x.with(types.SubOperator{Op: types.OpToUpper}) }

// Lower converts to lower case.
func (x Expr) Lower() Expr { return x.with(types.SubOperator{Op: types.OpToLower}) }

// LTrim removes leading blanks.
func (x Expr) LTrim() Expr { return x.with(types.SubOperator{Op: types.OpLTrim}) }

// RTrim removes trailing blanks.
func (x Expr) RTrim() Expr { return x.with(types.SubOperator{Op: types.OpRTrim}) }

// Trim removes leading and trailing blanks.
func (x Expr) Trim() Expr { return x.with(types.SubOperator{Op: types.OpTrim}) }

// Substring takes the first length characters.
func (x Expr) Substring(length int) Expr {
	return x.with(types.SubOperator{Op: types.OpSubstring, Length: length})
}

// SubstringFrom takes length characters starting at the 1-based start.
func (x Expr) SubstringFrom(start, length int) Expr {
	if start < 1 {
		return x.fail(types.Errorf(types.ErrInvalidOperand, "substring", "start must be at least 1, got %d", start))
	}
	return x.with(types.SubOperator{Op: types.OpSubstring, Start: start, HasStart: true, Length: length})
}

// Coalesce replaces NULL with fallback, an Expr or a literal value.
func (x Expr) Coalesce(fallback any) Expr {
	o, g, err := operand(fallback)
	if err != nil {
		return x.fail(err)
	}
	if o.Expr == nil && o.Value == nil {
		return x.fail(types.Errorf(types.ErrInvalidOperand, "coalesce", "fallback must not be nil"))
	}
	if x.graph, err = sameGraph(x.graph, g); err != nil {
		return x.fail(err)
	}
	return x.with(types.SubOperator{Op: types.OpCoalesce, Arg: &o})
}

// Date truncates a date-time to its date.
func (x Expr) Date() Expr { return x.with(types.SubOperator{Op: types.OpDate}) }

// Length returns the character length.
func (x Expr) Length() Expr { return x.with(types.SubOperator{Op: types.OpLength}) }

// Round rounds to digits decimal places.
func (x Expr) Round(digits int) Expr {
	return x.with(types.SubOperator{Op: types.OpRound, Digits: digits})
}

// DatePart extracts a component of a date-time.
func (x Expr) DatePart(part DatePart) Expr {
	return x.with(types.SubOperator{Op: types.OpDatePart, Part: part})
}

// Sum aggregates with SUM.
func (x Expr) Sum() Expr { return x.with(types.SubOperator{Op: types.OpSum}) }

// Avg aggregates with AVG.
func (x Expr) Avg() Expr { return x.with(types.SubOperator{Op: types.OpAvg}) }

// Max aggregates with MAX.
func (x Expr) Max() Expr { return x.with(types.SubOperator{Op: types.OpMax}) }

// Min aggregates with MIN.
func (x Expr) Min() Expr { return x.with(types.SubOperator{Op: types.OpMin}) }

// StdDev aggregates with the sample standard deviation.
func (x Expr) StdDev() Expr { return x.with(types.SubOperator{Op: types.OpStdDev}) }

// Var aggregates with the sample variance.
func (x Expr) Var() Expr { return x.with(types.SubOperator{Op: types.OpVar}) }

// Count aggregates with COUNT.
func (x Expr) Count() Expr { return x.with(types.SubOperator{Op: types.OpCount}) }

// Cast converts to t. For character types one size argument sets the
// length; for decimals two set precision and scale.
func (x Expr) Cast(t CastType, size ...int) Expr {
	s := types.SubOperator{Op: types.OpCast, Cast: t}
	switch len(size) {
	case 0:
	case 1:
		s.Length = size[0]
	case 2:
		s.Precision, s.Scale = size[0], size[1]
	default:
		return x.fail(types.Errorf(types.ErrInvalidOperand, "cast", "expected at most 2 size arguments, got %d", len(size)))
	}
	if t.Kind() == types.KindUnknown {
		return x.fail(types.Errorf(types.ErrInvalidOperand, "cast", "unknown cast type %q", t))
	}
	x = x.with(s)
	x.e.Cast = t
	return x
}

// As sets the output alias used in a select list.
func (x Expr) As(alias string) Expr {
	x.e.Alias = alias
	return x
}

// Distinct marks a column DISTINCT, as in COUNT(DISTINCT col).
func (x Expr) Distinct() Expr {
	if x.e.Column == nil {
		return x.fail(types.Errorf(types.ErrInvalidOperand, "distinct", "DISTINCT applies to columns only"))
	}
	c := *x.e.Column
	c.Distinct = true
	x.e.Column = &c
	return x
}

// Typed declares the column's kind, overriding metadata.
func (x Expr) Typed(kind ScalarKind) Expr {
	if x.e.Column == nil {
		return x.fail(types.Errorf(types.ErrInvalidOperand, "typed", "only columns carry a declared kind"))
	}
	c := *x.e.Column
	c.Kind = kind
	x.e.Column = &c
	return x
}

// Order is one ORDER BY item.
type Order struct {
	item  types.OrderItem
	graph *Graph
	err   error
}

// Asc sorts ascending.
func (x Expr) Asc() Order {
	return Order{item: types.OrderItem{Expr: x.e, Direction: types.ASC}, graph: x.graph, err: x.err}
}

// Desc sorts descending.
func (x Expr) Desc() Order {
	return Order{item: types.OrderItem{Expr: x.e, Direction: types.DESC}, graph: x.graph, err: x.err}
}

// operand converts an Expr, *Query, Value, nil or plain Go value to an
// operand. nil yields an empty operand, which renders as NULL.
func operand(v any) (types.Operand, *Graph, error) {
	switch x := v.(type) {
	case nil:
		return types.Operand{}, nil, nil
	case Expr:
		if x.err != nil {
			return types.Operand{}, nil, x.err
		}
		e := x.e
		return types.Operand{Expr: &e}, x.graph, nil
	case *Query:
		if x.err != nil {
			return types.Operand{}, nil, x.err
		}
		return types.Operand{Expr: &types.Expression{Query: x.id}}, x.graph, nil
	default:
		val, err := value(v)
		if err != nil {
			return types.Operand{}, nil, err
		}
		return types.Operand{Value: &val}, nil, nil
	}
}
