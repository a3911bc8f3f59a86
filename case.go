package dynq

import (
	"github.com/zoobzio/dynq/internal/types"
)

// CaseBuilder builds a CASE expression.
//
//	dynq.Case().
//		When(q.Col("Qty").Gt(100)).Then("bulk").
//		Else("single").
//		End().As("Size")
type CaseBuilder struct {
	c       types.CaseExpr
	graph   *Graph
	err     error
	pending bool
}

// Case starts a CASE expression.
func Case() *CaseBuilder {
	return &CaseBuilder{}
}

// When starts a clause. A single Expr argument is used as the condition
// expression; anything else is a predicate stream joined by AND.
func (b *CaseBuilder) When(cond ...any) *CaseBuilder {
	if b.err != nil {
		return b
	}
	if b.pending {
		b.err = types.Errorf(types.ErrMalformedGraph, "case", "WHEN %d has no THEN", len(b.c.Clauses))
		return b
	}
	var clause types.WhenClause
	if x, ok := singleExpr(cond); ok {
		if x.err != nil {
			b.err = x.err
			return b
		}
		e := x.e
		clause.CondExpr = &e
		b.graph, b.err = sameGraph(b.graph, x.graph)
	} else {
		s := newStream(b.graph, nil)
		if err := s.add(types.And, cond); err != nil {
			b.err = err
			return b
		}
		if len(s.tokens) == 0 {
			b.err = types.Errorf(types.ErrMalformedGraph, "case", "WHEN %d has no condition", len(b.c.Clauses)+1)
			return b
		}
		clause.Cond, b.graph = s.tokens, s.graph
	}
	b.c.Clauses = append(b.c.Clauses, clause)
	b.pending = true
	return b
}

// Then sets the result of the open clause: an Expr, a *Query, a literal or
// nil for NULL. Literals are inlined rather than bound.
func (b *CaseBuilder) Then(v any) *CaseBuilder {
	if b.err != nil {
		return b
	}
	if !b.pending {
		b.err = types.Errorf(types.ErrMalformedGraph, "case", "THEN without WHEN")
		return b
	}
	o, err := b.operand(v)
	if err != nil {
		b.err = err
		return b
	}
	b.c.Clauses[len(b.c.Clauses)-1].Then = o
	b.pending = false
	return b
}

// Else sets the result when no clause matches.
func (b *CaseBuilder) Else(v any) *CaseBuilder {
	if b.err != nil {
		return b
	}
	o, err := b.operand(v)
	if err != nil {
		b.err = err
		return b
	}
	b.c.Else = &o
	return b
}

// End completes the expression.
func (b *CaseBuilder) End() Expr {
	err := b.err
	switch {
	case err != nil:
	case b.pending:
		err = types.Errorf(types.ErrMalformedGraph, "case", "WHEN %d has no THEN", len(b.c.Clauses))
	case len(b.c.Clauses) == 0:
		err = types.Errorf(types.ErrMalformedGraph, "case", "CASE without WHEN clauses")
	}
	c := b.c
	return Expr{e: types.Expression{Case: &c}, graph: b.graph, err: err}
}

func (b *CaseBuilder) operand(v any) (types.Operand, error) {
	o, g, err := operand(v)
	if err != nil {
		return o, err
	}
	b.graph, err = sameGraph(b.graph, g)
	return o, err
}

func singleExpr(items []any) (Expr, bool) {
	if len(items) != 1 {
		return Expr{}, false
	}
	x, ok := items[0].(Expr)
	return x, ok
}
