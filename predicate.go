package dynq

import (
	"fmt"
	"slices"

	"github.com/zoobzio/dynq/internal/types"
)

// Predicate is one comparison of a WHERE, HAVING or ON clause.
type Predicate struct {
	p     *types.Predicate
	graph *Graph
	err   error
}

func invalid(err error) Predicate { return Predicate{err: err} }

// Err returns the error recorded while building the predicate.
func (p Predicate) Err() error { return p.err }

// Raw returns the predicate's raw form.
func (p Predicate) Raw() *types.Predicate { return p.p }

// Eq builds x = v. v may be a literal, an Expr or a *Query.
func (x Expr) Eq(v any) Predicate { return x.compare(types.Equal, v) }

// Ne builds x <> v.
func (x Expr) Ne(v any) Predicate { return x.compare(types.NotEqual, v) }

// Gt builds x > v.
func (x Expr) Gt(v any) Predicate { return x.compare(types.GreaterThan, v) }

// Ge builds x >= v.
func (x Expr) Ge(v any) Predicate { return x.compare(types.GreaterThanOrEqual, v) }

// Lt builds x < v.
func (x Expr) Lt(v any) Predicate { return x.compare(types.LessThan, v) }

// Le builds x <= v.
func (x Expr) Le(v any) Predicate { return x.compare(types.LessThanOrEqual, v) }

// Like builds x LIKE pattern with an optional escape character. The
// pattern is bound as a string parameter unless it is an Expr.
func (x Expr) Like(pattern any, escape ...rune) Predicate {
	return x.like(types.Like, pattern, escapeChar(escape))
}

// NotLike builds x NOT LIKE pattern.
func (x Expr) NotLike(pattern any, escape ...rune) Predicate {
	return x.like(types.NotLike, pattern, escapeChar(escape))
}

// Between builds x BETWEEN low AND high. Each bound is a literal or an Expr.
func (x Expr) Between(low, high any) Predicate {
	if x.err != nil {
		return invalid(x.err)
	}
	p := &types.Predicate{Op: types.Between, Left: x.e, Right: types.RightBounds, ItemFirst: true}
	g := x.graph
	var err error
	for _, b := range []struct {
		dst *types.Bound
		v   any
	}{{&p.Low, low}, {&p.High, high}} {
		var bg *Graph
		switch v := b.v.(type) {
		case Expr:
			if v.err != nil {
				return invalid(v.err)
			}
			e := v.e
			b.dst.Column, bg = &e, v.graph
		case *Query:
			if v.err != nil {
				return invalid(v.err)
			}
			b.dst.Query, bg = v.id, v.graph
		default:
			val, err := value(v)
			if err != nil {
				return invalid(err)
			}
			b.dst.Value = &val
		}
		if g, err = sameGraph(g, bg); err != nil {
			return invalid(err)
		}
	}
	return Predicate{p: p, graph: g}
}

// In builds x IN (values). Slices are flattened, so In(a, b, c) and
// In([]T{a, b, c}) are equivalent. A single *Query argument builds
// x IN (sub-query).
func (x Expr) In(values ...any) Predicate { return x.in(types.In, values) }

// NotIn builds x NOT IN (values).
func (x Expr) NotIn(values ...any) Predicate { return x.in(types.NotIn, values) }

// IsNull builds x IS NULL.
func (x Expr) IsNull() Predicate { return x.unary(types.IsNull) }

// IsNotNull builds x IS NOT NULL.
func (x Expr) IsNotNull() Predicate { return x.unary(types.IsNotNull) }

// Contains builds the dialect's full-text search predicate.
func (x Expr) Contains(term any) Predicate { return x.contains(term) }

func escapeChar(escape []rune) rune {
	if len(escape) > 0 {
		return escape[0]
	}
	return 0
}

func (x Expr) compare(op types.Comparison, right any) Predicate {
	if x.err != nil {
		return invalid(x.err)
	}
	p := &types.Predicate{Op: op, Left: x.e, ItemFirst: true}
	g := x.graph
	var rg *Graph
	switch r := right.(type) {
	case Expr:
		if r.err != nil {
			return invalid(r.err)
		}
		e := r.e
		p.Right, p.Column, rg = types.RightColumn, &e, r.graph
	case *Query:
		if r.err != nil {
			return invalid(r.err)
		}
		p.Right, p.Query, rg = types.RightQuery, r.id, r.graph
	default:
		v, err := value(right)
		if err != nil {
			return invalid(err)
		}
		p.Right, p.Value = types.RightValue, &v
	}
	g, err := sameGraph(g, rg)
	if err != nil {
		return invalid(err)
	}
	return Predicate{p: p, graph: g}
}

func (x Expr) like(op types.Comparison, pattern any, escape rune) Predicate {
	if _, ok := pattern.(*Query); ok {
		return invalid(types.Errorf(types.ErrUnsupportedSyntax, "like", "%s cannot compare against a sub-query", op))
	}
	p := x.compare(op, pattern)
	if p.err == nil {
		p.p.Escape = escape
	}
	return p
}

func (x Expr) in(op types.Comparison, values []any) Predicate {
	if x.err != nil {
		return invalid(x.err)
	}
	p := &types.Predicate{Op: op, Left: x.e, ItemFirst: true}
	if len(values) == 1 {
		if sub, ok := values[0].(*Query); ok {
			if sub.err != nil {
				return invalid(sub.err)
			}
			g, err := sameGraph(x.graph, sub.graph)
			if err != nil {
				return invalid(err)
			}
			p.Right, p.Query = types.RightQuery, sub.id
			return Predicate{p: p, graph: g}
		}
	}
	flat := types.Flatten(values)
	p.Right = types.RightList
	p.List = make([]types.Value, 0, len(flat))
	for _, v := range flat {
		val, err := value(v)
		if err != nil {
			return invalid(err)
		}
		p.List = append(p.List, val)
	}
	return Predicate{p: p, graph: x.graph}
}

func (x Expr) unary(op types.Comparison) Predicate {
	if x.err != nil {
		return invalid(x.err)
	}
	return Predicate{p: &types.Predicate{Op: op, Left: x.e, ItemFirst: true}, graph: x.graph}
}

func (x Expr) contains(term any) Predicate {
	if x.err != nil {
		return invalid(x.err)
	}
	v, err := value(term)
	if err != nil {
		return invalid(err)
	}
	return Predicate{
		p:     &types.Predicate{Op: types.Contains, Left: x.e, Right: types.RightValue, Value: &v, ItemFirst: true},
		graph: x.graph,
	}
}

// Eq builds a = b. Either operand may be the Expr; the other side's
// position is kept in the rendered SQL.
func Eq(a, b any) Predicate { return compareEither(types.Equal, a, b) }

// Ne builds a <> b.
func Ne(a, b any) Predicate { return compareEither(types.NotEqual, a, b) }

// Gt builds a > b.
func Gt(a, b any) Predicate { return compareEither(types.GreaterThan, a, b) }

// Ge builds a >= b.
func Ge(a, b any) Predicate { return compareEither(types.GreaterThanOrEqual, a, b) }

// Lt builds a < b.
func Lt(a, b any) Predicate { return compareEither(types.LessThan, a, b) }

// Le builds a <= b.
func Le(a, b any) Predicate { return compareEither(types.LessThanOrEqual, a, b) }

func compareEither(op types.Comparison, a, b any) Predicate {
	if x, ok := a.(Expr); ok {
		return x.compare(op, b)
	}
	if x, ok := b.(Expr); ok {
		p := x.compare(op, a)
		if p.err == nil {
			p.p.ItemFirst = false
		}
		return p
	}
	return invalid(types.Errorf(types.ErrInvalidOperand, "compare", "%s needs an expression operand, got %T and %T", op, a, b))
}

// Exists builds EXISTS (sub-query).
func Exists(q *Query) Predicate { return exists(types.Exists, q) }

// NotExists builds NOT EXISTS (sub-query).
func NotExists(q *Query) Predicate { return exists(types.NotExists, q) }

func exists(op types.Comparison, q *Query) Predicate {
	if q == nil {
		return invalid(types.Errorf(types.ErrInvalidOperand, "exists", "%s needs a sub-query", op))
	}
	if q.err != nil {
		return invalid(q.err)
	}
	return Predicate{p: &types.Predicate{Op: op, Right: types.RightQuery, Query: q.id}, graph: q.graph}
}

// Group is a parenthesized list of predicates joined by one conjunction.
type Group struct {
	conj  types.Conjunction
	items []any
}

// And groups items joined by AND.
func And(items ...any) Group { return Group{conj: types.And, items: items} }

// Or groups items joined by OR.
func Or(items ...any) Group { return Group{conj: types.Or, items: items} }

// Token is an explicit parenthesis or conjunction.
type Token struct {
	t types.PredicateToken
}

// Explicit stream tokens.
var (
	Open      = Token{types.OpenToken()}
	Close     = Token{types.CloseToken()}
	AndTok    = Token{types.ConjToken(types.And)}
	OrTok     = Token{types.ConjToken(types.Or)}
	AndNotTok = Token{types.ConjToken(types.AndNot)}
	OrNotTok  = Token{types.ConjToken(types.OrNot)}
)

// stream accumulates predicate tokens and the graph they reference. depth
// counts open parentheses; floor is the depth of the innermost group being
// added, below which an explicit Close may not reach.
type stream struct {
	tokens []types.PredicateToken
	graph  *Graph
	depth  int
	floor  int
}

// newStream starts a stream after existing tokens, which may leave explicit
// groups open for later calls to close.
func newStream(g *Graph, existing []types.PredicateToken) stream {
	s := stream{tokens: slices.Clone(existing), graph: g}
	for _, t := range existing {
		switch t.Kind {
		case types.TokenOpen:
			s.depth++
		case types.TokenClose:
			s.depth--
		}
	}
	return s
}

// join inserts conj unless the stream is empty or ends in "(" or a
// conjunction.
func (s *stream) join(conj types.Conjunction) {
	if types.NeedsConjunction(s.tokens) {
		s.tokens = append(s.tokens, types.ConjToken(conj))
	}
}

// add appends items, joining bare items with conj. Plain strings are raw
// SQL predicates. Groups that end up empty, nested ones included, add
// nothing.
func (s *stream) add(conj types.Conjunction, items []any) error {
	for _, item := range items {
		switch x := item.(type) {
		case Predicate:
			if x.err != nil {
				return x.err
			}
			g, err := sameGraph(s.graph, x.graph)
			if err != nil {
				return err
			}
			s.graph = g
			s.join(conj)
			s.tokens = append(s.tokens, types.PredToken(x.p))
		case Group:
			if len(x.items) == 0 {
				continue
			}
			mark := len(s.tokens)
			s.join(conj)
			s.tokens = append(s.tokens, types.OpenToken())
			inner := len(s.tokens)
			floor := s.floor
			s.depth++
			s.floor = s.depth
			if err := s.add(x.conj, x.items); err != nil {
				return err
			}
			if s.depth != s.floor {
				return types.Errorf(types.ErrMalformedGraph, "predicate stream", "unclosed ( inside %s group", x.conj)
			}
			s.depth--
			s.floor = floor
			if len(s.tokens) == inner {
				s.tokens = s.tokens[:mark]
				continue
			}
			s.tokens = append(s.tokens, types.CloseToken())
		case Token:
			switch x.t.Kind {
			case types.TokenConjunction:
				if !types.NeedsConjunction(s.tokens) {
					return types.Errorf(types.ErrMalformedGraph, "predicate stream", "conjunction %s has no preceding predicate", x.t.Conj)
				}
			case types.TokenOpen:
				s.join(conj)
				s.depth++
			case types.TokenClose:
				if s.depth <= s.floor {
					return types.Errorf(types.ErrMalformedGraph, "predicate stream", ") has no matching (")
				}
				s.depth--
			}
			s.tokens = append(s.tokens, x.t)
		case string:
			s.join(conj)
			s.tokens = append(s.tokens, types.PredToken(&types.Predicate{Raw: x, IsLiteral: true}))
		default:
			return types.Errorf(types.ErrInvalidOperand, "predicate stream", "cannot use %s as a predicate", describe(item))
		}
	}
	return nil
}

func describe(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
