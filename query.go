package dynq

import "github.com/zoobzio/dynq/internal/types"

// Query is a handle to one query node of a Graph. Builder methods mutate
// the node and return the receiver for chaining. The first error is kept
// and every later call is a no-op.
type Query struct {
	graph *Graph
	id    types.NodeID
	err   error
}

// ID returns the node id within the graph.
func (q *Query) ID() NodeID { return q.id }

// Graph returns the graph the query belongs to.
func (q *Query) Graph() *Graph { return q.graph }

// Node returns the raw node. Pointers into the arena are invalidated when
// a query is added to the graph.
func (q *Query) Node() *Node { return q.node() }

// Err returns the first error recorded by a builder call.
func (q *Query) Err() error { return q.err }

// Sub creates another query in the same graph.
func (q *Query) Sub(source string, alias ...string) *Query {
	return q.graph.Query(source, alias...)
}

func (q *Query) node() *types.Node {
	return q.graph.arena.Node(q.id)
}

func (q *Query) fail(err error) *Query {
	if q.err == nil {
		q.err = err
	}
	return q
}

// attach registers every nested query in ids with q. g is the graph the
// nested parts were built from.
func (q *Query) attach(g *Graph, ids []types.NodeID) error {
	if g != nil && g != q.graph {
		return types.Errorf(types.ErrMalformedGraph, "attach", "query belongs to a different graph")
	}
	for _, id := range ids {
		if sub := q.graph.queries[id]; sub != nil && sub.err != nil {
			return sub.err
		}
		if err := q.graph.arena.Register(q.id, id); err != nil {
			return err
		}
	}
	return nil
}

// nested validates a query passed as a FROM, JOIN or set-operation target.
func (q *Query) nested(op string, sub *Query) error {
	switch {
	case sub == nil:
		return types.Errorf(types.ErrInvalidOperand, op, "nil query")
	case sub.err != nil:
		return sub.err
	case sub.graph != q.graph:
		return types.Errorf(types.ErrMalformedGraph, op, "query belongs to a different graph")
	}
	return nil
}

// As sets the join alias.
func (q *Query) As(alias string) *Query {
	if q.err != nil {
		return q
	}
	q.node().Alias = alias
	return q
}

// SubQueryAs sets the alias used when the query renders as a derived table
// or scalar sub-select.
func (q *Query) SubQueryAs(alias string) *Query {
	if q.err != nil {
		return q
	}
	q.node().SubQueryAlias = alias
	return q
}

// InSchema qualifies the source with a schema.
func (q *Query) InSchema(schema string) *Query {
	if q.err != nil {
		return q
	}
	q.node().Schema = schema
	return q
}

// InCatalog qualifies the source with a catalog.
func (q *Query) InCatalog(catalog string) *Query {
	if q.err != nil {
		return q
	}
	q.node().Catalog = catalog
	return q
}

// Distinct selects distinct rows.
func (q *Query) Distinct() *Query {
	if q.err != nil {
		return q
	}
	q.node().Distinct = true
	return q
}

// CountAll appends COUNT(*) to the select list.
func (q *Query) CountAll(alias ...string) *Query {
	if q.err != nil {
		return q
	}
	n := q.node()
	n.CountAll = true
	if len(alias) > 0 {
		n.CountAllAlias = alias[0]
	}
	return q
}

// DefaultConjunction sets the conjunction inserted between bare predicates.
func (q *Query) DefaultConjunction(c Conjunction) *Query {
	if q.err != nil {
		return q
	}
	if c != types.And && c != types.Or {
		return q.fail(types.Errorf(types.ErrInvalidOperand, "default conjunction", "must be AND or OR, got %q", c))
	}
	q.node().Conjunction = c
	return q
}

// Any prefixes the query with ANY when it is the right side of a comparison.
func (q *Query) Any() *Query { return q.search(types.SearchAny) }

// All prefixes the query with ALL when it is the right side of a comparison.
func (q *Query) All() *Query { return q.search(types.SearchAll) }

// Some prefixes the query with SOME when it is the right side of a comparison.
func (q *Query) Some() *Query { return q.search(types.SearchSome) }

func (q *Query) search(s types.SearchCondition) *Query {
	if q.err != nil {
		return q
	}
	q.node().Search = s
	return q
}

// Top limits the result to the first n rows.
func (q *Query) Top(n int) *Query {
	if q.err != nil {
		return q
	}
	if n < 1 {
		return q.fail(types.Errorf(types.ErrInvalidOperand, "top", "row limit must be positive, got %d", n))
	}
	node := q.node()
	if p := node.Paging(); p != types.PagingNone && p != types.PagingTop {
		return q.fail(pagingConflict())
	}
	node.Top = n
	return q
}

// Skip skips the first n rows.
func (q *Query) Skip(n int) *Query {
	if q.err != nil {
		return q
	}
	if n < 0 {
		return q.fail(types.Errorf(types.ErrInvalidOperand, "skip", "must not be negative, got %d", n))
	}
	node := q.node()
	if p := node.Paging(); p != types.PagingNone && p != types.PagingSkipTake {
		return q.fail(pagingConflict())
	}
	node.Skip = &n
	return q
}

// Take returns at most n rows.
func (q *Query) Take(n int) *Query {
	if q.err != nil {
		return q
	}
	if n < 0 {
		return q.fail(types.Errorf(types.ErrInvalidOperand, "take", "must not be negative, got %d", n))
	}
	node := q.node()
	if p := node.Paging(); p != types.PagingNone && p != types.PagingSkipTake {
		return q.fail(pagingConflict())
	}
	node.Take = &n
	return q
}

// Page returns the 1-based page number of pages holding size rows.
func (q *Query) Page(number, size int) *Query {
	if q.err != nil {
		return q
	}
	if number < 1 || size < 1 {
		return q.fail(types.Errorf(types.ErrInvalidOperand, "page", "page number and size must be positive, got %d and %d", number, size))
	}
	node := q.node()
	if p := node.Paging(); p != types.PagingNone && p != types.PagingPage {
		return q.fail(pagingConflict())
	}
	node.PageNumber, node.PageSize = number, size
	return q
}

func pagingConflict() error {
	return types.Errorf(types.ErrInvalidOperand, "paging", "top, skip/take and page are mutually exclusive")
}

// WithRollup adds super-aggregate rows to GROUP BY.
func (q *Query) WithRollup() *Query {
	if q.err != nil {
		return q
	}
	q.node().Rollup = true
	return q
}

// Select appends items to the select list: an Expr, a *Query (all columns
// of a join partner, or a scalar sub-select when it has a sub-query alias)
// or a raw SQL string.
func (q *Query) Select(items ...any) *Query {
	if q.err != nil {
		return q
	}
	exprs, err := q.expressions("select", items)
	if err != nil {
		return q.fail(err)
	}
	n := q.node()
	n.Select = append(n.Select, exprs...)
	return q
}

// GroupBy appends grouping expressions.
func (q *Query) GroupBy(items ...any) *Query {
	if q.err != nil {
		return q
	}
	exprs, err := q.expressions("group by", items)
	if err != nil {
		return q.fail(err)
	}
	n := q.node()
	n.GroupBy = append(n.GroupBy, exprs...)
	return q
}

// expressions converts and attaches select-like items.
func (q *Query) expressions(op string, items []any) ([]types.Expression, error) {
	exprs := make([]types.Expression, 0, len(items))
	var ids []types.NodeID
	for _, item := range items {
		var e types.Expression
		var g *Graph
		switch x := item.(type) {
		case Expr:
			if x.err != nil {
				return nil, x.err
			}
			e, g = x.e, x.graph
		case *Query:
			if err := q.nested(op, x); err != nil {
				return nil, err
			}
			e, g = types.Expression{Query: x.id}, x.graph
		case string:
			e = types.Expression{Raw: x, IsLiteral: true}
		default:
			return nil, types.Errorf(types.ErrInvalidOperand, op, "cannot use %s as an expression", describe(item))
		}
		if g != nil && g != q.graph {
			return nil, types.Errorf(types.ErrMalformedGraph, op, "expression belongs to a different graph")
		}
		exprs = append(exprs, e)
		ids = types.ExprQueries(ids, &e)
	}
	if err := q.attach(q.graph, ids); err != nil {
		return nil, err
	}
	return exprs, nil
}

// OrderBy appends sort items: an Order from Asc or Desc, an Expr (sorted
// ascending) or a raw SQL string, which supplies its own direction.
func (q *Query) OrderBy(items ...any) *Query {
	if q.err != nil {
		return q
	}
	orders := make([]types.OrderItem, 0, len(items))
	var ids []types.NodeID
	for _, item := range items {
		var o types.OrderItem
		var g *Graph
		switch x := item.(type) {
		case Order:
			if x.err != nil {
				return q.fail(x.err)
			}
			o, g = x.item, x.graph
		case Expr:
			if x.err != nil {
				return q.fail(x.err)
			}
			o, g = types.OrderItem{Expr: x.e, Direction: types.ASC}, x.graph
		case string:
			o = types.OrderItem{Expr: types.Expression{Raw: x, IsLiteral: true}}
		default:
			return q.fail(types.Errorf(types.ErrInvalidOperand, "order by", "cannot sort by %s", describe(item)))
		}
		if g != nil && g != q.graph {
			return q.fail(types.Errorf(types.ErrMalformedGraph, "order by", "expression belongs to a different graph"))
		}
		orders = append(orders, o)
		ids = types.ExprQueries(ids, &o.Expr)
	}
	if err := q.attach(q.graph, ids); err != nil {
		return q.fail(err)
	}
	n := q.node()
	n.OrderBy = append(n.OrderBy, orders...)
	return q
}

// Where appends predicates to the WHERE clause. Bare items are joined by
// the default conjunction; no conjunction is inserted after an explicit
// Open or conjunction token.
func (q *Query) Where(items ...any) *Query {
	if q.err != nil {
		return q
	}
	tokens, err := q.predicates(q.node().Where, items)
	if err != nil {
		return q.fail(err)
	}
	q.node().Where = tokens
	return q
}

// Having appends predicates to the HAVING clause.
func (q *Query) Having(items ...any) *Query {
	if q.err != nil {
		return q
	}
	tokens, err := q.predicates(q.node().Having, items)
	if err != nil {
		return q.fail(err)
	}
	q.node().Having = tokens
	return q
}

func (q *Query) predicates(existing []types.PredicateToken, items []any) ([]types.PredicateToken, error) {
	s := newStream(q.graph, existing)
	if err := s.add(q.node().DefaultConjunction(), items); err != nil {
		return nil, err
	}
	if err := q.attach(s.graph, types.TokenQueries(nil, s.tokens[len(existing):])); err != nil {
		return nil, err
	}
	return s.tokens, nil
}

// From replaces the source with a derived table.
func (q *Query) From(sub *Query) *Query {
	if q.err != nil {
		return q
	}
	if err := q.nested("from", sub); err != nil {
		return q.fail(err)
	}
	if q.node().From != types.NoNode {
		return q.fail(types.Errorf(types.ErrMalformedGraph, "from", "FROM sub-query already set"))
	}
	if err := q.attach(q.graph, []types.NodeID{sub.id}); err != nil {
		return q.fail(err)
	}
	q.node().From = sub.id
	return q
}

// InnerJoin joins target, which must have an alias, on the given predicates.
func (q *Query) InnerJoin(target *Query, on ...any) *Query {
	return q.join(types.InnerJoin, target, on)
}

// LeftJoin left-joins target.
func (q *Query) LeftJoin(target *Query, on ...any) *Query {
	return q.join(types.LeftJoin, target, on)
}

// RightJoin right-joins target.
func (q *Query) RightJoin(target *Query, on ...any) *Query {
	return q.join(types.RightJoin, target, on)
}

// FullJoin full-outer-joins target.
func (q *Query) FullJoin(target *Query, on ...any) *Query {
	return q.join(types.FullJoin, target, on)
}

// CrossJoin cross-joins target.
func (q *Query) CrossJoin(target *Query) *Query {
	return q.join(types.CrossJoin, target, nil)
}

func (q *Query) join(kind types.JoinKind, target *Query, on []any) *Query {
	if q.err != nil {
		return q
	}
	if err := q.nested("join", target); err != nil {
		return q.fail(err)
	}
	t := target.node()
	if t.Alias == "" {
		return q.fail(types.Errorf(types.ErrInvalidJoin, "join", "join target %q has no alias", t.Source))
	}
	if kind != types.CrossJoin && len(on) == 0 {
		return q.fail(types.Errorf(types.ErrInvalidJoin, "join", "%s %q has no ON condition", kind, t.Alias))
	}
	s := newStream(q.graph, nil)
	if err := s.add(types.And, on); err != nil {
		return q.fail(err)
	}
	ids := types.TokenQueries([]types.NodeID{target.id}, s.tokens)
	if err := q.attach(s.graph, ids); err != nil {
		return q.fail(err)
	}
	n := q.node()
	n.Joins = append(n.Joins, types.Join{Kind: kind, Query: target.id, On: s.tokens})
	return q
}

// Union appends UNION r.
func (q *Query) Union(r *Query) *Query { return q.setOp(types.Union, r) }

// UnionAll appends UNION ALL r.
func (q *Query) UnionAll(r *Query) *Query { return q.setOp(types.UnionAll, r) }

// Intersect appends INTERSECT r.
func (q *Query) Intersect(r *Query) *Query { return q.setOp(types.Intersect, r) }

// Except appends EXCEPT r.
func (q *Query) Except(r *Query) *Query { return q.setOp(types.Except, r) }

func (q *Query) setOp(kind types.SetOpKind, r *Query) *Query {
	if q.err != nil {
		return q
	}
	if err := q.nested("set operation", r); err != nil {
		return q.fail(err)
	}
	if err := q.attach(q.graph, []types.NodeID{r.id}); err != nil {
		return q.fail(err)
	}
	n := q.node()
	n.SetOps = append(n.SetOps, types.SetOperation{Kind: kind, Query: r.id})
	return q
}

// Render compiles the query with r. Builder errors recorded on the query or
// on any query registered under it are returned before rendering.
func (q *Query) Render(r Renderer) (*QueryResult, error) {
	if q.err != nil {
		return nil, q.err
	}
	if r == nil {
		return nil, types.Errorf(types.ErrInvalidOperand, "render", "nil renderer")
	}
	for _, id := range q.node().Registry {
		if sub := q.graph.queries[id]; sub != nil && sub.err != nil {
			return nil, sub.err
		}
	}
	return r.Render(q.graph.arena, q.id)
}
