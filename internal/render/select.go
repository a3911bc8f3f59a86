package render

import (
	"strconv"
	"strings"

	"github.com/zoobzio/dynq/internal/types"
)

const (
	countStarSQL  = "COUNT(*)"
	rowNumAlias   = "RowNum"
	pagingWrapper = "PagingWrapper"
)

// renderStatement renders a node as a complete SELECT statement.
func (e Engine) renderStatement(id types.NodeID, ctx *renderContext) (string, error) {
	n, release, err := ctx.enter(id)
	if err != nil {
		return "", err
	}
	defer release()

	if err := e.validateNode(n, ctx); err != nil {
		return "", err
	}
	if n.Paging() == types.PagingPage && e.WindowPaging() {
		return e.renderPaged(n, ctx)
	}
	return e.renderPlain(n, ctx)
}

// validateNode checks the clause combinations that cannot be rendered.
func (e Engine) validateNode(n *types.Node, ctx *renderContext) error {
	modes := 0
	if n.Skip != nil || n.Take != nil {
		modes++
	}
	if n.PageNumber != 0 || n.PageSize != 0 {
		modes++
		if n.PageNumber < 1 || n.PageSize < 1 {
			return types.Errorf(types.ErrInvalidOperand, "paging", "page number and size must be positive, got %d and %d", n.PageNumber, n.PageSize)
		}
	}
	if n.Top != 0 {
		modes++
		if n.Top < 0 {
			return types.Errorf(types.ErrInvalidOperand, "top", "row limit must be positive, got %d", n.Top)
		}
	}
	if modes > 1 {
		return types.Errorf(types.ErrInvalidOperand, "paging", "top, skip/take and page are mutually exclusive")
	}
	if (n.Skip != nil && *n.Skip < 0) || (n.Take != nil && *n.Take < 0) {
		return types.Errorf(types.ErrInvalidOperand, "paging", "skip and take must not be negative")
	}

	if len(n.SetOps) > 0 {
		if n.Paging() != types.PagingNone {
			return e.unsupported("paging combined with a set operation", "page the combined result from an outer query")
		}
		if len(n.GroupBy) > 0 || len(n.Having) > 0 {
			return e.unsupported("GROUP BY or HAVING combined with a set operation", "group inside a derived table")
		}
		for _, op := range n.SetOps {
			right, err := ctx.node(op.Query)
			if err != nil {
				return err
			}
			if len(right.OrderBy) > 0 || right.Paging() != types.PagingNone {
				return e.unsupported("ORDER BY or paging inside a set operation operand", "order the combined result instead")
			}
		}
	}
	if n.Rollup && len(n.GroupBy) == 0 {
		return types.Errorf(types.ErrMalformedGraph, "group by", "ROLLUP requires GROUP BY items")
	}
	if n.From == types.NoNode && n.Source == "" {
		return types.Errorf(types.ErrMalformedGraph, "from", "query has neither a source nor a FROM sub-query")
	}
	return nil
}

// renderPlain renders SELECT, FROM, JOIN, WHERE, set operations, GROUP BY,
// HAVING and ORDER BY, followed by any row limit.
func (e Engine) renderPlain(n *types.Node, ctx *renderContext) (string, error) {
	var sql strings.Builder
	var prefix, whereLimit, suffix string
	if n.Paging() == types.PagingTop {
		prefix, whereLimit, suffix = e.Top(n.Top)
	}

	sql.WriteString("SELECT ")
	if n.Distinct {
		sql.WriteString("DISTINCT ")
	}
	sql.WriteString(prefix)
	list, err := e.renderSelectList(n, ctx)
	if err != nil {
		return "", err
	}
	sql.WriteString(list)

	body, err := e.renderBody(n, whereLimit, ctx)
	if err != nil {
		return "", err
	}
	sql.WriteString(body)

	for _, op := range n.SetOps {
		kw, err := e.SetOperator(op.Kind)
		if err != nil {
			return "", err
		}
		right, err := e.renderStatement(op.Query, ctx)
		if err != nil {
			return "", err
		}
		sql.WriteString(" ")
		sql.WriteString(kw)
		sql.WriteString(" ")
		sql.WriteString(right)
	}

	grouping, err := e.renderGrouping(n, ctx)
	if err != nil {
		return "", err
	}
	sql.WriteString(grouping)

	if len(n.OrderBy) > 0 {
		order, err := e.renderOrderBy(n.OrderBy, ctx)
		if err != nil {
			return "", err
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(order)
	}

	switch n.Paging() {
	case types.PagingSkipTake:
		limit, err := e.SkipTake(n.Skip, n.Take, len(n.OrderBy) > 0)
		if err != nil {
			return "", err
		}
		sql.WriteString(limit)
	case types.PagingTop:
		sql.WriteString(suffix)
	case types.PagingPage:
		// Dialects without window functions page with LIMIT/OFFSET.
		begin, _ := n.PageBounds()
		skip, take := begin-1, n.PageSize
		limit, err := e.SkipTake(&skip, &take, len(n.OrderBy) > 0)
		if err != nil {
			return "", err
		}
		sql.WriteString(limit)
	}

	return sql.String(), nil
}

// renderPaged wraps the query in a ROW_NUMBER window and filters the
// requested page.
func (e Engine) renderPaged(n *types.Node, ctx *renderContext) (string, error) {
	var inner strings.Builder
	inner.WriteString("SELECT ")
	if n.Distinct {
		inner.WriteString("DISTINCT ")
	}
	if len(n.Select) == 0 && !n.CountAll {
		inner.WriteString(e.allColumns(n))
	} else {
		list, err := e.renderSelectList(n, ctx)
		if err != nil {
			return "", err
		}
		inner.WriteString(list)
	}

	order := e.WindowOrder()
	if len(n.OrderBy) > 0 {
		var err error
		if order, err = e.renderOrderBy(n.OrderBy, ctx); err != nil {
			return "", err
		}
	}
	rowNum := e.QuoteIdentifier(rowNumAlias)
	inner.WriteString(", ROW_NUMBER() OVER (ORDER BY ")
	inner.WriteString(order)
	inner.WriteString(") AS ")
	inner.WriteString(rowNum)

	body, err := e.renderBody(n, "", ctx)
	if err != nil {
		return "", err
	}
	inner.WriteString(body)

	grouping, err := e.renderGrouping(n, ctx)
	if err != nil {
		return "", err
	}
	inner.WriteString(grouping)

	begin, end := n.PageBounds()
	var sql strings.Builder
	sql.WriteString("SELECT * FROM (")
	sql.WriteString(inner.String())
	sql.WriteString(") ")
	sql.WriteString(e.QuoteIdentifier(pagingWrapper))
	sql.WriteString(" WHERE ")
	sql.WriteString(rowNum)
	sql.WriteString(" BETWEEN ")
	sql.WriteString(strconv.Itoa(begin))
	sql.WriteString(" AND ")
	sql.WriteString(strconv.Itoa(end))
	sql.WriteString(" ORDER BY ")
	sql.WriteString(rowNum)
	return sql.String(), nil
}

// renderBody renders FROM, JOIN and WHERE.
func (e Engine) renderBody(n *types.Node, whereLimit string, ctx *renderContext) (string, error) {
	var sql strings.Builder

	from, err := e.renderFrom(n, ctx)
	if err != nil {
		return "", err
	}
	sql.WriteString(" FROM ")
	sql.WriteString(from)

	for i := range n.Joins {
		join, err := e.renderJoin(&n.Joins[i], ctx)
		if err != nil {
			return "", err
		}
		sql.WriteString(" ")
		sql.WriteString(join)
	}

	where, err := e.renderTokens(n.Where, ctx)
	if err != nil {
		return "", err
	}
	if whereLimit != "" {
		if where == "" {
			where = whereLimit
		} else {
			if types.HasTopLevelOr(n.Where) {
				where = "(" + where + ")"
			}
			where += " AND " + whereLimit
		}
	}
	if where != "" {
		sql.WriteString(" WHERE ")
		sql.WriteString(where)
	}
	return sql.String(), nil
}

// renderGrouping renders GROUP BY and HAVING.
func (e Engine) renderGrouping(n *types.Node, ctx *renderContext) (string, error) {
	var sql strings.Builder
	if len(n.GroupBy) > 0 {
		items := make([]string, 0, len(n.GroupBy))
		for i := range n.GroupBy {
			s, err := e.renderExpr(&n.GroupBy[i], ctx)
			if err != nil {
				return "", err
			}
			items = append(items, s)
		}
		group := strings.Join(items, ", ")
		if n.Rollup {
			var err error
			if group, err = e.Rollup(group); err != nil {
				return "", err
			}
		}
		sql.WriteString(" GROUP BY ")
		sql.WriteString(group)
	}

	having, err := e.renderTokens(n.Having, ctx)
	if err != nil {
		return "", err
	}
	if having != "" {
		sql.WriteString(" HAVING ")
		sql.WriteString(having)
	}
	return sql.String(), nil
}

// renderSelectList renders the comma-joined select items and COUNT(*).
func (e Engine) renderSelectList(n *types.Node, ctx *renderContext) (string, error) {
	if len(n.Select) == 0 && !n.CountAll {
		return "*", nil
	}
	items := make([]string, 0, len(n.Select)+1)
	for i := range n.Select {
		s, err := e.renderSelectItem(&n.Select[i], ctx)
		if err != nil {
			return "", err
		}
		items = append(items, s)
	}
	if n.CountAll {
		s := countStarSQL
		if n.CountAllAlias != "" {
			s += " AS " + e.QuoteIdentifier(n.CountAllAlias)
		}
		items = append(items, s)
	}
	return strings.Join(items, ", "), nil
}

func (e Engine) renderSelectItem(x *types.Expression, ctx *renderContext) (string, error) {
	variant := x.Variant()
	if variant == types.VariantRaw && len(x.Chain) == 0 {
		return x.Raw, nil
	}
	if variant == types.VariantQuery && len(x.Chain) == 0 && x.Alias == "" {
		sub, err := ctx.node(x.Query)
		if err != nil {
			return "", err
		}
		if sub.SubQueryAlias == "" {
			return e.allColumns(sub), nil
		}
		body, err := e.renderStatement(x.Query, ctx)
		if err != nil {
			return "", err
		}
		return "(" + body + ") AS " + e.QuoteIdentifier(sub.SubQueryAlias), nil
	}

	s, err := e.renderExpr(x, ctx)
	if err != nil {
		return "", err
	}
	alias := x.Alias
	if alias == "" && len(x.Chain) > 0 {
		alias = x.Name()
	}
	if alias != "" {
		s += " AS " + e.QuoteIdentifier(alias)
	}
	return s, nil
}

// renderFrom renders the source table or the parenthesized FROM sub-query.
func (e Engine) renderFrom(n *types.Node, ctx *renderContext) (string, error) {
	if n.From == types.NoNode {
		s := e.qualifiedName(n)
		if n.Alias != "" {
			s += " " + e.QuoteIdentifier(n.Alias)
		}
		return s, nil
	}
	return e.renderDerived(n.From, ctx)
}

// renderDerived renders a node as a table source: either its name or a
// parenthesized statement, followed by its outer alias.
func (e Engine) renderDerived(id types.NodeID, ctx *renderContext) (string, error) {
	sub, err := ctx.node(id)
	if err != nil {
		return "", err
	}
	alias := sub.OuterAlias()
	if !sub.Derived() {
		s := e.qualifiedName(sub)
		if alias != "" {
			s += " " + e.QuoteIdentifier(alias)
		}
		return s, nil
	}
	if alias == "" {
		return "", e.unsupported("derived table without an alias", "call As or SubQueryAs on the nested query")
	}
	body, err := e.renderStatement(id, ctx)
	if err != nil {
		return "", err
	}
	return "(" + body + ") " + e.QuoteIdentifier(alias), nil
}

func (e Engine) renderJoin(j *types.Join, ctx *renderContext) (string, error) {
	target, err := ctx.node(j.Query)
	if err != nil {
		return "", err
	}
	if target.Alias == "" {
		return "", types.Errorf(types.ErrInvalidJoin, "join", "join target %q has no alias", target.Source)
	}
	kw, err := e.JoinKeyword(j.Kind)
	if err != nil {
		return "", err
	}
	source, err := e.renderDerived(j.Query, ctx)
	if err != nil {
		return "", err
	}
	if j.Kind == types.CrossJoin {
		return kw + " " + source, nil
	}
	if len(j.On) == 0 {
		return "", types.Errorf(types.ErrInvalidJoin, "join", "%s %q has no ON condition", j.Kind, target.Alias)
	}
	on, err := e.renderTokens(j.On, ctx)
	if err != nil {
		return "", err
	}
	return kw + " " + source + " ON " + on, nil
}

func (e Engine) renderOrderBy(items []types.OrderItem, ctx *renderContext) (string, error) {
	parts := make([]string, 0, len(items))
	for i := range items {
		item := &items[i]
		if item.Expr.Variant() == types.VariantRaw && len(item.Expr.Chain) == 0 {
			parts = append(parts, item.Expr.Raw)
			continue
		}
		s, err := e.renderExpr(&item.Expr, ctx)
		if err != nil {
			return "", err
		}
		dir := item.Direction
		if dir == "" {
			dir = types.ASC
		}
		parts = append(parts, s+" "+string(dir))
	}
	return strings.Join(parts, ", "), nil
}
