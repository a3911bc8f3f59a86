package render

import (
	"fmt"
	"strings"

	"github.com/zoobzio/dynq/internal/types"
)

// renderTokens renders a WHERE/HAVING/ON stream without its keyword.
func (e Engine) renderTokens(ts []types.PredicateToken, ctx *renderContext) (string, error) {
	if len(ts) == 0 {
		return "", nil
	}
	if err := types.ValidateTokens(ts); err != nil {
		return "", err
	}
	var sql strings.Builder
	for _, t := range ts {
		switch t.Kind {
		case types.TokenOpen:
			sql.WriteString("(")
		case types.TokenClose:
			sql.WriteString(")")
		case types.TokenConjunction:
			sql.WriteString(" ")
			sql.WriteString(string(t.Conj))
			sql.WriteString(" ")
		case types.TokenPredicate:
			s, err := e.renderPredicate(t.Pred, ctx)
			if err != nil {
				return "", err
			}
			sql.WriteString(s)
		}
	}
	return sql.String(), nil
}

func (e Engine) renderPredicate(p *types.Predicate, ctx *renderContext) (string, error) {
	if p.IsLiteral {
		return p.Raw, nil
	}

	switch p.Op {
	case types.Exists, types.NotExists:
		if p.Query == types.NoNode {
			return "", e.unsupported(string(p.Op) + " without a sub-query")
		}
		body, err := e.renderStatement(p.Query, ctx)
		if err != nil {
			return "", err
		}
		return string(p.Op) + " (" + body + ")", nil

	case types.Equal, types.NotEqual, types.GreaterThan, types.GreaterThanOrEqual,
		types.LessThan, types.LessThanOrEqual, types.Like, types.NotLike:
		return e.renderComparison(p, ctx)

	case types.IsNull, types.IsNotNull:
		left, err := e.renderLeft(p, ctx)
		if err != nil {
			return "", err
		}
		return left + " " + string(p.Op), nil

	case types.In, types.NotIn:
		return e.renderIn(p, ctx)

	case types.Between:
		return e.renderBetween(p, ctx)

	case types.Contains:
		if p.Right != types.RightValue || p.Value == nil {
			return "", e.unsupported("CONTAINS without a search term")
		}
		left, err := e.renderLeft(p, ctx)
		if err != nil {
			return "", err
		}
		term := stringValue(*p.Value)
		return e.Contains(left, e.bind(ctx, &p.Left, term))

	default:
		return "", e.unsupported(fmt.Sprintf("operator %q", p.Op))
	}
}

// renderLeft renders the left expression wrapped by the predicate's chain.
func (e Engine) renderLeft(p *types.Predicate, ctx *renderContext) (string, error) {
	left, err := e.renderExpr(&p.Left, ctx)
	if err != nil {
		return "", err
	}
	if len(p.Chain) == 0 {
		return left, nil
	}
	return e.applyChain(left, p.Chain, &p.Left, ctx)
}

func (e Engine) renderComparison(p *types.Predicate, ctx *renderContext) (string, error) {
	like := p.Op == types.Like || p.Op == types.NotLike

	right := func() (string, error) {
		switch p.Right {
		case types.RightValue:
			if p.Value == nil {
				break
			}
			v := *p.Value
			if like {
				v = stringValue(v)
			}
			return e.bind(ctx, &p.Left, v), nil
		case types.RightColumn:
			if p.Column == nil {
				break
			}
			return e.renderExpr(p.Column, ctx)
		case types.RightQuery:
			if like {
				return "", e.unsupported(string(p.Op) + " against a sub-query")
			}
			sub, err := ctx.node(p.Query)
			if err != nil {
				return "", err
			}
			body, err := e.renderStatement(p.Query, ctx)
			if err != nil {
				return "", err
			}
			if sub.Search != types.SearchNone {
				return string(sub.Search) + " (" + body + ")", nil
			}
			return "(" + body + ")", nil
		}
		return "", e.unsupported(string(p.Op)+" without a value", "use IsNull or IsNotNull to test for NULL")
	}

	// Render in text order so positional parameters line up.
	var first, second string
	var err error
	if p.ItemFirst {
		if first, err = e.renderLeft(p, ctx); err != nil {
			return "", err
		}
		if second, err = right(); err != nil {
			return "", err
		}
	} else {
		if first, err = right(); err != nil {
			return "", err
		}
		if second, err = e.renderLeft(p, ctx); err != nil {
			return "", err
		}
	}

	s := first + " " + string(p.Op) + " " + second
	if like && p.Escape != 0 {
		esc, err := e.Literal(types.Value{Kind: types.KindString, V: string(p.Escape)})
		if err != nil {
			return "", err
		}
		s += " ESCAPE " + esc
	}
	return s, nil
}

func (e Engine) renderIn(p *types.Predicate, ctx *renderContext) (string, error) {
	left, err := e.renderLeft(p, ctx)
	if err != nil {
		return "", err
	}
	switch p.Right {
	case types.RightQuery:
		body, err := e.renderStatement(p.Query, ctx)
		if err != nil {
			return "", err
		}
		return left + " " + string(p.Op) + " (" + body + ")", nil
	case types.RightList:
		if len(p.List) == 0 {
			return "", e.unsupported("empty "+string(p.Op)+" list", "skip the predicate when there are no values")
		}
		items := make([]string, 0, len(p.List))
		for _, v := range p.List {
			lit, err := e.Literal(v)
			if err != nil {
				return "", err
			}
			items = append(items, lit)
		}
		return left + " " + string(p.Op) + " (" + strings.Join(items, ", ") + ")", nil
	default:
		return "", e.unsupported(string(p.Op) + " without a value list or sub-query")
	}
}

func (e Engine) renderBetween(p *types.Predicate, ctx *renderContext) (string, error) {
	if p.Right != types.RightBounds {
		return "", e.unsupported("BETWEEN without bounds")
	}
	left, err := e.renderLeft(p, ctx)
	if err != nil {
		return "", err
	}
	low, err := e.renderBound(p, p.Low, ctx)
	if err != nil {
		return "", err
	}
	high, err := e.renderBound(p, p.High, ctx)
	if err != nil {
		return "", err
	}
	return left + " BETWEEN " + low + " AND " + high, nil
}

func (e Engine) renderBound(p *types.Predicate, b types.Bound, ctx *renderContext) (string, error) {
	switch {
	case b.Query != types.NoNode:
		return "", e.unsupported("BETWEEN with a sub-query bound")
	case b.Value != nil:
		return e.bind(ctx, &p.Left, *b.Value), nil
	case b.Column != nil:
		return e.renderExpr(b.Column, ctx)
	default:
		return "", e.unsupported("BETWEEN with a missing bound")
	}
}

// stringValue rebinds v as a string-typed value.
func stringValue(v types.Value) types.Value {
	switch x := v.V.(type) {
	case string:
		return types.Value{Kind: types.KindString, V: x}
	default:
		return types.Value{Kind: types.KindString, V: fmt.Sprint(v.DriverValue())}
	}
}
