package render

import (
	"strings"

	"github.com/zoobzio/dynq/internal/types"
)

// renderExpr renders an expression and its sub-operator chain, without alias.
func (e Engine) renderExpr(x *types.Expression, ctx *renderContext) (string, error) {
	var base string
	var err error
	switch x.Variant() {
	case types.VariantRaw:
		base = x.Raw
	case types.VariantColumn:
		base, err = e.renderColumn(x.Column, ctx)
	case types.VariantArith:
		base, err = e.renderArith(x.Arith, ctx)
	case types.VariantCase:
		base, err = e.renderCase(x.Case, ctx)
	case types.VariantQuery:
		var body string
		if body, err = e.renderStatement(x.Query, ctx); err == nil {
			base = "(" + body + ")"
		}
	case types.VariantNone:
		return "", types.Errorf(types.ErrMalformedGraph, "expression", "empty expression")
	default:
		return "", types.Errorf(types.ErrMalformedGraph, "expression", "expression populates more than one variant")
	}
	if err != nil {
		return "", err
	}
	if len(x.Chain) == 0 {
		return base, nil
	}
	return e.applyChain(base, x.Chain, x, ctx)
}

// renderColumn qualifies a column by its owner. An owner whose body is being
// rendered qualifies by its join alias; any other owner by its sub-query
// alias, falling back to the join alias.
func (e Engine) renderColumn(c *types.ColumnRef, ctx *renderContext) (string, error) {
	name := "*"
	if c.Name != "*" {
		name = e.QuoteIdentifier(c.Name)
	}
	var qualifier string
	if c.Query != types.NoNode {
		owner, err := ctx.node(c.Query)
		if err != nil {
			return "", err
		}
		if ctx.active[c.Query] {
			qualifier = owner.Alias
		} else {
			qualifier = owner.OuterAlias()
		}
	}
	if qualifier != "" {
		name = e.QuoteIdentifier(qualifier) + "." + name
	}
	if c.Distinct {
		name = "DISTINCT " + name
	}
	return name, nil
}

func (e Engine) renderArith(a *types.Arithmetic, ctx *renderContext) (string, error) {
	right := func() (string, error) {
		switch {
		case a.Right.Expr != nil:
			return e.renderExpr(a.Right.Expr, ctx)
		case a.Right.Value != nil:
			return e.bind(ctx, &a.Left, *a.Right.Value), nil
		default:
			return "", types.Errorf(types.ErrInvalidOperand, "arithmetic", "missing right operand")
		}
	}

	var first, second string
	var err error
	if a.ItemFirst {
		if first, err = e.renderExpr(&a.Left, ctx); err != nil {
			return "", err
		}
		if second, err = right(); err != nil {
			return "", err
		}
	} else {
		if first, err = right(); err != nil {
			return "", err
		}
		if second, err = e.renderExpr(&a.Left, ctx); err != nil {
			return "", err
		}
	}

	switch a.Op {
	case types.Add:
		if a.Left.Kind().Textual() || a.Right.Kind().Textual() {
			return e.Concat(first, second), nil
		}
		return "(" + first + " + " + second + ")", nil
	case types.Subtract, types.Multiply:
		return "(" + first + " " + string(a.Op) + " " + second + ")", nil
	case types.Divide:
		return e.Divide(first, second), nil
	case types.Modulo:
		return e.Modulo(first, second), nil
	default:
		return "", types.Errorf(types.ErrMalformedGraph, "arithmetic", "unknown operator %q", a.Op)
	}
}

func (e Engine) renderCase(c *types.CaseExpr, ctx *renderContext) (string, error) {
	if len(c.Clauses) == 0 {
		return "", types.Errorf(types.ErrMalformedGraph, "case", "CASE without WHEN clauses")
	}
	var sql strings.Builder
	sql.WriteString("CASE")
	for i := range c.Clauses {
		clause := &c.Clauses[i]
		var cond string
		var err error
		switch {
		case len(clause.Cond) > 0:
			cond, err = e.renderTokens(clause.Cond, ctx)
		case clause.CondExpr != nil:
			cond, err = e.renderExpr(clause.CondExpr, ctx)
		default:
			err = types.Errorf(types.ErrMalformedGraph, "case", "WHEN clause %d has no condition", i+1)
		}
		if err != nil {
			return "", err
		}
		then, err := e.renderCaseOperand(clause.Then, ctx)
		if err != nil {
			return "", err
		}
		sql.WriteString(" WHEN ")
		sql.WriteString(cond)
		sql.WriteString(" THEN ")
		sql.WriteString(then)
	}
	if c.Else != nil {
		els, err := e.renderCaseOperand(*c.Else, ctx)
		if err != nil {
			return "", err
		}
		sql.WriteString(" ELSE ")
		sql.WriteString(els)
	}
	sql.WriteString(" END")
	return sql.String(), nil
}

// renderCaseOperand renders THEN/ELSE results; literals are inlined.
func (e Engine) renderCaseOperand(o types.Operand, ctx *renderContext) (string, error) {
	switch {
	case o.Expr != nil:
		return e.renderExpr(o.Expr, ctx)
	case o.Value != nil:
		return e.Literal(*o.Value)
	default:
		return "NULL", nil
	}
}

// closer is a deferred closing fragment. Coalesce fallbacks are rendered
// when popped so parameters keep text order.
type closer struct {
	text string
	arg  *types.Operand
}

// applyChain wraps base in the chain's function calls. The first declared
// operator wraps base directly, so openers are emitted in reverse
// declaration order and closers popped LIFO.
func (e Engine) applyChain(base string, chain []types.SubOperator, owner *types.Expression, ctx *renderContext) (string, error) {
	var sql strings.Builder
	stack := make([]closer, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		if s.Op == types.OpCoalesce {
			if s.Arg == nil {
				return "", types.Errorf(types.ErrInvalidOperand, "coalesce", "missing fallback value")
			}
			sql.WriteString("COALESCE(")
			stack = append(stack, closer{text: ")", arg: s.Arg})
			continue
		}
		open, end, err := e.Function(s)
		if err != nil {
			return "", err
		}
		sql.WriteString(open)
		stack = append(stack, closer{text: end})
	}

	sql.WriteString(base)

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.arg != nil {
			var arg string
			var err error
			if c.arg.Expr != nil {
				arg, err = e.renderExpr(c.arg.Expr, ctx)
			} else if c.arg.Value != nil {
				arg = e.bind(ctx, owner, *c.arg.Value)
			} else {
				err = types.Errorf(types.ErrInvalidOperand, "coalesce", "missing fallback value")
			}
			if err != nil {
				return "", err
			}
			sql.WriteString(", ")
			sql.WriteString(arg)
		}
		sql.WriteString(c.text)
	}
	return sql.String(), nil
}
