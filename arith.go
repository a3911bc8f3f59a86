package dynq

import (
	"github.com/zoobzio/dynq/internal/types"
)

// Add builds (a + b). Either operand may be the Expr; textual operands
// render as the dialect's string concatenation.
func Add(a, b any) Expr { return arith(types.Add, a, b) }

// Sub builds (a - b).
func Sub(a, b any) Expr { return arith(types.Subtract, a, b) }

// Mul builds (a * b).
func Mul(a, b any) Expr { return arith(types.Multiply, a, b) }

// Div builds a / b rounded by the dialect.
func Div(a, b any) Expr { return arith(types.Divide, a, b) }

// Mod builds the remainder of a / b.
func Mod(a, b any) Expr { return arith(types.Modulo, a, b) }

// Arith combines x with a typed literal on its right.
func Arith[T Scalar](op ArithOp, x Expr, v T) Expr {
	return combine(op, x, Lit(v), true)
}

func arith(op types.ArithOp, a, b any) Expr {
	if x, ok := a.(Expr); ok {
		return combine(op, x, b, true)
	}
	if x, ok := b.(Expr); ok {
		return combine(op, x, a, false)
	}
	return Expr{err: types.Errorf(types.ErrInvalidOperand, "arithmetic", "%s needs an expression operand, got %s and %s", op, describe(a), describe(b))}
}

func combine(op types.ArithOp, x Expr, other any, itemFirst bool) Expr {
	if x.err != nil {
		return x
	}
	switch op {
	case types.Add, types.Subtract, types.Multiply, types.Divide, types.Modulo:
	default:
		return x.fail(types.Errorf(types.ErrInvalidOperand, "arithmetic", "unknown operator %q", op))
	}
	o, g, err := operand(other)
	if err != nil {
		return Expr{err: err}
	}
	if o.Expr == nil && o.Value == nil {
		return Expr{err: types.Errorf(types.ErrUnsupportedSyntax, "arithmetic", "NULL operand; use Coalesce")}
	}
	g, err = sameGraph(x.graph, g)
	if err != nil {
		return Expr{err: err}
	}
	return Expr{
		e: types.Expression{Arith: &types.Arithmetic{
			Op:        op,
			Left:      x.e,
			Right:     o,
			ItemFirst: itemFirst,
		}},
		graph: g,
	}
}
