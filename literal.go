package dynq

import (
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/zoobzio/dynq/internal/types"
)

// Scalar is the closed set of Go types a literal can carry.
type Scalar interface {
	bool |
		int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64 |
		*big.Rat | time.Time | uuid.UUID |
		string | Char
}

// Value is a typed literal.
type Value struct {
	v   types.Value
	err error
}

// Lit wraps a literal of a known scalar type.
func Lit[T Scalar](v T) Value {
	val, err := types.NewValue(v)
	return Value{v: val, err: err}
}

// Kind returns the literal's scalar kind.
func (v Value) Kind() ScalarKind { return v.v.Kind }

// value classifies a literal, accepting a Value or a plain Go value.
func value(v any) (types.Value, error) {
	if lit, ok := v.(Value); ok {
		return lit.v, lit.err
	}
	return types.NewValue(v)
}

// Compare builds a single-value comparison against a typed literal.
func Compare[T Scalar](x Expr, op Comparison, v T) Predicate {
	switch op.Arity() {
	case 1, -1:
	default:
		return invalid(types.Errorf(types.ErrInvalidOperand, "compare", "%s takes %d values, got 1", op, op.Arity()))
	}
	switch op {
	case types.In, types.NotIn:
		return x.in(op, []any{v})
	case types.Contains:
		return x.contains(Lit(v))
	case types.Like, types.NotLike:
		return x.like(op, Lit(v), 0)
	default:
		return x.compare(op, Lit(v))
	}
}
