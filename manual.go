package dynq

import (
	"strings"

	"github.com/zoobzio/dynq/internal/types"
)

// comparisonNames maps operand names, with spaces and underscores removed,
// to comparisons.
var comparisonNames = map[string]types.Comparison{
	"EQUAL":              types.Equal,
	"EQ":                 types.Equal,
	"=":                  types.Equal,
	"NOTEQUAL":           types.NotEqual,
	"NE":                 types.NotEqual,
	"<>":                 types.NotEqual,
	"!=":                 types.NotEqual,
	"GREATERTHAN":        types.GreaterThan,
	"GT":                 types.GreaterThan,
	">":                  types.GreaterThan,
	"GREATERTHANOREQUAL": types.GreaterThanOrEqual,
	"GE":                 types.GreaterThanOrEqual,
	">=":                 types.GreaterThanOrEqual,
	"LESSTHAN":           types.LessThan,
	"LT":                 types.LessThan,
	"<":                  types.LessThan,
	"LESSTHANOREQUAL":    types.LessThanOrEqual,
	"LE":                 types.LessThanOrEqual,
	"<=":                 types.LessThanOrEqual,
	"LIKE":               types.Like,
	"NOTLIKE":            types.NotLike,
	"BETWEEN":            types.Between,
	"IN":                 types.In,
	"NOTIN":              types.NotIn,
	"ISNULL":             types.IsNull,
	"ISNOTNULL":          types.IsNotNull,
	"CONTAINS":           types.Contains,
}

// ParseComparison maps an operand name such as "EQUAL", "GreaterThan",
// "not_like" or ">=" to a comparison. Unknown names fail with
// ErrInvalidOperand.
func ParseComparison(name string) (Comparison, error) {
	key := strings.ToUpper(strings.NewReplacer(" ", "", "_", "").Replace(name))
	if c, ok := comparisonNames[key]; ok {
		return c, nil
	}
	return "", types.Errorf(types.ErrInvalidOperand, "manual where", "unknown operand %q", name)
}

// ManualWhere builds a predicate from an operand name and its values, for
// callers that receive the comparison as text. The number of values must
// match the comparison: none for IS NULL, two for BETWEEN, one or more for
// IN, exactly one otherwise.
func ManualWhere(x Expr, op string, values ...any) Predicate {
	c, err := ParseComparison(op)
	if err != nil {
		return invalid(err)
	}
	switch c.Arity() {
	case 0:
		if len(values) != 0 {
			return invalid(types.Errorf(types.ErrInvalidOperand, "manual where", "%s takes no values, got %d", c, len(values)))
		}
		return x.unary(c)
	case 2:
		if len(values) != 2 {
			return invalid(types.Errorf(types.ErrInvalidOperand, "manual where", "%s takes 2 values, got %d", c, len(values)))
		}
		return x.Between(values[0], values[1])
	case -1:
		if len(types.Flatten(values)) == 0 {
			if len(values) != 1 || !isQuery(values[0]) {
				return invalid(types.Errorf(types.ErrInvalidOperand, "manual where", "%s takes at least one value", c))
			}
		}
		return x.in(c, values)
	default:
		if len(values) != 1 {
			return invalid(types.Errorf(types.ErrInvalidOperand, "manual where", "%s takes 1 value, got %d", c, len(values)))
		}
		switch c {
		case types.Like, types.NotLike:
			return x.like(c, values[0], 0)
		case types.Contains:
			return x.contains(values[0])
		default:
			return x.compare(c, values[0])
		}
	}
}

func isQuery(v any) bool {
	_, ok := v.(*Query)
	return ok
}
