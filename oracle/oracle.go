// Package oracle provides the Oracle dialect renderer for dynq.
package oracle

import (
	"strconv"

	"github.com/zoobzio/dynq/internal/render"
	"github.com/zoobzio/dynq/internal/types"
)

// Renderer implements the Oracle dialect renderer.
type Renderer struct {
	render.Engine
}

// New creates a new Oracle renderer.
func New() *Renderer {
	return &Renderer{Engine: render.Engine{Dialect: dialect{render.Base{Dialect: "oracle"}}}}
}

// Capabilities returns the SQL features supported by Oracle.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		NamedParameters:       true,
		WindowPaging:          true,
		OffsetFetch:           true,
		RightJoin:             true,
		FullJoin:              true,
		Rollup:                true,
		FullTextSearch:        true,
		StatisticalAggregates: true,
		Intersect:             true,
		Except:                true,
	}
}

type dialect struct {
	render.Base
}

func (dialect) Placeholder(name string, _ int) string { return ":" + name }

func (dialect) NamedParameters() bool { return true }

func (dialect) Modulo(left, right string) string {
	return "MOD(" + left + ", " + right + ")"
}

func (d dialect) Literal(v types.Value) (string, error) {
	switch x := v.V.(type) {
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	default:
		return d.Base.Literal(v)
	}
}

func (d dialect) Function(s types.SubOperator) (string, string, error) {
	switch s.Op {
	case types.OpSubstring:
		return d.Substring("SUBSTR", s)
	case types.OpDate:
		return "TRUNC(", ")", nil
	case types.OpDatePart:
		switch s.Part {
		case types.PartQuarter:
			return "TO_NUMBER(TO_CHAR(", ", 'Q'))", nil
		case types.PartDayOfYear:
			return "TO_NUMBER(TO_CHAR(", ", 'DDD'))", nil
		case types.PartWeek:
			return "TO_NUMBER(TO_CHAR(", ", 'IW'))", nil
		case types.PartWeekDay:
			return "TO_NUMBER(TO_CHAR(", ", 'D'))", nil
		}
	case types.OpCast:
		t, err := d.castType(s)
		if err != nil {
			return "", "", err
		}
		return "CAST(", " AS " + t + ")", nil
	}
	return d.Base.Function(s)
}

// castType maps cast targets to Oracle types.
func (d dialect) castType(s types.SubOperator) (string, error) {
	switch s.Cast {
	case types.CastBoolean:
		return "NUMBER(1)", nil
	case types.CastByte:
		return "NUMBER(3)", nil
	case types.CastInt16:
		return "NUMBER(5)", nil
	case types.CastInt32:
		return "NUMBER(10)", nil
	case types.CastInt64:
		return "NUMBER(19)", nil
	case types.CastDecimal:
		return render.DecimalType("NUMBER", s), nil
	case types.CastDouble:
		return "BINARY_DOUBLE", nil
	case types.CastSingle:
		return "BINARY_FLOAT", nil
	case types.CastGuid:
		return "VARCHAR2(36)", nil
	case types.CastString:
		return render.SizedType("VARCHAR2", s.Length, "VARCHAR2(4000)"), nil
	default:
		return d.CastType(s)
	}
}

func (dialect) Contains(column, param string) (string, error) {
	return "CONTAINS(" + column + ", " + param + ") > 0", nil
}

func (d dialect) SetOperator(kind types.SetOpKind) (string, error) {
	if kind == types.Except {
		return "MINUS", nil
	}
	return d.Base.SetOperator(kind)
}

func (dialect) Top(n int) (string, string, string) {
	return "", "ROWNUM <= " + strconv.Itoa(n), ""
}

func (dialect) SkipTake(skip, take *int, _ bool) (string, error) {
	return render.OffsetFetch(skip, take), nil
}
