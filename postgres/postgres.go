// Package postgres provides the PostgreSQL dialect renderer for dynq.
package postgres

import (
	"strconv"

	"github.com/lib/pq"

	"github.com/zoobzio/dynq/internal/render"
	"github.com/zoobzio/dynq/internal/types"
)

// Renderer implements the PostgreSQL dialect renderer.
type Renderer struct {
	render.Engine
}

// New creates a new PostgreSQL renderer.
func New() *Renderer {
	return &Renderer{Engine: render.Engine{Dialect: dialect{render.Base{Dialect: "postgres"}}}}
}

// Capabilities returns the SQL features supported by PostgreSQL.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		NamedParameters:       false,
		WindowPaging:          true,
		OffsetFetch:           false,
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

func (dialect) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

func (dialect) Placeholder(_ string, ordinal int) string {
	return "$" + strconv.Itoa(ordinal)
}

func (dialect) Divide(left, right string) string {
	return "ROUND(CAST(" + left + " AS NUMERIC) / " + right + ", 6)"
}

func (d dialect) Literal(v types.Value) (string, error) {
	switch x := v.V.(type) {
	case string:
		return pq.QuoteLiteral(x), nil
	case types.Char:
		return pq.QuoteLiteral(string(rune(x))), nil
	default:
		return d.Base.Literal(v)
	}
}

func (d dialect) Function(s types.SubOperator) (string, string, error) {
	switch s.Op {
	case types.OpDatePart:
		part := datePartToPostgres(s.Part)
		if part == "" {
			return "", "", render.NewUnsupportedSyntaxError(d.Dialect, "date part "+string(s.Part))
		}
		return "EXTRACT(" + part + " FROM ", ")", nil
	case types.OpCast:
		t, err := d.mapCastType(s)
		if err != nil {
			return "", "", err
		}
		return "CAST(", " AS " + t + ")", nil
	}
	return d.Base.Function(s)
}

// datePartToPostgres maps DatePart to EXTRACT field names.
func datePartToPostgres(part types.DatePart) string {
	switch part {
	case types.PartYear, types.PartQuarter, types.PartMonth, types.PartDay,
		types.PartWeek, types.PartHour, types.PartMinute, types.PartSecond:
		return string(part)
	case types.PartDayOfYear:
		return "DOY"
	case types.PartWeekDay:
		return "DOW"
	case types.PartMillisecond:
		return "MILLISECONDS"
	default:
		return ""
	}
}

// mapCastType maps cast targets to PostgreSQL types.
func (d dialect) mapCastType(s types.SubOperator) (string, error) {
	switch s.Cast {
	case types.CastDecimal:
		return render.DecimalType("NUMERIC", s), nil
	case types.CastGuid:
		return "UUID", nil
	case types.CastString:
		return render.SizedType("VARCHAR", s.Length, "TEXT"), nil
	default:
		return d.CastType(s)
	}
}

func (dialect) Contains(column, param string) (string, error) {
	return "to_tsvector(" + column + ") @@ plainto_tsquery(" + param + ")", nil
}
