// Package mssql provides the SQL Server dialect renderer for dynq.
package mssql

import (
	"strconv"
	"strings"
	"time"

	"github.com/zoobzio/dynq/internal/render"
	"github.com/zoobzio/dynq/internal/types"
)

// Renderer implements the SQL Server dialect renderer.
type Renderer struct {
	render.Engine
}

// New creates a new SQL Server renderer.
func New() *Renderer {
	return &Renderer{Engine: render.Engine{Dialect: dialect{render.Base{Dialect: "mssql"}}}}
}

// Capabilities returns the SQL features supported by SQL Server.
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

func (dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, "]", "]]")
	return "[" + escaped + "]"
}

func (dialect) Placeholder(name string, _ int) string { return "@" + name }

func (dialect) NamedParameters() bool { return true }

func (dialect) Concat(left, right string) string {
	return "(" + left + " + " + right + ")"
}

func (dialect) Divide(left, right string) string {
	return "ROUND(CAST(" + left + " AS DECIMAL(38, 6)) / " + right + ", 6)"
}

func (d dialect) Literal(v types.Value) (string, error) {
	switch x := v.V.(type) {
	case string:
		return "N" + render.QuoteString(x), nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return "'" + x.Format("2006-01-02T15:04:05.9999999") + "'", nil
	default:
		return d.Base.Literal(v)
	}
}

func (d dialect) Function(s types.SubOperator) (string, string, error) {
	switch s.Op {
	case types.OpTrim:
		return "LTRIM(RTRIM(", "))", nil
	case types.OpLength:
		return "LEN(", ")", nil
	case types.OpStdDev:
		return "STDEV(", ")", nil
	case types.OpVar:
		return "VAR(", ")", nil
	case types.OpDatePart:
		part := datePartToMSSQL(s.Part)
		if part == "" {
			return "", "", render.NewUnsupportedSyntaxError(d.Dialect, "date part "+string(s.Part))
		}
		return "DATEPART(" + part + ", ", ")", nil
	case types.OpCast:
		t, err := d.mapCastType(s)
		if err != nil {
			return "", "", err
		}
		return "CAST(", " AS " + t + ")", nil
	}
	return d.Base.Function(s)
}

// datePartToMSSQL maps DatePart to SQL Server DATEPART names.
func datePartToMSSQL(part types.DatePart) string {
	switch part {
	case types.PartYear:
		return "YEAR"
	case types.PartQuarter:
		return "QUARTER"
	case types.PartMonth:
		return "MONTH"
	case types.PartDayOfYear:
		return "DAYOFYEAR"
	case types.PartDay:
		return "DAY"
	case types.PartWeek:
		return "WEEK"
	case types.PartWeekDay:
		return "WEEKDAY"
	case types.PartHour:
		return "HOUR"
	case types.PartMinute:
		return "MINUTE"
	case types.PartSecond:
		return "SECOND"
	case types.PartMillisecond:
		return "MILLISECOND"
	default:
		return ""
	}
}

// mapCastType maps cast targets to SQL Server types.
func (d dialect) mapCastType(s types.SubOperator) (string, error) {
	switch s.Cast {
	case types.CastBoolean:
		return "BIT", nil
	case types.CastByte:
		return "TINYINT", nil
	case types.CastChar:
		return "NCHAR(1)", nil
	case types.CastDateTime:
		return "DATETIME2", nil
	case types.CastDouble:
		return "FLOAT", nil
	case types.CastGuid:
		return "UNIQUEIDENTIFIER", nil
	case types.CastInt32:
		return "INT", nil
	case types.CastString:
		return render.SizedType("NVARCHAR", s.Length, "NVARCHAR(MAX)"), nil
	default:
		return d.CastType(s)
	}
}

func (dialect) Contains(column, param string) (string, error) {
	return "CONTAINS(" + column + ", " + param + ")", nil
}

func (dialect) Top(n int) (string, string, string) {
	return "TOP " + strconv.Itoa(n) + " ", "", ""
}

func (d dialect) SkipTake(skip, take *int, ordered bool) (string, error) {
	// OFFSET/FETCH requires ORDER BY
	if !ordered {
		return "", render.NewUnsupportedSyntaxError(d.Dialect, "skip/take without ORDER BY",
			"add ORDER BY clause when using skip or take")
	}
	return render.OffsetFetch(skip, take), nil
}

func (dialect) WindowOrder() string { return "(SELECT NULL)" }
