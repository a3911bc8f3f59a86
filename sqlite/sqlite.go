// Package sqlite provides the SQLite dialect renderer for dynq.
package sqlite

import (
	"strconv"
	"strings"
	"time"

	"github.com/zoobzio/dynq/internal/render"
	"github.com/zoobzio/dynq/internal/types"
)

// Renderer implements the SQLite dialect renderer.
type Renderer struct {
	render.Engine
}

// New creates a new SQLite renderer.
func New() *Renderer {
	return &Renderer{Engine: render.Engine{Dialect: dialect{render.Base{Dialect: "sqlite"}}}}
}

// Capabilities returns the SQL features supported by SQLite.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		NamedParameters:       false,
		WindowPaging:          true,
		OffsetFetch:           false,
		RightJoin:             true,
		FullJoin:              true,
		Rollup:                false,
		FullTextSearch:        true,
		StatisticalAggregates: false,
		Intersect:             true,
		Except:                true,
	}
}

type dialect struct {
	render.Base
}

func (dialect) Divide(left, right string) string {
	return "ROUND(CAST(" + left + " AS REAL) / " + right + ", 6)"
}

func (d dialect) Literal(v types.Value) (string, error) {
	switch x := v.V.(type) {
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return "'" + x.Format(render.TimestampLayout) + "'", nil
	default:
		return d.Base.Literal(v)
	}
}

func (d dialect) Function(s types.SubOperator) (string, string, error) {
	switch s.Op {
	case types.OpSubstring:
		return d.Substring("SUBSTR", s)
	case types.OpDate:
		return "DATE(", ")", nil
	case types.OpStdDev, types.OpVar:
		return "", "", render.NewUnsupportedSyntaxError(d.Dialect, string(s.Op),
			"compute it from SUM and COUNT or client side")
	case types.OpDatePart:
		format := strftimeFormat(s.Part)
		if format == "" {
			return "", "", render.NewUnsupportedSyntaxError(d.Dialect, "date part "+string(s.Part))
		}
		return "CAST(STRFTIME('" + format + "', ", ") AS INTEGER)", nil
	case types.OpCast:
		return "CAST(", " AS " + affinity(s.Cast) + ")", nil
	}
	return d.Base.Function(s)
}

// strftimeFormat maps DatePart to a STRFTIME format.
func strftimeFormat(part types.DatePart) string {
	switch part {
	case types.PartYear:
		return "%Y"
	case types.PartMonth:
		return "%m"
	case types.PartDay:
		return "%d"
	case types.PartDayOfYear:
		return "%j"
	case types.PartWeek:
		return "%W"
	case types.PartWeekDay:
		return "%w"
	case types.PartHour:
		return "%H"
	case types.PartMinute:
		return "%M"
	case types.PartSecond:
		return "%S"
	default:
		return ""
	}
}

// affinity maps cast targets to SQLite type affinities.
func affinity(c types.CastType) string {
	switch c {
	case types.CastBoolean, types.CastByte, types.CastInt16, types.CastInt32, types.CastInt64:
		return "INTEGER"
	case types.CastDouble, types.CastSingle:
		return "REAL"
	case types.CastDecimal:
		return "NUMERIC"
	default:
		return "TEXT"
	}
}

func (dialect) Contains(column, param string) (string, error) {
	return column + " MATCH " + param, nil
}

func (d dialect) Rollup(string) (string, error) {
	return "", render.NewUnsupportedSyntaxError(d.Dialect, "ROLLUP",
		"aggregate each grouping level separately and combine with UNION ALL")
}

func (dialect) SkipTake(skip, take *int, _ bool) (string, error) {
	var sql strings.Builder
	sql.WriteString(" LIMIT ")
	if take != nil {
		sql.WriteString(strconv.Itoa(*take))
	} else {
		sql.WriteString("-1")
	}
	if skip != nil {
		sql.WriteString(" OFFSET ")
		sql.WriteString(strconv.Itoa(*skip))
	}
	return sql.String(), nil
}
