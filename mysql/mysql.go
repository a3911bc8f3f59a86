// Package mysql provides the MySQL and MariaDB dialect renderer for dynq.
package mysql

import (
	"strconv"
	"strings"

	"github.com/zoobzio/dynq/internal/render"
	"github.com/zoobzio/dynq/internal/types"
)

// maxRows is the LIMIT MySQL documents for "all remaining rows".
const maxRows = "18446744073709551615"

// Renderer implements the MySQL dialect renderer.
type Renderer struct {
	render.Engine
}

// New creates a new MySQL renderer.
func New() *Renderer {
	return &Renderer{Engine: render.Engine{Dialect: dialect{render.Base{Dialect: "mysql"}}}}
}

// Capabilities returns the SQL features supported by MySQL.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		NamedParameters:       false,
		WindowPaging:          false,
		OffsetFetch:           false,
		RightJoin:             true,
		FullJoin:              false,
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
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (dialect) Concat(left, right string) string {
	return "CONCAT(" + left + ", " + right + ")"
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`)

func (d dialect) Literal(v types.Value) (string, error) {
	switch x := v.V.(type) {
	case string:
		return "'" + literalEscaper.Replace(x) + "'", nil
	case types.Char:
		return "'" + literalEscaper.Replace(string(rune(x))) + "'", nil
	default:
		return d.Base.Literal(v)
	}
}

func (d dialect) Function(s types.SubOperator) (string, string, error) {
	switch s.Op {
	case types.OpLength:
		return "CHAR_LENGTH(", ")", nil
	case types.OpDate:
		return "DATE(", ")", nil
	case types.OpDatePart:
		switch s.Part {
		case types.PartYear, types.PartQuarter, types.PartMonth, types.PartDay,
			types.PartWeek, types.PartHour, types.PartMinute, types.PartSecond:
			return "EXTRACT(" + string(s.Part) + " FROM ", ")", nil
		case types.PartDayOfYear:
			return "DAYOFYEAR(", ")", nil
		case types.PartWeekDay:
			return "DAYOFWEEK(", ")", nil
		case types.PartMillisecond:
			return "(EXTRACT(MICROSECOND FROM ", ") DIV 1000)", nil
		}
	case types.OpCast:
		t, err := d.mapCastType(s)
		if err != nil {
			return "", "", err
		}
		return "CAST(", " AS " + t + ")", nil
	}
	return d.Base.Function(s)
}

// mapCastType maps cast targets to the types MySQL accepts in CAST.
func (d dialect) mapCastType(s types.SubOperator) (string, error) {
	switch s.Cast {
	case types.CastBoolean, types.CastInt16, types.CastInt32, types.CastInt64:
		return "SIGNED", nil
	case types.CastByte:
		return "UNSIGNED", nil
	case types.CastChar:
		return "CHAR(1)", nil
	case types.CastDateTime:
		return "DATETIME", nil
	case types.CastDouble:
		return "DOUBLE", nil
	case types.CastSingle:
		return "FLOAT", nil
	case types.CastGuid:
		return "CHAR(36)", nil
	case types.CastString:
		return render.SizedType("CHAR", s.Length, "CHAR"), nil
	default:
		return d.CastType(s)
	}
}

func (dialect) Contains(column, param string) (string, error) {
	return "MATCH(" + column + ") AGAINST(" + param + " IN BOOLEAN MODE)", nil
}

func (d dialect) JoinKeyword(kind types.JoinKind) (string, error) {
	if kind == types.FullJoin {
		return "", render.NewUnsupportedSyntaxError(d.Dialect, "FULL JOIN",
			"combine a LEFT JOIN and a RIGHT JOIN with UNION")
	}
	return d.Base.JoinKeyword(kind)
}

func (dialect) Rollup(items string) (string, error) {
	return items + " WITH ROLLUP", nil
}

func (dialect) SkipTake(skip, take *int, _ bool) (string, error) {
	var sql strings.Builder
	sql.WriteString(" LIMIT ")
	if take != nil {
		sql.WriteString(strconv.Itoa(*take))
	} else {
		sql.WriteString(maxRows)
	}
	if skip != nil {
		sql.WriteString(" OFFSET ")
		sql.WriteString(strconv.Itoa(*skip))
	}
	return sql.String(), nil
}

func (dialect) WindowPaging() bool { return false }
